// Package chunker splits Markdown documents into bounded-size chunks that
// follow header structure wherever possible.
package chunker

import (
	"regexp"
	"strings"
)

// headerPatterns lists the split levels in priority order. A segment that
// exceeds the bound at one level is re-split at the next; segments that still
// don't fit after the last level are hard-split into character windows.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^# .+$`),
	regexp.MustCompile(`(?m)^## .+$`),
	regexp.MustCompile(`(?m)^### .+$`),
}

// SmartChunkMarkdown hierarchically splits markdown by #, ## and ### headers,
// then by fixed character windows, so that every returned chunk holds at most
// maxLen characters. Whitespace-only segments are dropped and chunk order
// matches document order. Characters are counted as runes, not bytes.
func SmartChunkMarkdown(markdown string, maxLen int) []string {
	if maxLen <= 0 || strings.TrimSpace(markdown) == "" {
		return nil
	}

	var chunks []string
	for _, seg := range splitByHeader(markdown, headerPatterns[0]) {
		chunks = splitSegment(chunks, seg, 1, maxLen)
	}
	return chunks
}

// splitSegment emits seg if it fits, re-splits it at the next header level if
// one remains, and hard-splits it otherwise.
func splitSegment(out []string, seg string, level, maxLen int) []string {
	if len([]rune(seg)) <= maxLen {
		return append(out, seg)
	}
	if level >= len(headerPatterns) {
		return append(out, hardSplit(seg, maxLen)...)
	}
	for _, sub := range splitByHeader(seg, headerPatterns[level]) {
		out = splitSegment(out, sub, level+1, maxLen)
	}
	return out
}

// splitByHeader cuts md at every match of the header pattern. The text before
// the first header is kept as its own segment so no content is lost.
func splitByHeader(md string, re *regexp.Regexp) []string {
	starts := []int{0}
	for _, loc := range re.FindAllStringIndex(md, -1) {
		if loc[0] != 0 {
			starts = append(starts, loc[0])
		}
	}
	starts = append(starts, len(md))

	segs := make([]string, 0, len(starts)-1)
	for i := 0; i+1 < len(starts); i++ {
		if seg := strings.TrimSpace(md[starts[i]:starts[i+1]]); seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// hardSplit cuts text into windows of maxLen runes. The last window may be
// shorter; windows that trim down to nothing are dropped.
func hardSplit(text string, maxLen int) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += maxLen {
		end := i + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		if w := strings.TrimSpace(string(runes[i:end])); w != "" {
			out = append(out, w)
		}
	}
	return out
}
