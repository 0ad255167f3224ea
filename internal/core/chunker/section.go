package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// headerLineRe matches a Markdown header of any level at the start of a line.
var headerLineRe = regexp.MustCompile(`(?m)^(#+)\s+(.+)$`)

// SectionInfo holds the structural metadata derived from one chunk.
type SectionInfo struct {
	// Headers is every header found in the chunk, formatted "<hashes> <text>"
	// and joined with "; ". Empty when the chunk has no headers.
	Headers   string
	CharCount int
	WordCount int
}

// ExtractSectionInfo derives headers and simple stats from a chunk.
// It never fails; a header-free chunk just yields an empty Headers string.
func ExtractSectionInfo(chunk string) SectionInfo {
	var headers []string
	for _, m := range headerLineRe.FindAllStringSubmatch(chunk, -1) {
		headers = append(headers, fmt.Sprintf("%s %s", m[1], m[2]))
	}

	return SectionInfo{
		Headers:   strings.Join(headers, "; "),
		CharCount: utf8.RuneCountInString(chunk),
		WordCount: len(strings.Fields(chunk)),
	}
}
