// Package crawler turns seed URLs into normalized Markdown pages. It holds
// the source classifier, the sitemap resolver, the HTTP page fetcher and the
// crawl orchestrator.
package crawler

import (
	"net/url"
	"strings"
)

// SourceType selects the fetch strategy for an input URL.
type SourceType int

const (
	SourceGenericPage SourceType = iota
	SourceSitemap
	SourceTextResource
)

func (s SourceType) String() string {
	switch s {
	case SourceSitemap:
		return "sitemap"
	case SourceTextResource:
		return "text"
	default:
		return "page"
	}
}

// Classify detects the content type of a URL. The sitemap rule is checked
// before the .txt rule, so a URL like */sitemap.txt classifies as a sitemap.
// Only the URL path is matched against "sitemap", never the host.
func Classify(rawURL string) SourceType {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	if strings.HasSuffix(rawURL, "sitemap.xml") || strings.Contains(path, "sitemap") {
		return SourceSitemap
	}
	if strings.HasSuffix(rawURL, ".txt") {
		return SourceTextResource
	}
	return SourceGenericPage
}
