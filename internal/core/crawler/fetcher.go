package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/models"
)

const maxBodySize = 5 * 1024 * 1024

// WebFetcher implements core.PageFetcher on plain HTTP. HTML bodies are
// converted to GitHub-flavored Markdown; text/plain bodies pass through
// unchanged. Same-host links found on an HTML page are returned with their
// fragments stripped.
type WebFetcher struct {
	client    *http.Client
	converter *md.Converter
	userAgent string
}

func NewWebFetcher(timeout time.Duration) *WebFetcher {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	return &WebFetcher{
		client:    &http.Client{Timeout: timeout},
		converter: conv,
		userAgent: "Crawlexa-Crawler/1.0",
	}
}

// FetchPage fetches one URL. Every failure mode lands in the returned
// PageResult; the caller decides what a failed page means for the run.
func (f *WebFetcher) FetchPage(ctx context.Context, pageURL string) models.PageResult {
	fail := func(err error) models.PageResult {
		return models.PageResult{URL: pageURL, ErrorMessage: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fail(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("HTTP %d for %s", resp.StatusCode, pageURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fail(fmt.Errorf("read body: %w", err))
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") || strings.Contains(contentType, "text/markdown") {
		return models.PageResult{URL: pageURL, Succeeded: true, Markdown: string(body)}
	}

	base := resp.Request.URL
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Errorf("parse html: %w", err))
	}

	markdown, err := f.converter.ConvertString(string(body))
	if err != nil {
		return fail(fmt.Errorf("convert html: %w", err))
	}

	return models.PageResult{
		URL:           pageURL,
		Succeeded:     true,
		Markdown:      strings.TrimSpace(markdown),
		InternalLinks: internalLinks(doc, base),
	}
}

// internalLinks enumerates same-host anchor targets, resolved against the
// final request URL and deduplicated after fragment stripping.
func internalLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !strings.EqualFold(abs.Host, base.Host) {
			return
		}
		abs.Fragment = ""

		link := abs.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

var _ core.PageFetcher = (*WebFetcher)(nil)
