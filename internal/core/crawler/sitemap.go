package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseSitemap fetches a sitemap XML resource and returns the URLs of its
// <loc> elements in document order, without deduplication. Any failure
// (network, non-200 status, malformed XML) is logged and yields an empty
// list; an empty sitemap is "no work" for the caller, not an error.
func ParseSitemap(ctx context.Context, client *http.Client, sitemapURL string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		logrus.Warnf("sitemap: build request for %s: %v", sitemapURL, err)
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		logrus.Warnf("sitemap: fetch %s: %v", sitemapURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.Warnf("sitemap: HTTP %d for %s", resp.StatusCode, sitemapURL)
		return nil
	}

	urls, err := extractLocs(resp.Body)
	if err != nil {
		logrus.Warnf("sitemap: parse %s: %v", sitemapURL, err)
		return nil
	}
	return urls
}

// extractLocs walks the XML token stream and collects the text of every
// <loc> element, whatever namespace the sitemap declares.
func extractLocs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var urls []string
	var inLoc bool
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "loc" {
				inLoc = true
				text.Reset()
			}
		case xml.CharData:
			if inLoc {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "loc" {
				inLoc = false
				if u := strings.TrimSpace(text.String()); u != "" {
					urls = append(urls, u)
				}
			}
		}
	}
	return urls, nil
}
