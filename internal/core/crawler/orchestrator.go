package crawler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/models"
)

// Orchestrator drives the page fetcher with a per-batch concurrency cap and
// per-run URL deduplication. One Orchestrator value is safe for concurrent
// runs because all crawl state lives inside each call.
type Orchestrator struct {
	fetcher      core.PageFetcher
	fetchTimeout time.Duration
}

func NewOrchestrator(fetcher core.PageFetcher, fetchTimeout time.Duration) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, fetchTimeout: fetchTimeout}
}

// NormalizeURL strips the fragment suffix so in-page anchors dedup to the
// same URL.
func NormalizeURL(rawURL string) string {
	base, _, _ := strings.Cut(rawURL, "#")
	return base
}

// DedupURLs normalizes each URL and drops duplicates, keeping first-seen
// order. Sitemaps may list the same page more than once; fetching it twice
// would double-insert its chunks under distinct ids.
func DedupURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		norm := NormalizeURL(u)
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

// CrawlSingle fetches exactly one URL. A failed fetch still yields a
// one-element result slice.
func (o *Orchestrator) CrawlSingle(ctx context.Context, pageURL string) []models.PageResult {
	return []models.PageResult{o.fetchOne(ctx, pageURL)}
}

// CrawlBatch fetches all URLs with at most maxConcurrent fetches in flight.
// Each input URL appears exactly once in the output; one URL failing never
// aborts the batch.
func (o *Orchestrator) CrawlBatch(ctx context.Context, urls []string, maxConcurrent int) []models.PageResult {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	results := make([]models.PageResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = o.fetchOne(gctx, u)
			return nil
		})
	}
	// Workers never return errors; failures live inside the results.
	_ = g.Wait()

	return results
}

// CrawlRecursive expands seeds breadth-first up to maxDepth levels. Every
// frontier URL counts as visited whether its fetch succeeded or not, so a
// failed URL is never retried within the run. Only successful fetches with
// non-empty markdown contribute to the output.
func (o *Orchestrator) CrawlRecursive(ctx context.Context, seeds []string, maxDepth, maxConcurrent int) []models.PageResult {
	visited := make(map[string]struct{})
	current := make(map[string]struct{})
	for _, s := range seeds {
		current[NormalizeURL(s)] = struct{}{}
	}

	var out []models.PageResult
	for depth := 0; depth < maxDepth; depth++ {
		frontier := make([]string, 0, len(current))
		for u := range current {
			if _, done := visited[u]; !done {
				frontier = append(frontier, u)
			}
		}
		if len(frontier) == 0 {
			break
		}
		sort.Strings(frontier)

		logrus.Infof("crawl depth %d: fetching %d urls", depth, len(frontier))
		results := o.CrawlBatch(ctx, frontier, maxConcurrent)

		next := make(map[string]struct{})
		for _, res := range results {
			visited[NormalizeURL(res.URL)] = struct{}{}

			if !res.Succeeded || res.Markdown == "" {
				if res.ErrorMessage != "" {
					logrus.Warnf("crawl: %s failed: %s", res.URL, res.ErrorMessage)
				}
				continue
			}
			out = append(out, res)

			for _, link := range res.InternalLinks {
				norm := NormalizeURL(link)
				if _, done := visited[norm]; !done {
					next[norm] = struct{}{}
				}
			}
		}
		current = next
	}

	return out
}

// fetchOne bounds one fetch with the per-fetch timeout. A fetch that blows
// the deadline is a failure for that URL only.
func (o *Orchestrator) fetchOne(ctx context.Context, pageURL string) models.PageResult {
	if o.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.fetchTimeout)
		defer cancel()
	}
	return o.fetcher.FetchPage(ctx, pageURL)
}
