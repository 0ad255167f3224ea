package crawler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Crawlexa/internal/models"
)

// fakeFetcher serves a canned link graph and records every fetch.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]models.PageResult
	calls   map[string]int
	delay   time.Duration
	inFly   atomic.Int32
	maxFly  atomic.Int32
}

func newFakeFetcher(pages map[string]models.PageResult) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: make(map[string]int)}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, url string) models.PageResult {
	cur := f.inFly.Add(1)
	for {
		max := f.maxFly.Load()
		if cur <= max || f.maxFly.CompareAndSwap(max, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.inFly.Add(-1)

	f.mu.Lock()
	f.calls[url]++
	f.mu.Unlock()

	if res, ok := f.pages[url]; ok {
		res.URL = url
		return res
	}
	return models.PageResult{URL: url, ErrorMessage: "not found"}
}

func page(markdown string, links ...string) models.PageResult {
	return models.PageResult{Succeeded: true, Markdown: markdown, InternalLinks: links}
}

func TestCrawlSingle_FailureIsStillOneResult(t *testing.T) {
	f := newFakeFetcher(nil)
	o := NewOrchestrator(f, time.Second)

	results := o.CrawlSingle(context.Background(), "https://x.com/missing")

	require.Len(t, results, 1)
	assert.False(t, results[0].Succeeded)
	assert.Equal(t, "https://x.com/missing", results[0].URL)
}

func TestCrawlBatch_EveryInputAppearsOnce(t *testing.T) {
	f := newFakeFetcher(map[string]models.PageResult{
		"https://x.com/a": page("a"),
		"https://x.com/c": page("c"),
	})
	o := NewOrchestrator(f, time.Second)

	results := o.CrawlBatch(context.Background(), []string{
		"https://x.com/a", "https://x.com/b", "https://x.com/c",
	}, 2)

	require.Len(t, results, 3)
	byURL := make(map[string]models.PageResult)
	for _, r := range results {
		byURL[r.URL] = r
	}
	assert.True(t, byURL["https://x.com/a"].Succeeded)
	assert.False(t, byURL["https://x.com/b"].Succeeded)
	assert.True(t, byURL["https://x.com/c"].Succeeded)
}

func TestCrawlBatch_RespectsConcurrencyCap(t *testing.T) {
	f := newFakeFetcher(nil)
	f.delay = 10 * time.Millisecond
	o := NewOrchestrator(f, time.Second)

	var urls []string
	for i := 0; i < 20; i++ {
		urls = append(urls, fmt.Sprintf("https://x.com/p%d", i))
	}
	o.CrawlBatch(context.Background(), urls, 3)

	assert.LessOrEqual(t, f.maxFly.Load(), int32(3))
}

func TestCrawlRecursive_VisitsEachURLOnce(t *testing.T) {
	f := newFakeFetcher(map[string]models.PageResult{
		"https://x.com/a": page("page a", "https://x.com/b", "https://x.com/c"),
		"https://x.com/b": page("page b", "https://x.com/a"),
		"https://x.com/c": page("page c"),
	})
	o := NewOrchestrator(f, time.Second)

	results := o.CrawlRecursive(context.Background(), []string{"https://x.com/a"}, 2, 2)

	require.Len(t, results, 3)
	for _, u := range []string{"https://x.com/a", "https://x.com/b", "https://x.com/c"} {
		assert.Equalf(t, 1, f.calls[u], "url %s fetched more than once", u)
	}
}

func TestCrawlRecursive_StopsAtMaxDepth(t *testing.T) {
	f := newFakeFetcher(map[string]models.PageResult{
		"https://x.com/0": page("0", "https://x.com/1"),
		"https://x.com/1": page("1", "https://x.com/2"),
		"https://x.com/2": page("2", "https://x.com/3"),
	})
	o := NewOrchestrator(f, time.Second)

	results := o.CrawlRecursive(context.Background(), []string{"https://x.com/0"}, 2, 2)

	require.Len(t, results, 2)
	assert.Zero(t, f.calls["https://x.com/2"])
}

func TestCrawlRecursive_EmptyFrontierEndsEarly(t *testing.T) {
	f := newFakeFetcher(map[string]models.PageResult{
		"https://x.com/only": page("alone"),
	})
	o := NewOrchestrator(f, time.Second)

	results := o.CrawlRecursive(context.Background(), []string{"https://x.com/only"}, 10, 2)

	require.Len(t, results, 1)
	assert.Equal(t, 1, f.calls["https://x.com/only"])
}

func TestCrawlRecursive_FailedURLIsNotRetried(t *testing.T) {
	f := newFakeFetcher(map[string]models.PageResult{
		"https://x.com/a": page("a", "https://x.com/dead"),
		"https://x.com/b": page("b", "https://x.com/dead"),
	})
	o := NewOrchestrator(f, time.Second)

	results := o.CrawlRecursive(context.Background(), []string{"https://x.com/a", "https://x.com/b"}, 4, 2)

	// The dead link was reachable from two pages but fetched only once, and
	// it never shows up in the output.
	assert.Equal(t, 1, f.calls["https://x.com/dead"])
	for _, r := range results {
		assert.NotEqual(t, "https://x.com/dead", r.URL)
	}
}

func TestCrawlRecursive_FragmentsDedupToOneURL(t *testing.T) {
	f := newFakeFetcher(map[string]models.PageResult{
		"https://x.com/doc": page("doc", "https://x.com/doc#a", "https://x.com/doc#b"),
	})
	o := NewOrchestrator(f, time.Second)

	results := o.CrawlRecursive(context.Background(), []string{"https://x.com/doc#intro"}, 3, 2)

	require.Len(t, results, 1)
	assert.Equal(t, 1, f.calls["https://x.com/doc"])
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://x.com/a", NormalizeURL("https://x.com/a#section"))
	assert.Equal(t, "https://x.com/a", NormalizeURL("https://x.com/a"))
	assert.Equal(t, "", NormalizeURL("#top"))
}

func TestDedupURLs(t *testing.T) {
	got := DedupURLs([]string{
		"https://x.com/a",
		"https://x.com/b",
		"https://x.com/a",
		"https://x.com/b#section",
		"https://x.com/c",
	})

	assert.Equal(t, []string{"https://x.com/a", "https://x.com/b", "https://x.com/c"}, got)
}

func TestDedupURLs_Empty(t *testing.T) {
	assert.Empty(t, DedupURLs(nil))
}
