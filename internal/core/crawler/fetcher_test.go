package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>Docs</title></head><body>
<h1>Getting Started</h1>
<p>Install the thing.</p>
<a href="/guide">guide</a>
<a href="/guide#install">guide anchor</a>
<a href="https://elsewhere.example/offsite">offsite</a>
<a href="mailto:team@x.com">mail</a>
</body></html>`

func TestFetchPage_ConvertsHTMLToMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	res := NewWebFetcher(5 * time.Second).FetchPage(context.Background(), srv.URL)

	require.True(t, res.Succeeded, "unexpected failure: %s", res.ErrorMessage)
	assert.Contains(t, res.Markdown, "# Getting Started")
	assert.Contains(t, res.Markdown, "Install the thing.")
}

func TestFetchPage_CollectsInternalLinksWithoutFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	res := NewWebFetcher(5 * time.Second).FetchPage(context.Background(), srv.URL)

	require.True(t, res.Succeeded)
	// Same-host only, fragment stripped, deduplicated.
	assert.Equal(t, []string{srv.URL + "/guide"}, res.InternalLinks)
}

func TestFetchPage_PlainTextPassesThrough(t *testing.T) {
	body := "# Title\n\nplain markdown body\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	res := NewWebFetcher(5 * time.Second).FetchPage(context.Background(), srv.URL)

	require.True(t, res.Succeeded)
	assert.Equal(t, body, res.Markdown)
	assert.Empty(t, res.InternalLinks)
}

func TestFetchPage_Non200IsFailureResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := NewWebFetcher(5 * time.Second).FetchPage(context.Background(), srv.URL)

	assert.False(t, res.Succeeded)
	assert.Contains(t, res.ErrorMessage, "HTTP 500")
	assert.Equal(t, srv.URL, res.URL)
}

func TestFetchPage_TimeoutIsFailureResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := NewWebFetcher(5 * time.Second).FetchPage(ctx, srv.URL)

	assert.False(t, res.Succeeded)
	assert.NotEmpty(t, res.ErrorMessage)
}
