package ingestion_engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Crawlexa/internal/core/runstore"
	"github.com/markdave123-py/Crawlexa/internal/models"
)

func waitForStatus(t *testing.T, runs *runstore.MemoryStore, id string, want ...string) *models.CrawlRun {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if run, ok := runs.Get(id); ok {
			for _, s := range want {
				if run.Status == s {
					return run
				}
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("run %s never reached status %v", id, want)
	return nil
}

func TestWorkerCompletesRun(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]models.PageResult{
		"https://x.com/notes.txt": {Succeeded: true, Markdown: "hello world"},
	}}
	store := &fakeStore{}
	runs := runstore.NewMemoryStore()

	w := NewWorker(newTestPipeline(fetcher, store), runs)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx, 1)

	runs.Put(&models.CrawlRun{ID: "r1", URL: "https://x.com/notes.txt", Collection: "docs", Status: "queued"})
	w.Enqueue(IngestJob{RunID: "r1", URL: "https://x.com/notes.txt", Opts: testOpts()})

	run := waitForStatus(t, runs, "r1", "complete")
	require.NotNil(t, run.Outcome)
	assert.Equal(t, 1, run.Outcome.TotalChunksInserted)
	assert.Empty(t, run.Error)
}

func TestWorkerRecordsFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]models.PageResult{
		"https://x.com/notes.txt": {Succeeded: true, Markdown: "hello world"},
	}}
	store := &fakeStore{failAfter: 1}
	runs := runstore.NewMemoryStore()

	w := NewWorker(newTestPipeline(fetcher, store), runs)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx, 1)

	runs.Put(&models.CrawlRun{ID: "r1", URL: "https://x.com/notes.txt", Collection: "docs", Status: "queued"})
	w.Enqueue(IngestJob{RunID: "r1", URL: "https://x.com/notes.txt", Opts: testOpts()})

	run := waitForStatus(t, runs, "r1", "failed")
	assert.Contains(t, run.Error, "store unavailable")
}
