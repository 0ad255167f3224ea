package ingestion_engine

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/core/chunker"
	"github.com/markdave123-py/Crawlexa/internal/core/crawler"
	"github.com/markdave123-py/Crawlexa/internal/models"
)

// Pipeline wires the crawl, chunking and vector-store layers into the two
// ingestion entrypoints: IngestURL for web content and IngestObject for
// documents already sitting in object storage.
type Pipeline struct {
	orch       *crawler.Orchestrator
	store      core.VectorStore
	objects    core.ObjectClient
	extractor  core.DocumentExtractor
	httpClient *http.Client
}

func NewPipeline(orch *crawler.Orchestrator, store core.VectorStore, objects core.ObjectClient, extractor core.DocumentExtractor) *Pipeline {
	return &Pipeline{
		orch:       orch,
		store:      store,
		objects:    objects,
		extractor:  extractor,
		httpClient: http.DefaultClient,
	}
}

// IngestURL crawls rawURL according to its detected type, chunks every page
// and upserts the chunks into the target collection.
//
// Sitemap URLs are expanded into their <loc> entries and fetched as one
// batch. Plain-text URLs are fetched alone. Everything else is crawled
// breadth-first over same-origin links up to opts.MaxDepth.
//
// An unreachable or empty sitemap yields a zero outcome, not an error; a
// vector-store failure returns the partial outcome alongside the error.
func (p *Pipeline) IngestURL(ctx context.Context, rawURL string, opts IngestOptions) (*models.IngestionOutcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ingest options: %w", err)
	}

	srcType := crawler.Classify(rawURL)
	logrus.Infof("ingest: %s detected as %s", rawURL, srcType)

	var results []models.PageResult
	switch srcType {
	case crawler.SourceSitemap:
		locs := crawler.DedupURLs(crawler.ParseSitemap(ctx, p.httpClient, rawURL))
		if len(locs) == 0 {
			logrus.Warnf("ingest: sitemap %s yielded no URLs", rawURL)
			return &models.IngestionOutcome{}, nil
		}
		results = p.orch.CrawlBatch(ctx, locs, opts.MaxConcurrent)
	case crawler.SourceTextResource:
		results = p.orch.CrawlSingle(ctx, rawURL)
	default:
		results = p.orch.CrawlRecursive(ctx, []string{rawURL}, opts.MaxDepth, opts.MaxConcurrent)
	}

	return p.loadResults(ctx, results, opts)
}

// IngestObject pulls one object out of object storage, extracts its text and
// runs it through the same chunk-and-upsert path as a crawled page. The
// chunk source is recorded as s3://bucket/key.
func (p *Pipeline) IngestObject(ctx context.Context, bucket, key string, opts IngestOptions) (*models.IngestionOutcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ingest options: %w", err)
	}
	if p.objects == nil || p.extractor == nil {
		return nil, fmt.Errorf("object ingestion is not configured")
	}

	data, err := p.objects.GetFile(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	text, err := p.extractor.ExtractText(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting s3://%s/%s: %w", bucket, key, err)
	}

	results := []models.PageResult{{
		URL:       fmt.Sprintf("s3://%s/%s", bucket, key),
		Succeeded: true,
		Markdown:  text,
	}}
	return p.loadResults(ctx, results, opts)
}

// loadResults chunks every successful page and upserts the chunks in
// opts.BatchSize slices. Chunk ids are chunk-<n> with n counting across the
// whole run, so ids are unique within a run and stable for identical runs.
func (p *Pipeline) loadResults(ctx context.Context, results []models.PageResult, opts IngestOptions) (*models.IngestionOutcome, error) {
	coll, err := p.store.OpenOrCreateCollection(ctx, opts.Collection, opts.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", opts.Collection, err)
	}

	outcome := &models.IngestionOutcome{}

	var (
		ids       []string
		texts     []string
		metadatas []models.ChunkMetadata
	)
	chunkIdx := 0
	for _, res := range results {
		if !res.Succeeded {
			outcome.Sources = append(outcome.Sources, models.SourceResult{
				URL:   res.URL,
				Error: res.ErrorMessage,
			})
			continue
		}

		chunks := chunker.SmartChunkMarkdown(res.Markdown, opts.ChunkSize)
		for _, text := range chunks {
			info := chunker.ExtractSectionInfo(text)
			ids = append(ids, fmt.Sprintf("chunk-%d", chunkIdx))
			texts = append(texts, text)
			metadatas = append(metadatas, models.ChunkMetadata{
				Headers:    info.Headers,
				CharCount:  info.CharCount,
				WordCount:  info.WordCount,
				ChunkIndex: chunkIdx,
				Source:     res.URL,
			})
			chunkIdx++
		}
		outcome.Sources = append(outcome.Sources, models.SourceResult{
			URL:        res.URL,
			ChunkCount: len(chunks),
		})
	}

	for start := 0; start < len(ids); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := p.store.UpsertBatch(ctx, coll, ids[start:end], texts[start:end], metadatas[start:end]); err != nil {
			return outcome, fmt.Errorf("upserting chunks %d..%d: %w", start, end-1, err)
		}
		outcome.TotalChunksInserted += end - start
	}

	logrus.Infof("ingest: inserted %d chunks from %d sources into %q",
		outcome.TotalChunksInserted, len(outcome.Sources), opts.Collection)
	return outcome, nil
}
