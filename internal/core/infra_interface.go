package core

import (
	"context"

	"github.com/markdave123-py/Crawlexa/internal/models"
)

// PageFetcher fetches one URL and returns its content normalized to Markdown
// plus the same-origin links found on the page. Fetch failures are reported
// inside the PageResult, never as an error value, so a bad page can't abort
// a larger crawl.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) models.PageResult
}

// CollectionHandle identifies an opened collection in the vector store.
type CollectionHandle struct {
	ID             string
	Name           string
	EmbeddingModel string
}

// VectorStore abstracts the pgvector-backed chunk store so higher layers
// never depend on a specific database.
type VectorStore interface {
	// OpenOrCreateCollection returns the named collection, creating it with
	// the given embedding model name if it does not exist yet.
	OpenOrCreateCollection(ctx context.Context, name, embeddingModel string) (*CollectionHandle, error)

	// UpsertBatch embeds texts and writes (id, text, metadata) rows into the
	// collection. ids, texts and metadatas must have equal length. A failed
	// call may have written an unknown subset of the batch.
	UpsertBatch(ctx context.Context, coll *CollectionHandle, ids []string, texts []string, metadatas []models.ChunkMetadata) error

	// Query embeds queryText and returns the topK nearest chunks.
	Query(ctx context.Context, coll *CollectionHandle, queryText string, topK int) ([]models.QueryMatch, error)

	Close() error
}

// EmbeddingProvider turns texts into vectors (Gemini/OpenAI/etc).
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error
}

// DocumentExtractor extracts plain text from a stored document
// (PDF, DOCX, HTML, plain text) for the object ingestion path.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}

// RunStore records crawl-run state for status lookups. One store per process;
// implementations may be backed by durable storage later.
type RunStore interface {
	Get(id string) (*models.CrawlRun, bool)
	Put(run *models.CrawlRun)
}
