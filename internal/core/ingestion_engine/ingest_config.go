package ingestion_engine

import (
	"fmt"
)

// IngestOptions tunes one ingestion run.
//
// Collection:     target collection in the vector store.
// EmbeddingModel: model name recorded when the collection is first created.
// ChunkSize:      max chunk size in characters.
// MaxDepth:       BFS depth for recursive crawls of regular URLs.
// MaxConcurrent:  max fetches in flight within one crawl batch.
// BatchSize:      chunks per vector-store upsert call.
type IngestOptions struct {
	Collection     string
	EmbeddingModel string
	ChunkSize      int
	MaxDepth       int
	MaxConcurrent  int
	BatchSize      int
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() IngestOptions {
	return IngestOptions{
		Collection:    "docs",
		ChunkSize:     1000,
		MaxDepth:      3,
		MaxConcurrent: 10,
		BatchSize:     100,
	}
}

// Validate rejects unusable options before any I/O happens.
func (o IngestOptions) Validate() error {
	if o.Collection == "" {
		return fmt.Errorf("collection name must not be empty")
	}
	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", o.ChunkSize)
	}
	if o.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", o.MaxDepth)
	}
	if o.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent must be positive, got %d", o.MaxConcurrent)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	return nil
}
