package models

import (
	"time"
)

// PageResult represents one fetch attempt against a single URL.
// A failed fetch is still a result: Succeeded is false and ErrorMessage
// carries the reason. The fetch layer never raises for a bad page.
type PageResult struct {
	URL           string   `json:"url"`
	Succeeded     bool     `json:"succeeded"`
	Markdown      string   `json:"markdown"`
	InternalLinks []string `json:"internal_links"`
	ErrorMessage  string   `json:"error_message,omitempty"`
}

// Chunk is one bounded-length slice of a source document, the unit stored
// in the vector index.
type Chunk struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

// ChunkMetadata is derived deterministically from a chunk's text.
type ChunkMetadata struct {
	Headers    string `db:"headers" json:"headers"`
	CharCount  int    `db:"char_count" json:"char_count"`
	WordCount  int    `db:"word_count" json:"word_count"`
	ChunkIndex int    `db:"chunk_index" json:"chunk_index"`
	Source     string `db:"source" json:"source"`
}

// SourceResult summarizes what one source URL contributed to a run.
type SourceResult struct {
	URL        string `json:"url"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// IngestionOutcome is the final report of one ingestion run.
// Sources are ordered by crawl-visit order.
type IngestionOutcome struct {
	TotalChunksInserted int            `json:"total_chunks_inserted"`
	Sources             []SourceResult `json:"sources"`
}

// QueryMatch is one ranked hit from a similarity query.
type QueryMatch struct {
	ChunkID  string        `db:"chunk_id" json:"chunk_id"`
	Content  string        `db:"content" json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float32       `db:"distance" json:"distance"`
}

// CrawlRun tracks the state of one ingestion job submitted over the API.
// Status: queued | running | complete | failed
type CrawlRun struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Collection string            `json:"collection"`
	Status     string            `json:"status"`
	Outcome    *IngestionOutcome `json:"outcome,omitempty"`
	Error      string            `json:"error,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
