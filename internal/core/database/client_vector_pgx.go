package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/models"
)

// VectorClient implements core.VectorStore on Postgres/pgvector. Embedding
// happens inside the store: a collection is opened with an embedding model
// name and every upsert/query embeds through the injected provider, so
// callers only deal in text.
type VectorClient struct {
	db       *sql.DB
	embedder core.EmbeddingProvider
}

func NewVectorClient(ctx context.Context, databaseURL string, embedder core.EmbeddingProvider) (*VectorClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedding provider is nil")
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &VectorClient{db: sqlDB, embedder: embedder}, nil
}

func (c *VectorClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// OpenOrCreateCollection returns the named collection, creating it on first
// use. An existing collection keeps the embedding model it was created with.
func (c *VectorClient) OpenOrCreateCollection(ctx context.Context, name, embeddingModel string) (*core.CollectionHandle, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is empty")
	}

	const insertQ = `
		INSERT INTO collections (name, embedding_model)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := c.db.ExecContext(ctx, insertQ, name, embeddingModel); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	const selectQ = `
		SELECT id, name, embedding_model FROM collections WHERE name = $1
	`
	var h core.CollectionHandle
	if err := c.db.QueryRowContext(ctx, selectQ, name).Scan(&h.ID, &h.Name, &h.EmbeddingModel); err != nil {
		return nil, fmt.Errorf("open collection %q: %w", name, err)
	}

	if embeddingModel != "" && h.EmbeddingModel != embeddingModel {
		logrus.Warnf("collection %q already uses embedding model %q, ignoring %q",
			name, h.EmbeddingModel, embeddingModel)
	}
	return &h, nil
}

// UpsertBatch embeds texts and writes one row per chunk. The write is
// transactional per call, but a failed call must still be treated by the
// caller as "unknown subset written" across calls.
func (c *VectorClient) UpsertBatch(ctx context.Context, coll *core.CollectionHandle, ids []string, texts []string, metadatas []models.ChunkMetadata) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert batch: ids/texts/metadatas length mismatch (%d/%d/%d)",
			len(ids), len(texts), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	vecs, err := c.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("embed batch: got %d vectors for %d texts", len(vecs), len(texts))
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO collection_chunks
			(collection_id, chunk_id, content, headers, char_count, word_count, chunk_index, source, embedding)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (collection_id, chunk_id) DO UPDATE SET
			content = EXCLUDED.content,
			headers = EXCLUDED.headers,
			char_count = EXCLUDED.char_count,
			word_count = EXCLUDED.word_count,
			chunk_index = EXCLUDED.chunk_index,
			source = EXCLUDED.source,
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range ids {
		meta := metadatas[i]
		_, err := stmt.ExecContext(ctx,
			coll.ID, ids[i], texts[i],
			meta.Headers, meta.CharCount, meta.WordCount, meta.ChunkIndex, meta.Source,
			pgvector.NewVector(vecs[i]),
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", ids[i], err)
		}
	}

	return tx.Commit()
}

// Query embeds the query text and returns the topK chunks by cosine distance.
func (c *VectorClient) Query(ctx context.Context, coll *core.CollectionHandle, queryText string, topK int) ([]models.QueryMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	vecs, err := c.embedder.EmbedTexts(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	qvec := pgvector.NewVector(vecs[0])

	const q = `
		SELECT chunk_id, content, headers, char_count, word_count, chunk_index, source,
		       embedding <=> $2 AS distance
		FROM collection_chunks
		WHERE collection_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, coll.ID, qvec, topK)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", coll.Name, err)
	}
	defer rows.Close()

	var out []models.QueryMatch
	for rows.Next() {
		var m models.QueryMatch
		if err := rows.Scan(
			&m.ChunkID, &m.Content,
			&m.Metadata.Headers, &m.Metadata.CharCount, &m.Metadata.WordCount,
			&m.Metadata.ChunkIndex, &m.Metadata.Source,
			&m.Distance,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ core.VectorStore = (*VectorClient)(nil)
