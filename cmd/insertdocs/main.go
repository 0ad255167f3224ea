package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markdave123-py/Crawlexa/internal/config"
	"github.com/markdave123-py/Crawlexa/internal/core/crawler"
	db "github.com/markdave123-py/Crawlexa/internal/core/database"
	"github.com/markdave123-py/Crawlexa/internal/core/ingestion_engine"
	"github.com/markdave123-py/Crawlexa/internal/core/llm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		collection     string
		embeddingModel string
		chunkSize      int
		maxDepth       int
		maxConcurrent  int
		batchSize      int
	)

	cmd := &cobra.Command{
		Use:   "insertdocs <url>",
		Short: "Crawl a URL and store its content in the vector index",
		Long: `insertdocs fetches web content, chunks it by Markdown headers and
inserts the chunks into a pgvector collection.

The URL type is detected automatically: sitemaps are expanded into their
listed pages, .txt files are fetched alone, and everything else is crawled
recursively over same-origin links.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ingestion_engine.IngestOptions{
				Collection:     collection,
				EmbeddingModel: embeddingModel,
				ChunkSize:      chunkSize,
				MaxDepth:       maxDepth,
				MaxConcurrent:  maxConcurrent,
				BatchSize:      batchSize,
			}
			return run(cmd.Context(), args[0], opts)
		},
		SilenceUsage: true,
	}

	defaults := ingestion_engine.DefaultOptions()
	cmd.Flags().StringVar(&collection, "collection", defaults.Collection, "Target collection name")
	cmd.Flags().StringVar(&embeddingModel, "embedding-model", "", "Embedding model name (default from EMBED_MODEL)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", defaults.ChunkSize, "Max chunk size in characters")
	cmd.Flags().IntVar(&maxDepth, "max-depth", defaults.MaxDepth, "Recursion depth for regular URLs")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", defaults.MaxConcurrent, "Max parallel fetches")
	cmd.Flags().IntVar(&batchSize, "batch-size", defaults.BatchSize, "Chunks per insert batch")

	return cmd
}

func run(ctx context.Context, url string, opts ingestion_engine.IngestOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = cfg.EmbedModel
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, opts.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("couldn't initialize the embedder, %w", err)
	}
	defer embedder.Close()

	store, err := db.NewVectorClient(ctx, cfg.DatabaseURL, embedder)
	if err != nil {
		return err
	}
	defer store.Close()

	fetcher := crawler.NewWebFetcher(cfg.FetchTimeout)
	orch := crawler.NewOrchestrator(fetcher, cfg.FetchTimeout)
	pipeline := ingestion_engine.NewPipeline(orch, store, nil, nil)

	outcome, err := pipeline.IngestURL(ctx, url, opts)
	if err != nil {
		return err
	}
	if outcome.TotalChunksInserted == 0 {
		return fmt.Errorf("no content ingested from %s", url)
	}

	fmt.Printf("Inserted %d chunks from %d sources into collection %q.\n",
		outcome.TotalChunksInserted, len(outcome.Sources), opts.Collection)
	for _, src := range outcome.Sources {
		if src.Error != "" {
			fmt.Printf("  failed  %s: %s\n", src.URL, src.Error)
			continue
		}
		fmt.Printf("  %4d chunks  %s\n", src.ChunkCount, src.URL)
	}
	return nil
}
