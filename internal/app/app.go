package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Crawlexa/internal/config"
	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/core/crawler"
	db "github.com/markdave123-py/Crawlexa/internal/core/database"
	"github.com/markdave123-py/Crawlexa/internal/core/ingestion_engine"
	"github.com/markdave123-py/Crawlexa/internal/core/llm"
	objectclient "github.com/markdave123-py/Crawlexa/internal/core/object-client"
	"github.com/markdave123-py/Crawlexa/internal/core/runstore"
)

type App struct {
	Store    core.VectorStore
	Embedder *llm.GeminiEmbedder
	Worker   *ingestion_engine.Worker
	Runs     core.RunStore
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	store, err := db.NewVectorClient(appCtx, cfg.DatabaseURL, embedder)
	if err != nil {
		return nil, err
	}
	logrus.Info("Database initialized and ready.")

	// Object storage is optional; the URL ingestion path works without it.
	var objClient core.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		objClient, err = objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		logrus.Info("Object client initialized and ready.")
	} else {
		logrus.Warn("AWS credentials not set; object ingestion disabled")
	}

	fetcher := crawler.NewWebFetcher(cfg.FetchTimeout)
	orch := crawler.NewOrchestrator(fetcher, cfg.FetchTimeout)
	extractor := ingestion_engine.NewDocconvExtractor(false)

	pipeline := ingestion_engine.NewPipeline(orch, store, objClient, extractor)

	runs := runstore.NewMemoryStore()
	worker := ingestion_engine.NewWorker(pipeline, runs)
	worker.Start(ctx, cfg.NumWorkers)

	server := NewServer(cfg, store, worker, runs, pipeline, objClient)

	return &App{
		Store:    store,
		Embedder: embedder,
		Worker:   worker,
		Runs:     runs,
		Server:   server,
	}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
}
