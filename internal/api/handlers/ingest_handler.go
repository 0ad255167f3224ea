package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markdave123-py/Crawlexa/internal/config"
	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/core/ingestion_engine"
	"github.com/markdave123-py/Crawlexa/internal/models"
)

type IngestHandler struct {
	worker *ingestion_engine.Worker
	runs   core.RunStore
	cfg    *config.Config
}

func NewIngestHandler(worker *ingestion_engine.Worker, runs core.RunStore, cfg *config.Config) *IngestHandler {
	return &IngestHandler{worker: worker, runs: runs, cfg: cfg}
}

type IngestRequest struct {
	URL           string `json:"url"`
	Collection    string `json:"collection"`
	ChunkSize     int    `json:"chunk_size"`
	MaxDepth      int    `json:"max_depth"`
	MaxConcurrent int    `json:"max_concurrent"`
	BatchSize     int    `json:"batch_size"`
}

// StartIngest queues a crawl and returns its run ID immediately. Crawls can
// take minutes, so the work happens on the ingest worker and the caller
// polls GET /api/runs/{id}.
func (h *IngestHandler) StartIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	opts := h.optsFromRequest(req)
	if err := opts.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	run := &models.CrawlRun{
		ID:         uuid.NewString(),
		URL:        req.URL,
		Collection: opts.Collection,
		Status:     "queued",
		CreatedAt:  time.Now(),
	}
	h.runs.Put(run)
	h.worker.Enqueue(ingestion_engine.IngestJob{RunID: run.ID, URL: req.URL, Opts: opts})

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(run)
}

// GetRun reports the state of one ingestion run.
func (h *IngestHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, ok := h.runs.Get(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(run)
}

func (h *IngestHandler) optsFromRequest(req IngestRequest) ingestion_engine.IngestOptions {
	opts := ingestion_engine.IngestOptions{
		Collection:     req.Collection,
		EmbeddingModel: h.cfg.EmbedModel,
		ChunkSize:      req.ChunkSize,
		MaxDepth:       req.MaxDepth,
		MaxConcurrent:  req.MaxConcurrent,
		BatchSize:      req.BatchSize,
	}
	if opts.Collection == "" {
		opts.Collection = "docs"
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = h.cfg.ChunkSize
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = h.cfg.MaxDepth
	}
	if opts.MaxConcurrent == 0 {
		opts.MaxConcurrent = h.cfg.MaxConcurrent
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = h.cfg.BatchSize
	}
	return opts
}
