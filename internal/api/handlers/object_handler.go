package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Crawlexa/internal/config"
	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/core/ingestion_engine"
)

const maxUploadSize = 52 << 20

// ObjectHandler serves the document ingestion path: either upload a file and
// ingest it in one request, or ingest an object already sitting in storage.
type ObjectHandler struct {
	pipeline *ingestion_engine.Pipeline
	objects  core.ObjectClient
	cfg      *config.Config
}

func NewObjectHandler(pipeline *ingestion_engine.Pipeline, objects core.ObjectClient, cfg *config.Config) *ObjectHandler {
	return &ObjectHandler{pipeline: pipeline, objects: objects, cfg: cfg}
}

type IngestObjectRequest struct {
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	Collection string `json:"collection"`
	ChunkSize  int    `json:"chunk_size"`
	BatchSize  int    `json:"batch_size"`
}

// IngestObject chunks and indexes one stored object. Documents are a single
// source, so unlike crawls this runs synchronously.
func (h *ObjectHandler) IngestObject(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		http.Error(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}

	var req IngestObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	if req.Bucket == "" {
		req.Bucket = h.cfg.BucketName
	}

	opts := h.objectOpts(req.Collection, req.ChunkSize, req.BatchSize)
	outcome, err := h.pipeline.IngestObject(r.Context(), req.Bucket, req.Key, opts)
	if err != nil {
		http.Error(w, fmt.Sprintf("ingest failed: %v", err), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(outcome)
}

// UploadObject stores an uploaded file in the bucket and ingests it. If
// ingestion fails the stored object is removed again so the bucket doesn't
// accumulate unindexed files.
func (h *ObjectHandler) UploadObject(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		http.Error(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Base strips any path components from the client-supplied filename.
	key := fmt.Sprintf("%s/%s", uuid.NewString(), filepath.Base(header.Filename))
	url, err := h.objects.UploadFile(r.Context(), h.cfg.BucketName, key, data, contentType)
	if err != nil {
		http.Error(w, fmt.Sprintf("upload failed: %v", err), http.StatusInternalServerError)
		return
	}

	opts := h.objectOpts(r.FormValue("collection"), 0, 0)
	outcome, err := h.pipeline.IngestObject(r.Context(), h.cfg.BucketName, key, opts)
	if err != nil {
		if delErr := h.objects.DeleteFile(r.Context(), h.cfg.BucketName, key); delErr != nil {
			logrus.Errorf("cleanup of %s after failed ingest: %v", key, delErr)
		}
		http.Error(w, fmt.Sprintf("ingest failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"url":     url,
		"key":     key,
		"outcome": outcome,
	})
}

func (h *ObjectHandler) objectOpts(collection string, chunkSize, batchSize int) ingestion_engine.IngestOptions {
	opts := ingestion_engine.IngestOptions{
		Collection:     collection,
		EmbeddingModel: h.cfg.EmbedModel,
		ChunkSize:      chunkSize,
		MaxDepth:       1,
		MaxConcurrent:  1,
		BatchSize:      batchSize,
	}
	if opts.Collection == "" {
		opts.Collection = "docs"
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = h.cfg.ChunkSize
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = h.cfg.BatchSize
	}
	return opts
}
