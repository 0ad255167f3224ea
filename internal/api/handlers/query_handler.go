package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/markdave123-py/Crawlexa/internal/config"
	"github.com/markdave123-py/Crawlexa/internal/core"
)

type QueryHandler struct {
	store core.VectorStore
	cfg   *config.Config
}

func NewQueryHandler(store core.VectorStore, cfg *config.Config) *QueryHandler {
	return &QueryHandler{store: store, cfg: cfg}
}

type QueryRequest struct {
	Collection string `json:"collection"`
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
}

// Query returns the chunks nearest to the query text in a collection.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.Collection == "" {
		req.Collection = "docs"
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	coll, err := h.store.OpenOrCreateCollection(ctx, req.Collection, h.cfg.EmbedModel)
	if err != nil {
		http.Error(w, fmt.Sprintf("opening collection failed: %v", err), http.StatusInternalServerError)
		return
	}

	matches, err := h.store.Query(ctx, coll, req.Query, req.TopK)
	if err != nil {
		http.Error(w, fmt.Sprintf("query failed: %v", err), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"collection": req.Collection,
		"matches":    matches,
	})
}
