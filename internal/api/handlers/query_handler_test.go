package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Crawlexa/internal/core/runstore"
	"github.com/markdave123-py/Crawlexa/internal/models"
)

func TestQueryReturnsMatches(t *testing.T) {
	store := &stubStore{matches: []models.QueryMatch{
		{ChunkID: "chunk-0", Content: "install the package", Distance: 0.12},
		{ChunkID: "chunk-3", Content: "configure the client", Distance: 0.31},
	}}
	r := newTestRouter(runstore.NewMemoryStore(), store)

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"query": "installation"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Collection string              `json:"collection"`
		Matches    []models.QueryMatch `json:"matches"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "docs", resp.Collection)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "chunk-0", resp.Matches[0].ChunkID)
}

func TestQueryRequiresQueryText(t *testing.T) {
	r := newTestRouter(runstore.NewMemoryStore(), &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"collection": "docs"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryStoreError(t *testing.T) {
	store := &stubStore{queryErr: fmt.Errorf("connection refused")}
	r := newTestRouter(runstore.NewMemoryStore(), store)

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"query": "anything"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
