package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Crawlexa/internal/api/handlers"
	"github.com/markdave123-py/Crawlexa/internal/config"
	"github.com/markdave123-py/Crawlexa/internal/core"
	"github.com/markdave123-py/Crawlexa/internal/core/ingestion_engine"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, store core.VectorStore, worker *ingestion_engine.Worker, runs core.RunStore, pipeline *ingestion_engine.Pipeline, objects core.ObjectClient) *Server {
	ingestHandler := handlers.NewIngestHandler(worker, runs, cfg)
	queryHandler := handlers.NewQueryHandler(store, cfg)
	objectHandler := handlers.NewObjectHandler(pipeline, objects, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/ingest", ingestHandler.StartIngest)
		api.Post("/ingest-object", objectHandler.IngestObject)
		api.Post("/objects/upload", objectHandler.UploadObject)
		api.Get("/runs/{id}", ingestHandler.GetRun)
		api.Post("/query", queryHandler.Query)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	logrus.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logrus.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
