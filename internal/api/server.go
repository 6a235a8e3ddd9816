// Package api provides the HTTP API server and handlers for the lecture server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/knodemy/lecture-server/internal/http/response"
	"github.com/knodemy/lecture-server/internal/service"
	"github.com/knodemy/lecture-server/internal/store"
	"github.com/knodemy/lecture-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	batch     *service.Batch
	store     store.Store
	validator *validation.Validator
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(batch *service.Batch, st store.Store, validator *validation.Validator, logger *slog.Logger) *Server {
	s := &Server{
		batch:     batch,
		store:     st,
		validator: validator,
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/lectures", func(r chi.Router) {
			r.Post("/generate-for-date", s.handleGenerateForDate)
			r.Post("/generate-today", s.handleGenerateToday)
			r.Post("/generate-tomorrow", s.handleGenerateTomorrow)
			r.Get("/preview-date", s.handlePreviewDate)

			r.Route("/runs", func(r chi.Router) {
				r.Get("/", s.handleListRuns)
				r.Get("/{runID}", s.handleGetRun)
			})
		})

		r.Get("/voices", s.handleListVoices)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
