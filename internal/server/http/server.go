// Package httpserver provides the HTTP REST API server for the literature
// aggregation service.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/paperscope/literature-aggregation-service/internal/aggregator"
	"github.com/paperscope/literature-aggregation-service/internal/domain"
	"github.com/paperscope/literature-aggregation-service/internal/sources"
)

// RecordFinder resolves a single record by DOI.
type RecordFinder interface {
	GetByDOI(ctx context.Context, doi string) (*domain.Record, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	aggregator    *aggregator.Aggregator
	registry      *sources.Registry
	finders       []RecordFinder
	validate      *validator.Validate
	logger        zerolog.Logger
	searchTimeout time.Duration
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	SearchTimeout   time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with all dependencies. The finders are
// consulted in order when resolving a DOI lookup; pass them most-reliable
// first.
func NewServer(
	cfg Config,
	agg *aggregator.Aggregator,
	registry *sources.Registry,
	finders []RecordFinder,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		aggregator:    agg,
		registry:      registry,
		finders:       finders,
		validate:      validator.New(),
		logger:        logger.With().Str("component", "http-server").Logger(),
		searchTimeout: cfg.SearchTimeout,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1/literature", func(r chi.Router) {
		r.Post("/search", s.searchLiterature)
		r.Post("/search/advanced", s.advancedSearchLiterature)
		// The wildcard keeps slashes inside DOIs intact.
		r.Get("/doi/*", s.lookupByDOI)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports readiness. The service is ready when at least one
// literature source is registered and enabled.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	enabled := s.registry.EnabledSources()
	if len(enabled) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  "no literature sources enabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"sources": len(enabled),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
