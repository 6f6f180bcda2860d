// Package httpserver provides the HTTP REST API server for the review
// verification service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reviewproof/review-verification-service/internal/database"
	"github.com/reviewproof/review-verification-service/internal/events"
	"github.com/reviewproof/review-verification-service/internal/observability"
	"github.com/reviewproof/review-verification-service/internal/repository"
	"github.com/reviewproof/review-verification-service/internal/temporal"
)

// WorkflowClient defines the workflow operations the HTTP server needs. It is
// satisfied by *temporal.VerificationWorkflowClient.
type WorkflowClient interface {
	StartSweepWorkflow(ctx context.Context, businessID uuid.UUID, workflowFunc interface{}, input temporal.SweepWorkflowInput) (workflowID, runID string, err error)
}

// Server is the HTTP REST API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	workflowClient WorkflowClient
	workflowFunc   interface{} // The Temporal sweep workflow function reference.
	businessRepo   repository.BusinessRepository
	reviewRepo     repository.ReviewRepository
	sweepRepo      repository.SweepRepository
	publisher      events.Publisher
	db             *database.DB
	metrics        *observability.Metrics
	logger         zerolog.Logger
	validate       *validator.Validate
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with all dependencies.
// workflowFunc is the Temporal workflow function reference
// (e.g., workflows.VerificationSweepWorkflow) passed to StartSweepWorkflow.
// The metrics parameter may be nil (metrics recording will be skipped).
func NewServer(
	cfg Config,
	workflowClient WorkflowClient,
	workflowFunc interface{},
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	sweepRepo repository.SweepRepository,
	publisher events.Publisher,
	db *database.DB,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		workflowClient: workflowClient,
		workflowFunc:   workflowFunc,
		businessRepo:   businessRepo,
		reviewRepo:     reviewRepo,
		sweepRepo:      sweepRepo,
		publisher:      publisher,
		db:             db,
		metrics:        metrics,
		logger:         logger.With().Str("component", "http-server").Logger(),
		validate:       validator.New(),
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

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/businesses", s.createBusiness)
		r.Get("/businesses", s.listBusinesses)
		r.Get("/businesses/{businessID}", s.getBusiness)

		r.Post("/businesses/{businessID}/reviews", s.submitReview)
		r.Get("/businesses/{businessID}/reviews", s.listBusinessReviews)

		r.Post("/businesses/{businessID}/sweeps", s.startSweep)
		r.Get("/businesses/{businessID}/sweeps", s.listSweeps)

		r.Get("/reviews/{reviewID}", s.getReview)
		r.Post("/reviews/{reviewID}/resolve", s.resolveReview)

		r.Get("/manual-queue", s.listManualQueue)
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

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
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
