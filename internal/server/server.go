package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/rota/internal/config"
	"github.com/me/rota/internal/controller"
	"github.com/me/rota/internal/store"
)

// Server is the Rota REST API server.
type Server struct {
	router     chi.Router
	logger     *slog.Logger
	config     config.ServerConfig
	startTime  time.Time
	store      store.Store
	controller *controller.Controller

	// jobCtx bounds submitted jobs. Jobs outlive the request that
	// created them, so they must not inherit the request context.
	jobCtx context.Context
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithJobContext sets the context that bounds submitted jobs. Defaults
// to context.Background().
func WithJobContext(ctx context.Context) Option {
	return func(s *Server) {
		s.jobCtx = ctx
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, ctrl *controller.Controller, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		logger:     logger.With("component", "server"),
		config:     cfg,
		startTime:  time.Now(),
		store:      st,
		controller: ctrl,
		jobCtx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// API routes (JSON)
	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Jobs
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Post("/", s.handleSubmitJob)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetJob)
				r.Post("/cancel", s.handleCancelJob)
				r.Get("/results", s.handleGetResults)
				r.Get("/failures", s.handleGetFailures)
			})
		})

		// SSE endpoints for real-time updates
		r.Route("/sse", func(r chi.Router) {
			r.Get("/jobs/{id}", s.handleSSEJob)
		})
	})
}
