// Package httpserver provides the HTTP API of the research assistant service.
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
	"github.com/rs/zerolog"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/planner"
	"github.com/helixir/research-assistant-service/internal/research"
)

// defaultMaxBodyBytes bounds request bodies when Config.MaxBodyBytes is unset.
const defaultMaxBodyBytes = 1 << 20

// Researcher runs research requests.
type Researcher interface {
	Research(ctx context.Context, req research.Request) research.Outcome
}

// PlanCreator builds study plans.
type PlanCreator interface {
	Create(topic, dueDate string) planner.Result
}

// Readiness describes what the deployment can serve. It is reported by
// /readyz.
type Readiness struct {
	Mode          domain.Mode
	LLMProvider   string
	LLMConfigured bool
	PaperSources  []string
}

// Ready reports whether the configured mode has what it needs.
func (r Readiness) Ready() bool {
	if r.Mode == domain.ModeMetadata {
		return len(r.PaperSources) > 0
	}
	return r.LLMConfigured
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	researcher Researcher
	planner    PlanCreator
	readiness  Readiness
	validate   *validator.Validate
	cfg        Config
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// RequestTimeout is the outer deadline applied to every API request.
	// Zero disables it.
	RequestTimeout time.Duration

	// MaxBodyBytes limits JSON request bodies.
	MaxBodyBytes int64
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, researcher Researcher, plans PlanCreator, readiness Readiness, logger zerolog.Logger) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		researcher: researcher,
		planner:    plans,
		readiness:  readiness,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		cfg:        cfg,
		logger:     logger.With().Str("component", "http-server").Logger(),
	}

	s.validate.RegisterTagNameFunc(jsonFieldName)
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
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(accessLogMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(jsonContentTypeMiddleware)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(requestTimeoutMiddleware(s.cfg.RequestTimeout))

		r.Post("/history", s.postHistory)
		r.Get("/history", s.getHistory)

		r.Post("/research", deprecatedResearch)
		r.Get("/research", deprecatedResearch)

		r.Post("/planner", s.postPlanner)
		r.Get("/planner", s.getPlanner)
	})

	return r
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
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
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readinessResponse struct {
	Status        string   `json:"status"`
	Mode          string   `json:"mode"`
	LLMProvider   string   `json:"llmProvider,omitempty"`
	LLMConfigured bool     `json:"llmConfigured"`
	PaperSources  []string `json:"paperSources"`
}

// readinessHandler reports the configured mode and whether its credentials
// and providers are present.
func (s *Server) readinessHandler(w http.ResponseWriter, _ *http.Request) {
	resp := readinessResponse{
		Status:        "ready",
		Mode:          string(s.readiness.Mode),
		LLMProvider:   s.readiness.LLMProvider,
		LLMConfigured: s.readiness.LLMConfigured,
		PaperSources:  append([]string{}, s.readiness.PaperSources...),
	}
	status := http.StatusOK
	if !s.readiness.Ready() {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}
