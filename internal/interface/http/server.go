// Package http exposes the REST API consumed by the dashboard: sync
// triggers, student and link management, the score board and per-student
// progress views.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/codetrack-hub/codetrack-backend/internal/application/command"
	"github.com/codetrack-hub/codetrack-backend/internal/application/query"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
	"github.com/codetrack-hub/codetrack-backend/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Config contains the HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// AllowedOrigins configures CORS (empty = CORS disabled).
	AllowedOrigins []string

	// MetricsEnabled exposes /metrics.
	MetricsEnabled bool
}

// DefaultConfig returns sensible server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Dependencies bundles everything the handlers need.
type Dependencies struct {
	// Commands
	SyncHandler    *command.SyncPlatformHandler
	StudentHandler *command.StudentHandler
	LinkHandler    *command.LinkHandler

	// Queries
	StudentsHandler   *query.ListStudentsHandler
	ProgressHandler   *query.GetStudentProgressHandler
	ScoreBoardHandler *query.GetScoreBoardHandler
	PlatformsHandler  *query.GetPlatformsHandler

	// HealthChecker reports readiness of downstream dependencies.
	HealthChecker HealthChecker

	Logger  *logger.Logger
	Metrics *metrics.Manager
}

// HealthChecker reports the health of a set of named dependencies.
type HealthChecker interface {
	Check(ctx context.Context) map[string]error
}

// Server is the REST API server.
type Server struct {
	config     Config
	deps       Dependencies
	logger     *logger.Logger
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer builds the server and its router.
func NewServer(cfg Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With(logger.Component("http")),
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router builds the chi routing tree. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	if s.deps.Metrics != nil {
		r.Use(s.metricsMiddleware)
	}

	if len(s.config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	if s.config.MetricsEnabled && s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/sync", s.handleSync)

		api.Route("/students", func(students chi.Router) {
			students.Get("/", s.handleListStudents)
			students.Post("/", s.handleRegisterStudent)
			students.Get("/{id}", s.handleGetProgress)
			students.Put("/{id}", s.handleUpdateStudent)
			students.Delete("/{id}", s.handleDeleteStudent)
			students.Get("/{id}/progress", s.handleGetProgress)

			students.Route("/{id}/platforms", func(links chi.Router) {
				links.Post("/", s.handleLinkPlatform)
				links.Put("/{platform}", s.handleUpdateHandle)
				links.Delete("/{platform}", s.handleUnlinkPlatform)
			})
		})

		api.Get("/scores", s.handleGetScoreBoard)
		api.Get("/platforms", s.handleGetPlatforms)
	})

	return r
}

// ──────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────────────────────────────────

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.startedAt = time.Now().UTC()
	s.logger.Info("http server listening", logger.String("addr", s.config.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down",
		logger.Duration("uptime", time.Since(s.startedAt)))
	return s.httpServer.Shutdown(ctx)
}
