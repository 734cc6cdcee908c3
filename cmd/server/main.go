// Package main is the REST API server entry point. It wires configuration,
// storage, the platform adapter registry and the HTTP interface together.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/codetrack-hub/codetrack-backend/config"
	"github.com/codetrack-hub/codetrack-backend/internal/application/command"
	"github.com/codetrack-hub/codetrack-backend/internal/application/query"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/external"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/external/codeforces"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/persistence/postgres"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/persistence/redis"
	httpserver "github.com/codetrack-hub/codetrack-backend/internal/interface/http"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
	"github.com/codetrack-hub/codetrack-backend/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine, real deployments configure the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting server",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("environment", string(cfg.App.Environment)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var m *metrics.Manager
	if cfg.Observability.MetricsEnabled {
		m = metrics.New(cfg.App.Name)
	}

	// ── Storage ───────────────────────────────────────────────────────────────

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer conn.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	studentRepo := postgres.NewStudentRepository(conn)
	platformRepo := postgres.NewPlatformRepository(conn)
	linkRepo := postgres.NewLinkRepository(conn)
	scoreRepo := postgres.NewScoreRepository(conn)
	activityRepo := postgres.NewActivityRepository(conn)

	// ── Cache ─────────────────────────────────────────────────────────────────

	var cache *redis.Cache
	var dashboard *redis.DashboardCache
	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			// The dashboard works without Redis, only slower.
			log.Warn("redis unavailable, caching disabled", logger.Err(err))
		} else {
			defer cache.Close()
			dashboard = redis.NewDashboardCache(cache)
		}
	}

	// ── Platform adapters ─────────────────────────────────────────────────────

	cfClient := codeforces.NewClient(codeforces.ClientConfig{
		BaseURL: cfg.Codeforces.BaseURL,
		Timeout: cfg.Codeforces.RequestTimeout,
		RateLimiterConfig: codeforces.RateLimiterConfig{
			RequestsPerSecond: cfg.Codeforces.RequestsPerSecond,
			BurstSize:         cfg.Codeforces.BurstSize,
			MinInterval:       cfg.Codeforces.MinInterval,
			WaitTimeout:       cfg.Codeforces.WaitTimeout,
		},
		FetchContestHistory: cfg.Codeforces.FetchContestHistory &&
			cfg.Features.IsEnabled(config.FeatureSyncContestHistory, nil),
		Logger:  log,
		Metrics: m,
	})
	registry := external.NewRegistry(cfClient)

	// ── Application handlers ──────────────────────────────────────────────────

	syncOpts := []command.SyncPlatformHandlerOption{
		command.WithActivityRepository(activityRepo),
	}
	if m != nil {
		syncOpts = append(syncOpts, command.WithMetrics(m))
	}
	var invalidator command.CacheInvalidator
	if dashboard != nil {
		invalidator = dashboard
		syncOpts = append(syncOpts, command.WithCacheInvalidator(dashboard))
	}

	syncHandler := command.NewSyncPlatformHandler(platformRepo, linkRepo, scoreRepo, registry, log, syncOpts...)
	studentHandler := command.NewStudentHandler(studentRepo, invalidator, log)
	linkHandler := command.NewLinkHandler(studentRepo, platformRepo, linkRepo, invalidator, log)

	var progressCache query.ProgressCache
	var boardCache query.ScoreBoardCache
	var platformsCache query.PlatformsCache
	if dashboard != nil && cfg.Features.IsEnabled(config.FeatureCacheDashboard, nil) {
		progressCache = dashboard
		boardCache = dashboard
		platformsCache = dashboard
	}

	deps := httpserver.Dependencies{
		SyncHandler:     syncHandler,
		StudentHandler:  studentHandler,
		LinkHandler:     linkHandler,
		StudentsHandler: query.NewListStudentsHandler(studentRepo),
		ProgressHandler: query.NewGetStudentProgressHandler(
			studentRepo, platformRepo, linkRepo, scoreRepo, activityRepo, progressCache, log, m),
		ScoreBoardHandler: query.NewGetScoreBoardHandler(
			studentRepo, platformRepo, linkRepo, scoreRepo, boardCache, log, m),
		PlatformsHandler: query.NewGetPlatformsHandler(platformRepo, platformsCache, log),
		HealthChecker:    &healthChecker{conn: conn, cache: cache},
		Logger:           log,
		Metrics:          m,
	}

	server := httpserver.NewServer(httpserver.Config{
		Addr:           cfg.HTTP.Addr,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
	}, deps)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// healthChecker reports the state of the server's hard and soft
// dependencies.
type healthChecker struct {
	conn  *postgres.Connection
	cache *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) map[string]error {
	checks := map[string]error{
		"postgres": h.postgres(ctx),
	}
	if h.cache != nil {
		checks["redis"] = h.cache.Ping(ctx)
	}
	return checks
}

func (h *healthChecker) postgres(ctx context.Context) error {
	status, err := h.conn.Health(ctx)
	if err != nil {
		return err
	}
	if !status.Healthy {
		return errors.New(status.Error)
	}
	return nil
}
