// Package main is the background worker entry point. It runs the scheduler
// that periodically re-syncs every linked platform account.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/codetrack-hub/codetrack-backend/config"
	"github.com/codetrack-hub/codetrack-backend/internal/application/command"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/external"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/external/codeforces"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/persistence/postgres"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/persistence/redis"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/scheduler"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/scheduler/jobs"
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
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled, nothing to run")
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting worker",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var m *metrics.Manager
	if cfg.Observability.MetricsEnabled {
		m = metrics.New(cfg.App.Name + "_worker")
	}

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer conn.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	studentRepo := postgres.NewStudentRepository(conn)
	platformRepo := postgres.NewPlatformRepository(conn)
	linkRepo := postgres.NewLinkRepository(conn)
	scoreRepo := postgres.NewScoreRepository(conn)
	activityRepo := postgres.NewActivityRepository(conn)

	var dashboard *redis.DashboardCache
	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(redis.Config{
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
			log.Warn("redis unavailable, cache invalidation disabled", logger.Err(err))
		} else {
			defer cache.Close()
			dashboard = redis.NewDashboardCache(cache)
		}
	}

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

	syncOpts := []command.SyncPlatformHandlerOption{
		command.WithActivityRepository(activityRepo),
	}
	if m != nil {
		syncOpts = append(syncOpts, command.WithMetrics(m))
	}
	if dashboard != nil {
		syncOpts = append(syncOpts, command.WithCacheInvalidator(dashboard))
	}
	syncHandler := command.NewSyncPlatformHandler(platformRepo, linkRepo, scoreRepo, registry, log, syncOpts...)
	syncAll := command.NewSyncAllHandler(studentRepo, platformRepo, linkRepo, syncHandler, log)

	sched := scheduler.New(scheduler.Config{
		Logger:     log,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})

	var schedule scheduler.Schedule
	if cfg.Scheduler.SyncCron != "" {
		cron, err := scheduler.ParseCron(cfg.Scheduler.SyncCron)
		if err != nil {
			return fmt.Errorf("scheduler.sync_cron: %w", err)
		}
		schedule = cron
	} else {
		schedule = scheduler.NewEvery(cfg.Scheduler.SyncInterval)
	}

	job := jobs.NewSyncAllAccountsJob(syncAll, cfg.Features, cfg.Scheduler.MaxConcurrentSyncs, log)
	if err := sched.Register(job, schedule); err != nil {
		return err
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down worker")
	return sched.Stop()
}
