// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"
	"sync/atomic"

	"github.com/codetrack-hub/codetrack-backend/config"
	"github.com/codetrack-hub/codetrack-backend/internal/application/command"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC ALL ACCOUNTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// SyncAllAccountsJob re-synchronizes every linked platform account. It is
// the job that keeps snapshots, scores and analytics fresh without anyone
// pressing the sync button.
type SyncAllAccountsJob struct {
	handler     *command.SyncAllHandler
	features    *config.FeatureFlags
	concurrency int
	logger      *logger.Logger

	lastResult atomic.Value // *command.SyncAllResult
}

// NewSyncAllAccountsJob creates the job. Feature flags are optional; when
// present, the scheduled-sync flag can turn a run into a no-op without
// touching the scheduler.
func NewSyncAllAccountsJob(
	handler *command.SyncAllHandler,
	features *config.FeatureFlags,
	concurrency int,
	log *logger.Logger,
) *SyncAllAccountsJob {
	if log == nil {
		log = logger.Default()
	}
	return &SyncAllAccountsJob{
		handler:     handler,
		features:    features,
		concurrency: concurrency,
		logger:      log.With(logger.Component("sync_all_job")),
	}
}

// Name returns the job's unique name.
func (j *SyncAllAccountsJob) Name() string { return "sync_all_accounts" }

// Run executes one full bulk sync.
func (j *SyncAllAccountsJob) Run(ctx context.Context) error {
	if j.features != nil && !j.features.IsEnabled(config.FeatureSyncScheduled, nil) {
		j.logger.Info("scheduled sync disabled by feature flag, skipping run")
		return nil
	}

	result, err := j.handler.Handle(ctx, command.SyncAllCommand{Concurrency: j.concurrency})
	if err != nil {
		return err
	}

	j.lastResult.Store(result)
	j.logger.Info("bulk sync finished",
		logger.Int("total", result.Total),
		logger.Int("synced", result.Synced),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", len(result.Failures)),
		logger.Duration("duration", result.Duration))

	for _, f := range result.Failures {
		j.logger.Warn("account sync failed",
			logger.StudentID(f.StudentID),
			logger.PlatformName(string(f.Platform)),
			logger.String("kind", f.Kind),
			logger.Err(f.Err))
	}
	return nil
}

// LastResult returns the most recent completed run, or nil before the first.
func (j *SyncAllAccountsJob) LastResult() *command.SyncAllResult {
	v := j.lastResult.Load()
	if v == nil {
		return nil
	}
	return v.(*command.SyncAllResult)
}
