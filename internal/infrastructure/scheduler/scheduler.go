// Package scheduler runs periodic background jobs, most importantly the
// bulk re-sync of every linked platform account.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job is one unit of periodic work.
type Job interface {
	// Name returns the job's unique name.
	Name() string

	// Run executes the job. The context carries the per-run timeout and is
	// cancelled when the scheduler stops.
	Run(ctx context.Context) error
}

// Schedule decides when a job runs.
type Schedule interface {
	// Next returns the first run time strictly after t.
	Next(t time.Time) time.Time

	// String describes the schedule.
	String() string
}

// JobResult records one job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Err         error
}

// Success reports whether the run completed without error.
func (r JobResult) Success() bool { return r.Err == nil }

var (
	ErrJobExists      = errors.New("job already registered")
	ErrJobNotFound    = errors.New("job not found")
	ErrAlreadyRunning = errors.New("scheduler already running")
	ErrNotRunning     = errors.New("scheduler not running")
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Config controls the scheduler.
type Config struct {
	// Logger for job lifecycle events.
	Logger *logger.Logger

	// JobTimeout bounds a single job run (0 = no timeout).
	JobTimeout time.Duration

	// TickInterval is how often due jobs are checked (default 1s).
	TickInterval time.Duration

	// HistorySize caps the retained run history (default 100).
	HistorySize int
}

type scheduledJob struct {
	job      Job
	schedule Schedule
	enabled  bool
	lastRun  time.Time
	nextRun  time.Time
	runs     int64
	failures int64
}

// Scheduler runs registered jobs on their schedules, one goroutine per due
// job, and keeps a bounded history of results.
type Scheduler struct {
	mu sync.RWMutex

	logger       *logger.Logger
	jobTimeout   time.Duration
	tickInterval time.Duration
	historySize  int

	jobs    map[string]*scheduledJob
	history []JobResult

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	return &Scheduler{
		logger:       cfg.Logger.With(logger.Component("scheduler")),
		jobTimeout:   cfg.JobTimeout,
		tickInterval: cfg.TickInterval,
		historySize:  cfg.HistorySize,
		jobs:         make(map[string]*scheduledJob),
	}
}

// Register adds a job. The first run is scheduled from now.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}

	next := schedule.Next(time.Now().UTC())
	s.jobs[name] = &scheduledJob{job: job, schedule: schedule, enabled: true, nextRun: next}

	s.logger.Info("job registered",
		logger.String("job", name),
		logger.String("schedule", schedule.String()),
		logger.Time("next_run", next))
	return nil
}

// Enable re-enables a disabled job and reschedules it from now.
func (s *Scheduler) Enable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sj, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	sj.enabled = true
	sj.nextRun = sj.schedule.Next(time.Now().UTC())
	return nil
}

// Disable stops future runs of a job without unregistering it.
func (s *Scheduler) Disable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sj, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	sj.enabled = false
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────────────────────────────────

// Start launches the tick loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	jobCount := len(s.jobs)
	s.mu.Unlock()

	s.logger.Info("scheduler started", logger.Int("jobs", jobCount))

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop cancels the loop and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

// IsRunning reports whether the tick loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.dispatchDue(ctx, now.UTC())
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []*scheduledJob
	for _, sj := range s.jobs {
		if sj.enabled && !sj.nextRun.IsZero() && !now.Before(sj.nextRun) {
			// Advance before running so a slow job cannot pile up runs.
			sj.lastRun = now
			sj.nextRun = sj.schedule.Next(now)
			sj.runs++
			due = append(due, sj)
		}
	}
	s.mu.Unlock()

	for _, sj := range due {
		s.wg.Add(1)
		go func(sj *scheduledJob) {
			defer s.wg.Done()
			s.execute(ctx, sj)
		}(sj)
	}
}

func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob) JobResult {
	name := sj.job.Name()
	started := time.Now().UTC()

	runCtx := ctx
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	s.logger.Info("job started", logger.String("job", name))
	err := sj.job.Run(runCtx)
	completed := time.Now().UTC()

	result := JobResult{
		JobName:     name,
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    completed.Sub(started),
		Err:         err,
	}

	s.mu.Lock()
	if err != nil {
		sj.failures++
	}
	s.history = append(s.history, result)
	if len(s.history) > s.historySize {
		s.history = s.history[len(s.history)-s.historySize:]
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("job failed",
			logger.String("job", name),
			logger.Duration("duration", result.Duration),
			logger.Err(err))
		return result
	}
	s.logger.Info("job completed",
		logger.String("job", name),
		logger.Duration("duration", result.Duration))
	return result
}

// RunNow executes a job immediately, outside its schedule. The scheduler's
// job timeout still applies.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*JobResult, error) {
	s.mu.RLock()
	sj, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.mu.Lock()
	sj.runs++
	sj.lastRun = time.Now().UTC()
	s.mu.Unlock()

	result := s.execute(ctx, sj)
	return &result, result.Err
}

// ──────────────────────────────────────────────────────────────────────────────
// Introspection
// ──────────────────────────────────────────────────────────────────────────────

// JobInfo describes a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Enabled  bool      `json:"enabled"`
	LastRun  time.Time `json:"last_run"`
	NextRun  time.Time `json:"next_run"`
	Runs     int64     `json:"runs"`
	Failures int64     `json:"failures"`
}

// Jobs returns a snapshot of all registered jobs.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, sj := range s.jobs {
		infos = append(infos, JobInfo{
			Name:     name,
			Schedule: sj.schedule.String(),
			Enabled:  sj.enabled,
			LastRun:  sj.lastRun,
			NextRun:  sj.nextRun,
			Runs:     sj.runs,
			Failures: sj.failures,
		})
	}
	return infos
}

// History returns up to limit most recent job results, newest last.
func (s *Scheduler) History(limit int) []JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]JobResult, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}
