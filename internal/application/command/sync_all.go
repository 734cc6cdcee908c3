package command

import (
	"context"
	"sync"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC ALL COMMAND
// Bulk re-sync of every active student's links. Used by the scheduler and
// the admin endpoint. A bounded worker pool keeps the fan-out from
// hammering the platform APIs; per-link failures are collected, never fatal.
// ══════════════════════════════════════════════════════════════════════════════

// SyncAllCommand requests a sync of all active students.
type SyncAllCommand struct {
	// Concurrency bounds parallel syncs (0 = default).
	Concurrency int
}

// DefaultSyncConcurrency is used when the command doesn't set one.
const DefaultSyncConcurrency = 4

// LinkFailure records one failed link sync in a bulk run.
type LinkFailure struct {
	StudentID string
	Platform  platform.Name
	Kind      string
	Err       error
}

// SyncAllResult summarizes a bulk sync.
type SyncAllResult struct {
	// Total is the number of links visited.
	Total int

	// Synced is the number of successful syncs.
	Synced int

	// Skipped counts links on platforms with no adapter.
	Skipped int

	// Failures lists the links that failed, with their failure kinds.
	Failures []LinkFailure

	// Duration is how long the whole run took.
	Duration time.Duration
}

// SyncAllHandler handles the SyncAllCommand.
type SyncAllHandler struct {
	studentRepo  student.Repository
	platformRepo platform.PlatformRepository
	linkRepo     platform.LinkRepository
	syncHandler  *SyncPlatformHandler
	logger       *logger.Logger
}

// NewSyncAllHandler creates a new SyncAllHandler.
func NewSyncAllHandler(
	studentRepo student.Repository,
	platformRepo platform.PlatformRepository,
	linkRepo platform.LinkRepository,
	syncHandler *SyncPlatformHandler,
	log *logger.Logger,
) *SyncAllHandler {
	if log == nil {
		log = logger.Default()
	}
	return &SyncAllHandler{
		studentRepo:  studentRepo,
		platformRepo: platformRepo,
		linkRepo:     linkRepo,
		syncHandler:  syncHandler,
		logger:       log.With(logger.Component("sync_all")),
	}
}

// Handle walks all active students and syncs each of their links.
func (h *SyncAllHandler) Handle(ctx context.Context, cmd SyncAllCommand) (*SyncAllResult, error) {
	start := time.Now()

	concurrency := cmd.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultSyncConcurrency
	}

	platformNames, err := h.platformNamesByID(ctx)
	if err != nil {
		return nil, err
	}

	type job struct {
		studentID string
		name      platform.Name
	}

	var jobs []job
	offset := 0
	for {
		students, err := h.studentRepo.GetAll(ctx, student.ListOptions{Limit: 100, Offset: offset})
		if err != nil {
			return nil, err
		}
		if len(students) == 0 {
			break
		}
		offset += len(students)

		for _, s := range students {
			links, err := h.linkRepo.GetByStudent(ctx, s.ID)
			if err != nil {
				return nil, err
			}
			for _, link := range links {
				name, ok := platformNames[link.PlatformID]
				if !ok {
					continue
				}
				jobs = append(jobs, job{studentID: s.ID, name: name})
			}
		}
	}

	result := &SyncAllResult{Total: len(jobs)}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)

	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(j job) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := h.syncHandler.Handle(ctx, SyncPlatformCommand{
				StudentID: j.studentID,
				Platform:  j.name,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Synced++
			case shared.FailureKind(err) == "unsupported_platform":
				result.Skipped++
			default:
				result.Failures = append(result.Failures, LinkFailure{
					StudentID: j.studentID,
					Platform:  j.name,
					Kind:      shared.FailureKind(err),
					Err:       err,
				})
			}
		}(j)
	}
	wg.Wait()

	result.Duration = time.Since(start)

	h.logger.Info("bulk sync finished",
		logger.Int("total", result.Total),
		logger.Int("synced", result.Synced),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", len(result.Failures)),
		logger.Latency(result.Duration))

	return result, ctx.Err()
}

func (h *SyncAllHandler) platformNamesByID(ctx context.Context) (map[string]platform.Name, error) {
	platforms, err := h.platformRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]platform.Name, len(platforms))
	for _, p := range platforms {
		names[p.ID] = p.Name
	}
	return names, nil
}
