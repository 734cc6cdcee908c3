// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/scoring"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
	"github.com/codetrack-hub/codetrack-backend/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC PLATFORM COMMAND
// The core write path: fetch a student's remote activity, refresh the link
// snapshot, recompute the composite score. Repeated runs against unchanged
// remote state are idempotent: the link is updated in place and the score
// upsert targets the (student, platform) composite key.
// ══════════════════════════════════════════════════════════════════════════════

// SyncPlatformCommand requests a sync of one (student, platform) pair.
type SyncPlatformCommand struct {
	// StudentID is the internal ID of the student to sync.
	StudentID string

	// Platform is the platform name, matched case-insensitively.
	Platform platform.Name
}

// Validate validates the command.
func (c SyncPlatformCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("sync", "Validate", shared.ErrInvalidInput, "student_id must not be empty")
	}
	if c.Platform.Normalize() == "" {
		return shared.NewDomainError("sync", "Validate", shared.ErrInvalidInput, "platform must not be empty")
	}
	return nil
}

// SyncPlatformResult contains the outcome of a successful sync.
type SyncPlatformResult struct {
	// StudentID is the synced student's internal ID.
	StudentID string

	// Platform is the canonical platform name.
	Platform platform.Name

	// Activity is the freshly fetched snapshot.
	Activity platform.RawActivity

	// Score is the recomputed composite score.
	Score int

	// ProblemsSaved and ContestsSaved count the analytics records persisted
	// alongside the snapshot (0 when the adapter has no detail capability).
	ProblemsSaved int
	ContestsSaved int

	// SyncedAt is when the sync was performed.
	SyncedAt time.Time
}

// CacheInvalidator drops cached dashboard reads after a successful sync.
type CacheInvalidator interface {
	InvalidateStudent(ctx context.Context, studentID string) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SyncPlatformHandler handles the SyncPlatformCommand.
type SyncPlatformHandler struct {
	platformRepo platform.PlatformRepository
	linkRepo     platform.LinkRepository
	scoreRepo    platform.ScoreRepository
	activityRepo activity.Repository
	registry     platform.Registry
	invalidator  CacheInvalidator
	logger       *logger.Logger
	metrics      *metrics.Manager

	// now is swappable in tests.
	now func() time.Time
}

// SyncPlatformHandlerOption configures the handler.
type SyncPlatformHandlerOption func(*SyncPlatformHandler)

// WithActivityRepository enables persisting per-problem and per-contest
// records when the adapter supports detailed fetches.
func WithActivityRepository(repo activity.Repository) SyncPlatformHandlerOption {
	return func(h *SyncPlatformHandler) { h.activityRepo = repo }
}

// WithCacheInvalidator enables dashboard cache invalidation after syncs.
func WithCacheInvalidator(inv CacheInvalidator) SyncPlatformHandlerOption {
	return func(h *SyncPlatformHandler) { h.invalidator = inv }
}

// WithMetrics enables sync outcome metrics.
func WithMetrics(m *metrics.Manager) SyncPlatformHandlerOption {
	return func(h *SyncPlatformHandler) { h.metrics = m }
}

// WithClock overrides the handler's time source.
func WithClock(now func() time.Time) SyncPlatformHandlerOption {
	return func(h *SyncPlatformHandler) { h.now = now }
}

// NewSyncPlatformHandler creates a new SyncPlatformHandler.
func NewSyncPlatformHandler(
	platformRepo platform.PlatformRepository,
	linkRepo platform.LinkRepository,
	scoreRepo platform.ScoreRepository,
	registry platform.Registry,
	log *logger.Logger,
	opts ...SyncPlatformHandlerOption,
) *SyncPlatformHandler {
	if log == nil {
		log = logger.Default()
	}

	h := &SyncPlatformHandler{
		platformRepo: platformRepo,
		linkRepo:     linkRepo,
		scoreRepo:    scoreRepo,
		registry:     registry,
		logger:       log.With(logger.Component("sync")),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle executes the sync. Failure kinds from the resolution and fetch
// stages pass through unchanged so transports can map them; the handler
// never retries, retry policy lives inside the adapters.
func (h *SyncPlatformHandler) Handle(ctx context.Context, cmd SyncPlatformCommand) (*SyncPlatformResult, error) {
	start := h.now()

	result, err := h.handle(ctx, cmd, start)

	if h.metrics != nil {
		name := string(cmd.Platform.Normalize())
		h.metrics.RecordSync(name, err, time.Since(start))
		if err != nil {
			h.metrics.RecordSyncFailure(name, shared.FailureKind(err))
		}
	}

	if err != nil {
		h.logger.Warn("sync failed",
			logger.StudentID(cmd.StudentID),
			logger.PlatformName(string(cmd.Platform)),
			logger.String("kind", shared.FailureKind(err)),
			logger.Err(err))
		return nil, err
	}

	h.logger.Info("sync completed",
		logger.StudentID(result.StudentID),
		logger.PlatformName(string(result.Platform)),
		logger.ScoreValue(result.Score),
		logger.Int("problems_solved", result.Activity.ProblemsSolved),
		logger.Latency(time.Since(start)))

	return result, nil
}

func (h *SyncPlatformHandler) handle(ctx context.Context, cmd SyncPlatformCommand, syncedAt time.Time) (*SyncPlatformResult, error) {
	if err := h.Validate(cmd); err != nil {
		return nil, err
	}
	name := cmd.Platform.Normalize()

	// Resolve the platform row and the student's link before any network
	// call. A missing link or unknown platform fails fast and cheap.
	plat, err := h.platformRepo.GetByName(ctx, name)
	if err != nil {
		// A name absent from the platforms table is unsupported, same as a
		// name with no adapter.
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("sync", "ResolvePlatform", shared.ErrUnsupportedPlatform,
				"platform "+string(name)+" is not supported")
		}
		return nil, err
	}

	link, err := h.linkRepo.GetByStudentAndPlatform(ctx, cmd.StudentID, plat.ID)
	if err != nil {
		return nil, err
	}

	adapter, err := h.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	detail, err := h.fetch(ctx, adapter, link.Handle)
	if err != nil {
		return nil, err
	}

	link.ApplySnapshot(detail.Activity, syncedAt)
	if err := h.linkRepo.UpdateSnapshot(ctx, link); err != nil {
		return nil, shared.WrapError("sync", "UpdateSnapshot", shared.ErrPersist,
			"failed to persist link snapshot", err)
	}

	value := scoring.Score(
		detail.Activity.ProblemsSolved,
		detail.Activity.CurrentRating,
		detail.Activity.ContestsParticipated,
		name,
	)

	score := &platform.Score{
		ID:                   uuid.NewString(),
		StudentID:            cmd.StudentID,
		PlatformID:           plat.ID,
		Value:                value,
		ProblemsSolved:       detail.Activity.ProblemsSolved,
		AvgRating:            detail.Activity.CurrentRating,
		ContestsParticipated: detail.Activity.ContestsParticipated,
		LastCalculated:       syncedAt,
	}
	if err := h.scoreRepo.Upsert(ctx, score); err != nil {
		return nil, shared.WrapError("sync", "UpsertScore", shared.ErrPersist,
			"failed to persist score", err)
	}

	result := &SyncPlatformResult{
		StudentID: cmd.StudentID,
		Platform:  name,
		Activity:  detail.Activity,
		Score:     value,
		SyncedAt:  syncedAt,
	}

	if h.activityRepo != nil {
		saved, err := h.saveActivity(ctx, cmd.StudentID, detail)
		if err != nil {
			return nil, err
		}
		result.ProblemsSaved = saved.problems
		result.ContestsSaved = saved.contests
	}

	if h.invalidator != nil {
		if err := h.invalidator.InvalidateStudent(ctx, cmd.StudentID); err != nil {
			// Stale cache entries expire on their own; a failed invalidation
			// is not worth failing the sync for.
			h.logger.Warn("cache invalidation failed",
				logger.StudentID(cmd.StudentID), logger.Err(err))
		}
	}

	return result, nil
}

// Validate checks the command without touching storage.
func (h *SyncPlatformHandler) Validate(cmd SyncPlatformCommand) error {
	return cmd.Validate()
}

// fetch runs the adapter, preferring the detail capability when present.
func (h *SyncPlatformHandler) fetch(ctx context.Context, adapter platform.Adapter, handle platform.Handle) (*platform.Detail, error) {
	if df, ok := adapter.(platform.DetailFetcher); ok && h.activityRepo != nil {
		return df.FetchDetail(ctx, handle)
	}

	raw, err := adapter.Fetch(ctx, handle)
	if err != nil {
		return nil, err
	}
	return &platform.Detail{Activity: *raw}, nil
}

type savedCounts struct {
	problems int
	contests int
}

func (h *SyncPlatformHandler) saveActivity(ctx context.Context, studentID string, detail *platform.Detail) (savedCounts, error) {
	problems := make([]activity.Problem, len(detail.Problems))
	for i, p := range detail.Problems {
		p.StudentID = studentID
		problems[i] = p
	}
	if err := h.activityRepo.SaveProblems(ctx, problems); err != nil {
		return savedCounts{}, shared.WrapError("sync", "SaveProblems", shared.ErrPersist,
			"failed to persist solved problems", err)
	}

	contests := make([]activity.Contest, len(detail.Contests))
	for i, c := range detail.Contests {
		c.StudentID = studentID
		contests[i] = c
	}
	if err := h.activityRepo.SaveContests(ctx, contests); err != nil {
		return savedCounts{}, shared.WrapError("sync", "SaveContests", shared.ErrPersist,
			"failed to persist contest history", err)
	}

	return savedCounts{problems: len(problems), contests: len(contests)}, nil
}

// IsClientFailure reports whether a sync error is the caller's fault (bad
// platform, missing link, unknown handle) rather than an infrastructure
// problem. Transports use it to pick a 4xx over a 5xx.
func IsClientFailure(err error) bool {
	return errors.Is(err, shared.ErrUnsupportedPlatform) ||
		errors.Is(err, shared.ErrLinkNotFound) ||
		errors.Is(err, shared.ErrHandleNotFound) ||
		errors.Is(err, shared.ErrNotFound) ||
		errors.Is(err, shared.ErrInvalidInput) ||
		errors.Is(err, shared.ErrValidation)
}
