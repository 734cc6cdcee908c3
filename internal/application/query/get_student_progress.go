// Package query contains read operations (CQRS - Queries).
// Queries never mutate state; heavy ones read through the dashboard cache.
package query

import (
	"context"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/analytics"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
	"github.com/codetrack-hub/codetrack-backend/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT PROGRESS QUERY
// The dashboard's per-student view: linked platforms with their snapshots
// and scores, the solved-problem rating histogram, the daily activity
// heatmap and summary statistics over a rolling window.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressCache is the slice of the dashboard cache the query needs.
type ProgressCache interface {
	GetProgress(ctx context.Context, studentID string, dest interface{}) error
	SetProgress(ctx context.Context, studentID string, value interface{}) error
}

// GetStudentProgressQuery contains the query parameters.
type GetStudentProgressQuery struct {
	// StudentID is the student's internal ID.
	StudentID string

	// WindowDays is the analytics window (0 = default 90).
	WindowDays int

	// SkipCache bypasses the read-through cache.
	SkipCache bool
}

// Validate checks and normalizes the parameters.
func (q *GetStudentProgressQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("query", "GetStudentProgress", shared.ErrInvalidInput,
			"student_id must not be empty")
	}
	if q.WindowDays <= 0 {
		q.WindowDays = analytics.HeatmapDays
	}
	return nil
}

// LinkDTO is one linked platform with its latest snapshot and score.
type LinkDTO struct {
	Platform             string     `json:"platform"`
	Handle               string     `json:"handle"`
	CurrentRating        int        `json:"current_rating"`
	MaxRating            int        `json:"max_rating"`
	ProblemsSolved       int        `json:"problems_solved"`
	ContestsParticipated int        `json:"contests_participated"`
	Score                int        `json:"score"`
	LastSynced           *time.Time `json:"last_synced,omitempty"`
}

// ContestDTO is one contest appearance in the recent history.
type ContestDTO struct {
	Name         string    `json:"name"`
	Date         time.Time `json:"date"`
	Rank         int       `json:"rank"`
	RatingChange int       `json:"rating_change"`
}

// StudentProgressDTO is the complete per-student dashboard payload.
type StudentProgressDTO struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	IsActive    bool   `json:"is_active"`

	Links []LinkDTO `json:"links"`

	RatingDistribution []analytics.RatingBucket `json:"rating_distribution"`
	Heatmap            []analytics.DayCount     `json:"heatmap"`
	Statistics         analytics.Statistics     `json:"statistics"`

	RecentContests []ContestDTO `json:"recent_contests"`

	WindowDays  int       `json:"window_days"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GetStudentProgressHandler handles the query.
type GetStudentProgressHandler struct {
	studentRepo  student.Repository
	platformRepo platform.PlatformRepository
	linkRepo     platform.LinkRepository
	scoreRepo    platform.ScoreRepository
	activityRepo activity.Repository
	cache        ProgressCache
	logger       *logger.Logger
	metrics      *metrics.Manager

	now func() time.Time
}

// NewGetStudentProgressHandler creates a new handler. Cache and metrics are
// optional.
func NewGetStudentProgressHandler(
	studentRepo student.Repository,
	platformRepo platform.PlatformRepository,
	linkRepo platform.LinkRepository,
	scoreRepo platform.ScoreRepository,
	activityRepo activity.Repository,
	cache ProgressCache,
	log *logger.Logger,
	m *metrics.Manager,
) *GetStudentProgressHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetStudentProgressHandler{
		studentRepo:  studentRepo,
		platformRepo: platformRepo,
		linkRepo:     linkRepo,
		scoreRepo:    scoreRepo,
		activityRepo: activityRepo,
		cache:        cache,
		logger:       log.With(logger.Component("progress_query")),
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the handler's time source, for tests.
func (h *GetStudentProgressHandler) WithClock(now func() time.Time) *GetStudentProgressHandler {
	h.now = now
	return h
}

// Handle executes the query.
func (h *GetStudentProgressHandler) Handle(ctx context.Context, q GetStudentProgressQuery) (*StudentProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil && !q.SkipCache {
		var cached StudentProgressDTO
		if err := h.cache.GetProgress(ctx, q.StudentID, &cached); err == nil && cached.WindowDays == q.WindowDays {
			if h.metrics != nil {
				h.metrics.RecordCacheHit()
			}
			return &cached, nil
		}
		if h.metrics != nil {
			h.metrics.RecordCacheMiss()
		}
	}

	dto, err := h.build(ctx, q)
	if err != nil {
		return nil, err
	}

	if h.cache != nil && !q.SkipCache {
		if err := h.cache.SetProgress(ctx, q.StudentID, dto); err != nil {
			h.logger.Warn("progress cache write failed",
				logger.StudentID(q.StudentID), logger.Err(err))
		}
	}

	return dto, nil
}

func (h *GetStudentProgressHandler) build(ctx context.Context, q GetStudentProgressQuery) (*StudentProgressDTO, error) {
	s, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	now := h.now()

	dto := &StudentProgressDTO{
		StudentID:   s.ID,
		StudentName: s.Name,
		IsActive:    s.IsActive,
		WindowDays:  q.WindowDays,
		GeneratedAt: now,
	}

	platformNames, err := h.platformNamesByID(ctx)
	if err != nil {
		return nil, err
	}

	links, err := h.linkRepo.GetByStudent(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	dto.Links = make([]LinkDTO, 0, len(links))
	for _, link := range links {
		entry := LinkDTO{
			Platform:             string(platformNames[link.PlatformID]),
			Handle:               link.Handle.String(),
			CurrentRating:        link.CurrentRating,
			MaxRating:            link.MaxRating,
			ProblemsSolved:       link.ProblemsSolved,
			ContestsParticipated: link.ContestsParticipated,
		}
		if !link.LastSynced.IsZero() {
			synced := link.LastSynced
			entry.LastSynced = &synced
		}
		if score, err := h.scoreRepo.GetByStudentAndPlatform(ctx, s.ID, link.PlatformID); err == nil {
			entry.Score = score.Value
		}
		dto.Links = append(dto.Links, entry)
	}

	// Analytics are derived from the persisted activity records, windowed
	// to the requested number of days.
	problems, err := h.activityRepo.GetProblems(ctx, s.ID, time.Time{})
	if err != nil {
		return nil, err
	}

	windowed := analytics.FilterProblems(problems, now, q.WindowDays)
	dto.RatingDistribution = analytics.RatingDistribution(windowed)
	dto.Heatmap = analytics.DailySeries(problems, now, q.WindowDays)
	dto.Statistics = analytics.Summarize(windowed, q.WindowDays)

	contests, err := h.activityRepo.GetContests(ctx, s.ID, time.Time{})
	if err != nil {
		return nil, err
	}
	recent := analytics.FilterContests(contests, now, q.WindowDays)
	dto.RecentContests = make([]ContestDTO, 0, len(recent))
	for _, c := range recent {
		dto.RecentContests = append(dto.RecentContests, ContestDTO{
			Name:         c.Name,
			Date:         c.Date,
			Rank:         c.Rank,
			RatingChange: c.RatingChange(),
		})
	}

	return dto, nil
}

func (h *GetStudentProgressHandler) platformNamesByID(ctx context.Context) (map[string]platform.Name, error) {
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
