package query

import (
	"context"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
	"github.com/codetrack-hub/codetrack-backend/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SCORE BOARD QUERY
// The cross-student ranking: every platform score joined with the student
// and platform names, ordered by score. The repository already returns
// scores sorted descending; ranks are assigned here.
// ══════════════════════════════════════════════════════════════════════════════

// ScoreBoardCache is the slice of the dashboard cache the query needs.
type ScoreBoardCache interface {
	GetScoreBoard(ctx context.Context, dest interface{}) error
	SetScoreBoard(ctx context.Context, value interface{}) error
}

// GetScoreBoardQuery contains the query parameters.
type GetScoreBoardQuery struct {
	// Platform restricts the board to one platform (empty = all).
	Platform string

	// Limit caps the number of entries (0 = default 100).
	Limit int

	// SkipCache bypasses the read-through cache.
	SkipCache bool
}

// Validate checks and normalizes the parameters.
func (q *GetScoreBoardQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
	return nil
}

// ScoreBoardEntry is one row of the board.
type ScoreBoardEntry struct {
	Rank                 int       `json:"rank"`
	StudentID            string    `json:"student_id"`
	StudentName          string    `json:"student_name"`
	Platform             string    `json:"platform"`
	Handle               string    `json:"handle"`
	Score                int       `json:"score"`
	ProblemsSolved       int       `json:"problems_solved"`
	AvgRating            int       `json:"avg_rating"`
	ContestsParticipated int       `json:"contests_participated"`
	LastCalculated       time.Time `json:"last_calculated"`
}

// ScoreBoardDTO is the complete board payload.
type ScoreBoardDTO struct {
	Entries     []ScoreBoardEntry `json:"entries"`
	Total       int               `json:"total"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// GetScoreBoardHandler handles the query.
type GetScoreBoardHandler struct {
	studentRepo  student.Repository
	platformRepo platform.PlatformRepository
	linkRepo     platform.LinkRepository
	scoreRepo    platform.ScoreRepository
	cache        ScoreBoardCache
	logger       *logger.Logger
	metrics      *metrics.Manager

	now func() time.Time
}

// NewGetScoreBoardHandler creates a new handler. Cache and metrics are
// optional.
func NewGetScoreBoardHandler(
	studentRepo student.Repository,
	platformRepo platform.PlatformRepository,
	linkRepo platform.LinkRepository,
	scoreRepo platform.ScoreRepository,
	cache ScoreBoardCache,
	log *logger.Logger,
	m *metrics.Manager,
) *GetScoreBoardHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetScoreBoardHandler{
		studentRepo:  studentRepo,
		platformRepo: platformRepo,
		linkRepo:     linkRepo,
		scoreRepo:    scoreRepo,
		cache:        cache,
		logger:       log.With(logger.Component("scoreboard_query")),
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the handler's time source, for tests.
func (h *GetScoreBoardHandler) WithClock(now func() time.Time) *GetScoreBoardHandler {
	h.now = now
	return h
}

// Handle executes the query.
func (h *GetScoreBoardHandler) Handle(ctx context.Context, q GetScoreBoardQuery) (*ScoreBoardDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	// Only the unfiltered default board is cached; filtered variants are
	// cheap enough to build on demand.
	cacheable := h.cache != nil && !q.SkipCache && q.Platform == "" && q.Limit == 100

	if cacheable {
		var cached ScoreBoardDTO
		if err := h.cache.GetScoreBoard(ctx, &cached); err == nil {
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

	if cacheable {
		if err := h.cache.SetScoreBoard(ctx, dto); err != nil {
			h.logger.Warn("scoreboard cache write failed", logger.Err(err))
		}
	}

	return dto, nil
}

func (h *GetScoreBoardHandler) build(ctx context.Context, q GetScoreBoardQuery) (*ScoreBoardDTO, error) {
	scores, err := h.scoreRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	platforms, err := h.platformRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	platformNames := make(map[string]platform.Name, len(platforms))
	for _, p := range platforms {
		platformNames[p.ID] = p.Name
	}

	var filterID string
	if q.Platform != "" {
		want := platform.Name(q.Platform).Normalize()
		for _, p := range platforms {
			if p.Name.Normalize() == want {
				filterID = p.ID
			}
		}
		if filterID == "" {
			return nil, shared.NewDomainError("query", "GetScoreBoard", shared.ErrUnsupportedPlatform,
				"platform "+string(want)+" is not supported")
		}
	}

	studentNames := make(map[string]string)
	handles := make(map[string]platform.Handle)

	dto := &ScoreBoardDTO{GeneratedAt: h.now()}
	for _, score := range scores {
		if filterID != "" && score.PlatformID != filterID {
			continue
		}
		if len(dto.Entries) >= q.Limit {
			break
		}

		name, ok := studentNames[score.StudentID]
		if !ok {
			s, err := h.studentRepo.GetByID(ctx, score.StudentID)
			if err != nil {
				// A score for a deleted student is stale, not fatal.
				h.logger.Warn("score references unknown student",
					logger.StudentID(score.StudentID), logger.Err(err))
				continue
			}
			name = s.Name
			studentNames[score.StudentID] = name
		}

		handleKey := score.StudentID + "/" + score.PlatformID
		handle, ok := handles[handleKey]
		if !ok {
			if link, err := h.linkRepo.GetByStudentAndPlatform(ctx, score.StudentID, score.PlatformID); err == nil {
				handle = link.Handle
			}
			handles[handleKey] = handle
		}

		dto.Entries = append(dto.Entries, ScoreBoardEntry{
			Rank:                 len(dto.Entries) + 1,
			StudentID:            score.StudentID,
			StudentName:          name,
			Platform:             string(platformNames[score.PlatformID]),
			Handle:               handle.String(),
			Score:                score.Value,
			ProblemsSolved:       score.ProblemsSolved,
			AvgRating:            score.AvgRating,
			ContestsParticipated: score.ContestsParticipated,
			LastCalculated:       score.LastCalculated,
		})
	}
	dto.Total = len(dto.Entries)

	return dto, nil
}
