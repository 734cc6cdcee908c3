package query

import (
	"context"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLATFORMS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// PlatformsCache is the slice of the dashboard cache the query needs.
type PlatformsCache interface {
	GetPlatforms(ctx context.Context, dest interface{}) error
	SetPlatforms(ctx context.Context, value interface{}) error
}

// PlatformDTO is one registered platform.
type PlatformDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// GetPlatformsHandler lists all registered platforms.
type GetPlatformsHandler struct {
	platformRepo platform.PlatformRepository
	cache        PlatformsCache
	logger       *logger.Logger
}

// NewGetPlatformsHandler creates a new handler. Cache is optional.
func NewGetPlatformsHandler(platformRepo platform.PlatformRepository, cache PlatformsCache, log *logger.Logger) *GetPlatformsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetPlatformsHandler{
		platformRepo: platformRepo,
		cache:        cache,
		logger:       log.With(logger.Component("platforms_query")),
	}
}

// Handle executes the query.
func (h *GetPlatformsHandler) Handle(ctx context.Context) ([]PlatformDTO, error) {
	if h.cache != nil {
		var cached []PlatformDTO
		if err := h.cache.GetPlatforms(ctx, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	platforms, err := h.platformRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]PlatformDTO, 0, len(platforms))
	for _, p := range platforms {
		dtos = append(dtos, PlatformDTO{
			ID:    p.ID,
			Name:  string(p.Name),
			Icon:  p.Icon,
			Color: p.Color,
		})
	}

	if h.cache != nil {
		if err := h.cache.SetPlatforms(ctx, dtos); err != nil {
			h.logger.Warn("platform cache write failed", logger.Err(err))
		}
	}

	return dtos, nil
}
