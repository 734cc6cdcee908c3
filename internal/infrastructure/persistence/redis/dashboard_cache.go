package redis

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD CACHE
// Typed key helpers over the generic cache. Query handlers read through it;
// the sync engine invalidates after a successful write.
// ══════════════════════════════════════════════════════════════════════════════

// DashboardCache caches the dashboard's read models.
type DashboardCache struct {
	cache *Cache
}

// NewDashboardCache creates a new DashboardCache.
func NewDashboardCache(cache *Cache) *DashboardCache {
	return &DashboardCache{cache: cache}
}

// ScoreBoardKey is the key for the cross-student score board.
func ScoreBoardKey() string {
	return PrefixScoreBoard + "all"
}

// ProgressKey is the key for one student's progress aggregate.
func ProgressKey(studentID string) string {
	return PrefixProgress + studentID
}

// StudentKey is the key for one student's profile read.
func StudentKey(studentID string) string {
	return PrefixStudent + studentID
}

// PlatformsKey is the key for the platform reference list.
func PlatformsKey() string {
	return PrefixPlatforms + "all"
}

// GetScoreBoard reads the cached score board into dest.
func (d *DashboardCache) GetScoreBoard(ctx context.Context, dest interface{}) error {
	return d.cache.Get(ctx, ScoreBoardKey(), dest)
}

// SetScoreBoard caches the score board.
func (d *DashboardCache) SetScoreBoard(ctx context.Context, value interface{}) error {
	return d.cache.Set(ctx, ScoreBoardKey(), value, TTLScoreBoard)
}

// GetProgress reads one student's cached progress aggregate into dest.
func (d *DashboardCache) GetProgress(ctx context.Context, studentID string, dest interface{}) error {
	return d.cache.Get(ctx, ProgressKey(studentID), dest)
}

// SetProgress caches one student's progress aggregate.
func (d *DashboardCache) SetProgress(ctx context.Context, studentID string, value interface{}) error {
	return d.cache.Set(ctx, ProgressKey(studentID), value, TTLProgress)
}

// GetPlatforms reads the cached platform list into dest.
func (d *DashboardCache) GetPlatforms(ctx context.Context, dest interface{}) error {
	return d.cache.Get(ctx, PlatformsKey(), dest)
}

// SetPlatforms caches the platform list.
func (d *DashboardCache) SetPlatforms(ctx context.Context, value interface{}) error {
	return d.cache.Set(ctx, PlatformsKey(), value, TTLPlatforms)
}

// InvalidateStudent drops every cached read derived from the student's data.
// Called after a successful sync so the next dashboard read sees the fresh
// score.
func (d *DashboardCache) InvalidateStudent(ctx context.Context, studentID string) error {
	return d.cache.Delete(ctx,
		ScoreBoardKey(),
		ProgressKey(studentID),
		StudentKey(studentID),
	)
}
