package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codetrack-hub/codetrack-backend/internal/application/query"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/persistence/redis"
)

// The query handlers consume the dashboard cache through their own narrow
// interfaces; these assertions keep the concrete type in step with them.
var (
	_ query.ProgressCache   = (*redis.DashboardCache)(nil)
	_ query.ScoreBoardCache = (*redis.DashboardCache)(nil)
	_ query.PlatformsCache  = (*redis.DashboardCache)(nil)
)

func TestDashboardCacheKeys(t *testing.T) {
	assert.Equal(t, "scoreboard:all", redis.ScoreBoardKey())
	assert.Equal(t, "progress:stu-1", redis.ProgressKey("stu-1"))
	assert.Equal(t, "student:stu-1", redis.StudentKey("stu-1"))
	assert.Equal(t, "platforms:all", redis.PlatformsKey())
}
