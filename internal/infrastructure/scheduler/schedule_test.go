package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_Next(t *testing.T) {
	s := NewEvery(6 * time.Hour)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(6*time.Hour), s.Next(base))
	assert.Equal(t, "@every 6h0m0s", s.String())
}

func TestParseCron_Fields(t *testing.T) {
	tests := []struct {
		expr string
		ok   bool
	}{
		{"*/15 * * * *", true},
		{"0 21 * * *", true},
		{"0 0 * * 0", true},
		{"0,30 9-17 * * 1-5", true},
		{"* * * *", false},
		{"60 * * * *", false},
		{"* 24 * * *", false},
		{"*/0 * * * *", false},
		{"a * * * *", false},
	}
	for _, tt := range tests {
		_, err := ParseCron(tt.expr)
		if tt.ok {
			assert.NoError(t, err, tt.expr)
		} else {
			assert.Error(t, err, tt.expr)
		}
	}
}

func TestCron_Next(t *testing.T) {
	c, err := ParseCron("*/15 * * * *")
	require.NoError(t, err)

	from := time.Date(2024, 6, 1, 10, 7, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 15, 0, 0, time.UTC), c.Next(from))

	// Strictly after: sitting exactly on a match advances to the next one.
	onMatch := time.Date(2024, 6, 1, 10, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), c.Next(onMatch))
}

func TestCron_NextDaily(t *testing.T) {
	c, err := ParseCron("0 21 * * *")
	require.NoError(t, err)

	from := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 2, 21, 0, 0, 0, time.UTC), c.Next(from))
}

func TestCron_NextWeekday(t *testing.T) {
	// 2024-06-01 is a Saturday; next Sunday midnight is 2024-06-02.
	c, err := ParseCron("0 0 * * 0")
	require.NoError(t, err)

	from := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), c.Next(from))
}

func TestCron_ImpossibleDate(t *testing.T) {
	c, err := ParseCron("0 0 30 2 *")
	require.NoError(t, err)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, c.Next(from).IsZero())
}
