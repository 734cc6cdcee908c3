package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
)

func problemAt(rating int, solvedAt time.Time) activity.Problem {
	return activity.Problem{Rating: rating, SolvedAt: solvedAt}
}

func TestBucketLabel(t *testing.T) {
	assert.Equal(t, "1400-1499", BucketLabel(1467))
	assert.Equal(t, "1400-1499", BucketLabel(1400))
	assert.Equal(t, "1400-1499", BucketLabel(1499))
	assert.Equal(t, "1500-1599", BucketLabel(1500))
	assert.Equal(t, "0-99", BucketLabel(0))
}

func TestRatingDistribution_SortedByBucketStart(t *testing.T) {
	now := time.Now()
	problems := []activity.Problem{
		problemAt(1800, now),
		problemAt(1467, now),
		problemAt(1412, now),
		problemAt(800, now),
	}

	buckets := RatingDistribution(problems)

	assert.Equal(t, []RatingBucket{
		{Start: 800, Label: "800-899", Count: 1},
		{Start: 1400, Label: "1400-1499", Count: 2},
		{Start: 1800, Label: "1800-1899", Count: 1},
	}, buckets)
}

func TestFilterProblems_KeepsWindowOnly(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	inside := problemAt(1200, now.AddDate(0, 0, -10))
	boundary := problemAt(1300, now.AddDate(0, 0, -30))
	outside := problemAt(1400, now.AddDate(0, 0, -31))

	got := FilterProblems([]activity.Problem{inside, boundary, outside}, now, 30)

	assert.Len(t, got, 2)
	assert.Equal(t, inside, got[0])
	assert.Equal(t, boundary, got[1])
}

func TestDailySeries_ZeroSolvesStillYields90Entries(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	series := DailySeries(nil, now, HeatmapDays)

	assert.Len(t, series, 90)
	for _, day := range series {
		assert.Equal(t, 0, day.Count)
	}
	assert.Equal(t, "2024-03-04", series[0].Date)
	assert.Equal(t, "2024-06-01", series[len(series)-1].Date)
}

func TestDailySeries_ExactCalendarDateMatch(t *testing.T) {
	now := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	problems := []activity.Problem{
		// 23:30 the previous day is a different calendar date even though it
		// is within 2 hours of now.
		problemAt(1200, time.Date(2024, 5, 31, 23, 30, 0, 0, time.UTC)),
		problemAt(1300, time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC)),
		problemAt(1400, time.Date(2024, 6, 1, 0, 45, 0, 0, time.UTC)),
	}

	series := DailySeries(problems, now, 3)

	assert.Equal(t, []DayCount{
		{Date: "2024-05-30", Count: 0},
		{Date: "2024-05-31", Count: 1},
		{Date: "2024-06-01", Count: 2},
	}, series)
}

func TestSummarize_AveragePerDayRoundedToOneDecimal(t *testing.T) {
	now := time.Now()
	problems := make([]activity.Problem, 7)
	for i := range problems {
		problems[i] = problemAt(1000, now)
	}

	stats := Summarize(problems, 30)

	// 7/30 = 0.2333... -> 0.2
	assert.Equal(t, 0.2, stats.AveragePerDay)
	assert.Equal(t, 7, stats.TotalSolved)
}

func TestSummarize_RatingStats(t *testing.T) {
	now := time.Now()
	problems := []activity.Problem{
		problemAt(1000, now),
		problemAt(1500, now),
		problemAt(1301, now),
	}

	stats := Summarize(problems, 90)

	// mean = 3801/3 = 1267
	assert.Equal(t, 1267, stats.AverageRating)
	assert.Equal(t, 1500, stats.MaxRating)
}

func TestSummarize_EmptySet(t *testing.T) {
	stats := Summarize(nil, 30)

	assert.Equal(t, 0, stats.TotalSolved)
	assert.Equal(t, 0, stats.AverageRating)
	assert.Equal(t, 0, stats.MaxRating)
	assert.Equal(t, 0.0, stats.AveragePerDay)
}

func TestFilterContests(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	in := activity.Contest{Date: now.AddDate(0, 0, -5)}
	out := activity.Contest{Date: now.AddDate(0, 0, -40)}

	got := FilterContests([]activity.Contest{in, out}, now, 30)

	assert.Len(t, got, 1)
	assert.Equal(t, in, got[0])
}
