// Package analytics turns a student's solved-problem and contest history into
// the bucketed views the dashboard renders: rating-distribution histogram,
// daily activity heatmap, and summary statistics.
//
// Every function here is deterministic and side-effect-free; inputs are never
// mutated. Callers pass the reference time explicitly so views are
// reproducible in tests.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
	"github.com/codetrack-hub/codetrack-backend/pkg/timeutil"
)

// HeatmapDays is the fixed length of the daily activity series.
const HeatmapDays = 90

// ratingBucketWidth is the width of one rating-distribution bucket.
const ratingBucketWidth = 100

// ══════════════════════════════════════════════════════════════════════════════
// WINDOW FILTERS
// ══════════════════════════════════════════════════════════════════════════════

// FilterProblems keeps problems solved within the last windowDays before now.
func FilterProblems(problems []activity.Problem, now time.Time, windowDays int) []activity.Problem {
	cutoff := timeutil.WindowStart(now, windowDays)
	out := make([]activity.Problem, 0, len(problems))
	for _, p := range problems {
		if !p.SolvedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// FilterContests keeps contests held within the last windowDays before now.
func FilterContests(contests []activity.Contest, now time.Time, windowDays int) []activity.Contest {
	cutoff := timeutil.WindowStart(now, windowDays)
	out := make([]activity.Contest, 0, len(contests))
	for _, c := range contests {
		if !c.Date.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// RATING DISTRIBUTION
// ══════════════════════════════════════════════════════════════════════════════

// RatingBucket is one bar of the rating-distribution histogram.
type RatingBucket struct {
	// Start is the inclusive lower bound of the bucket.
	Start int `json:"start"`

	// Label is the display label, e.g. "1400-1499".
	Label string `json:"label"`

	// Count is the number of problems in the bucket.
	Count int `json:"count"`
}

// BucketLabel returns the histogram label for a problem rating.
func BucketLabel(rating int) string {
	start := (rating / ratingBucketWidth) * ratingBucketWidth
	return fmt.Sprintf("%d-%d", start, start+ratingBucketWidth-1)
}

// RatingDistribution buckets problems by rating into fixed-width ranges,
// returned sorted by bucket start ascending.
func RatingDistribution(problems []activity.Problem) []RatingBucket {
	counts := make(map[int]int)
	for _, p := range problems {
		start := (p.Rating / ratingBucketWidth) * ratingBucketWidth
		counts[start]++
	}

	buckets := make([]RatingBucket, 0, len(counts))
	for start, count := range counts {
		buckets = append(buckets, RatingBucket{
			Start: start,
			Label: fmt.Sprintf("%d-%d", start, start+ratingBucketWidth-1),
			Count: count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start < buckets[j].Start })
	return buckets
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY HEATMAP SERIES
// ══════════════════════════════════════════════════════════════════════════════

// DayCount is one cell of the daily activity heatmap.
type DayCount struct {
	// Date is the UTC calendar date, formatted YYYY-MM-DD.
	Date string `json:"date"`

	// Count is the number of problems solved on that exact date.
	Count int `json:"count"`
}

// DailySeries builds the fixed-length daily heatmap series ending today.
// One entry per calendar day, oldest first; days without solves appear with
// count 0. The match is an exact calendar-date comparison, not a rolling
// 24-hour window.
func DailySeries(problems []activity.Problem, now time.Time, days int) []DayCount {
	counts := make(map[string]int)
	for _, p := range problems {
		counts[timeutil.DateKey(p.SolvedAt)]++
	}

	series := make([]DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := timeutil.DaysAgo(now, i)
		key := timeutil.DateKey(day)
		series = append(series, DayCount{Date: key, Count: counts[key]})
	}
	return series
}

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// Statistics summarizes a filtered problem set.
type Statistics struct {
	// TotalSolved is the number of problems in the filtered set.
	TotalSolved int `json:"total_solved"`

	// AverageRating is the mean problem rating, rounded to nearest integer
	// (0 for an empty set).
	AverageRating int `json:"average_rating"`

	// MaxRating is the highest problem rating (0 for an empty set).
	MaxRating int `json:"max_rating"`

	// AveragePerDay is solves divided by window length, rounded to one
	// decimal place.
	AveragePerDay float64 `json:"average_per_day"`
}

// Summarize computes summary statistics over an already-filtered problem set
// for a window of windowDays days.
func Summarize(problems []activity.Problem, windowDays int) Statistics {
	stats := Statistics{TotalSolved: len(problems)}

	if len(problems) > 0 {
		sum := 0
		for _, p := range problems {
			sum += p.Rating
			if p.Rating > stats.MaxRating {
				stats.MaxRating = p.Rating
			}
		}
		stats.AverageRating = int(math.Round(float64(sum) / float64(len(problems))))
	}

	if windowDays > 0 {
		perDay := float64(len(problems)) / float64(windowDays)
		stats.AveragePerDay = math.Round(perDay*10) / 10
	}

	return stats
}
