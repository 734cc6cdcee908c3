// Package timeutil provides UTC calendar helpers for activity aggregation.
// Heatmaps and per-day statistics bucket by UTC calendar date, so the same
// submission always lands in the same cell regardless of server timezone.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// StartOfDay returns midnight UTC of t's calendar date.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}

// DaysAgo returns midnight UTC of the date n days before t.
func DaysAgo(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, -n)
}

// WindowStart returns the cutoff instant for a lookback window of n days
// ending at t: records at or after the cutoff are inside the window.
func WindowStart(t time.Time, n int) time.Time {
	return t.UTC().AddDate(0, 0, -n)
}

// DateKey formats t's UTC calendar date as YYYY-MM-DD, the stable key used
// for daily series entries.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
