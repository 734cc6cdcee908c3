package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

// Every runs a job at a fixed interval.
type Every struct {
	Interval time.Duration
}

// NewEvery creates a fixed-interval schedule.
func NewEvery(interval time.Duration) Every {
	return Every{Interval: interval}
}

// Next returns t plus the interval.
func (e Every) Next(t time.Time) time.Time { return t.Add(e.Interval) }

func (e Every) String() string { return "@every " + e.Interval.String() }

// ──────────────────────────────────────────────────────────────────────────────
// Cron
// ──────────────────────────────────────────────────────────────────────────────

// Cron is a parsed 5-field cron expression:
// minute hour day-of-month month day-of-week (0 = Sunday).
// Fields accept "*", single values, comma lists, ranges ("1-5") and
// steps ("*/15").
type Cron struct {
	raw      string
	minutes  uint64
	hours    uint64
	days     uint64
	months   uint64
	weekdays uint64
}

// ParseCron parses a 5-field cron expression.
func ParseCron(expr string) (*Cron, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron %q: want 5 fields, got %d", expr, len(fields))
	}

	c := &Cron{raw: expr}
	specs := []struct {
		dest     *uint64
		min, max int
	}{
		{&c.minutes, 0, 59},
		{&c.hours, 0, 23},
		{&c.days, 1, 31},
		{&c.months, 1, 12},
		{&c.weekdays, 0, 6},
	}
	for i, spec := range specs {
		set, err := parseCronField(fields[i], spec.min, spec.max)
		if err != nil {
			return nil, fmt.Errorf("cron %q: field %d: %w", expr, i+1, err)
		}
		*spec.dest = set
	}
	return c, nil
}

// parseCronField parses one field into a bitset over [min, max].
func parseCronField(field string, min, max int) (uint64, error) {
	var set uint64
	for _, part := range strings.Split(field, ",") {
		step := 1
		if idx := strings.Index(part, "/"); idx >= 0 {
			n, err := strconv.Atoi(part[idx+1:])
			if err != nil || n <= 0 {
				return 0, fmt.Errorf("bad step %q", part)
			}
			step = n
			part = part[:idx]
		}

		lo, hi := min, max
		switch {
		case part == "*":
			// full range
		case strings.Contains(part, "-"):
			bounds := strings.SplitN(part, "-", 2)
			a, errA := strconv.Atoi(bounds[0])
			b, errB := strconv.Atoi(bounds[1])
			if errA != nil || errB != nil || a > b {
				return 0, fmt.Errorf("bad range %q", part)
			}
			lo, hi = a, b
		default:
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, fmt.Errorf("bad value %q", part)
			}
			lo, hi = n, n
		}

		if lo < min || hi > max {
			return 0, fmt.Errorf("value out of range [%d,%d]: %q", min, max, part)
		}
		for v := lo; v <= hi; v += step {
			set |= 1 << uint(v)
		}
	}
	if set == 0 {
		return 0, fmt.Errorf("empty field")
	}
	return set, nil
}

func (c *Cron) match(t time.Time) bool {
	return c.minutes&(1<<uint(t.Minute())) != 0 &&
		c.hours&(1<<uint(t.Hour())) != 0 &&
		c.days&(1<<uint(t.Day())) != 0 &&
		c.months&(1<<uint(int(t.Month()))) != 0 &&
		c.weekdays&(1<<uint(int(t.Weekday()))) != 0
}

// Next returns the first matching minute strictly after t. Cron resolution
// is one minute; the scan is bounded to four years to terminate on
// impossible dates such as "0 0 30 2 *".
func (c *Cron) Next(t time.Time) time.Time {
	next := t.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(4, 0, 0)
	for next.Before(limit) {
		if c.match(next) {
			return next
		}
		next = next.Add(time.Minute)
	}
	return time.Time{}
}

func (c *Cron) String() string { return c.raw }
