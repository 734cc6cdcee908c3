package activity

// ══════════════════════════════════════════════════════════════════════════════
// DEDUPLICATION
// Converts a raw submission list into stable metrics. Pure: same input,
// same output, no side effects.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// secondsPerDay is the bucket width for the contest approximation.
	secondsPerDay = 86400

	// maxContestApprox caps the day-bucket contest count. Multi-day streaks
	// would otherwise inflate the approximation without bound.
	maxContestApprox = 100
)

// Summary is the deduplicated view of a submission history.
type Summary struct {
	// SolvedCount is the number of distinct problems with at least one
	// accepted submission.
	SolvedCount int

	// ContestApprox approximates contest participation by counting distinct
	// UTC days that saw an accepted submission, capped at 100. It is a
	// heuristic: a real count needs a contest-list endpoint, which the
	// reference platform's submission feed does not provide.
	ContestApprox int
}

// Deduplicate reduces a submission list to a Summary.
//
// A problem counts as solved once, keyed by its platform-assigned identifier,
// no matter how many accepted submissions reference it. Only accepted
// submissions contribute to either metric; input order is irrelevant.
func Deduplicate(submissions []Submission) Summary {
	solved := make(map[string]struct{})
	days := make(map[int64]struct{})

	for _, sub := range submissions {
		if !sub.Accepted() {
			continue
		}
		solved[sub.ProblemID] = struct{}{}
		days[sub.TimestampSeconds/secondsPerDay] = struct{}{}
	}

	contests := len(days)
	if contests > maxContestApprox {
		contests = maxContestApprox
	}

	return Summary{
		SolvedCount:   len(solved),
		ContestApprox: contests,
	}
}
