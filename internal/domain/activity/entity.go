// Package activity contains the raw activity records pulled from external
// platforms: submission events, solved problems, and contest results.
// Pure domain logic - no external dependencies.
package activity

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// VerdictAccepted is the verdict value that counts a submission as solved.
// Codeforces spells it "OK" on the wire; adapters for other platforms must
// map their own accepted verdicts onto this constant.
const VerdictAccepted = "OK"

// Submission is one submission event as reported by a platform.
type Submission struct {
	// ProblemID is the platform-assigned problem name/identifier.
	ProblemID string

	// Verdict is the judging outcome ("OK", "WRONG_ANSWER", ...).
	Verdict string

	// TimestampSeconds is the submission time in epoch seconds.
	TimestampSeconds int64
}

// Accepted reports whether the submission solved its problem.
func (s Submission) Accepted() bool {
	return s.Verdict == VerdictAccepted
}

// ══════════════════════════════════════════════════════════════════════════════
// ANALYTICS INPUTS
// ══════════════════════════════════════════════════════════════════════════════

// Problem is one solved submission, as consumed by the analytics layer.
type Problem struct {
	// ID is the internal unique identifier (UUID).
	ID string

	// StudentID is the owning student's internal ID.
	StudentID string

	// Name is the platform-assigned problem name.
	Name string

	// Rating is the problem difficulty (0 when the platform omits it).
	Rating int

	// Tags are the platform's topic tags.
	Tags []string

	// SolvedAt is when the accepted submission was made.
	SolvedAt time.Time
}

// Contest is one contest result, as consumed by the analytics layer.
type Contest struct {
	// ID is the internal unique identifier (UUID).
	ID string

	// StudentID is the owning student's internal ID.
	StudentID string

	// Name is the contest title.
	Name string

	// Date is when the contest took place.
	Date time.Time

	// Rank is the student's final standing.
	Rank int

	// RatingBefore is the rating going in.
	RatingBefore int

	// RatingAfter is the rating coming out.
	RatingAfter int

	// ProblemsSolved is how many problems the student solved.
	ProblemsSolved int

	// ProblemsTotal is how many problems the contest had.
	ProblemsTotal int
}

// RatingChange returns the rating delta of the contest.
func (c Contest) RatingChange() int {
	return c.RatingAfter - c.RatingBefore
}
