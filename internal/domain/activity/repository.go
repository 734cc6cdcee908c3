package activity

import (
	"context"
	"time"
)

// Repository stores normalized activity records for the analytics layer.
type Repository interface {
	// SaveProblems stores solved problems for a student, replacing earlier
	// rows with the same (student, problem name) pair.
	SaveProblems(ctx context.Context, problems []Problem) error

	// SaveContests stores contest results for a student.
	SaveContests(ctx context.Context, contests []Contest) error

	// GetProblems returns a student's solved problems since the given time
	// (zero time = all), ordered by SolvedAt ascending.
	GetProblems(ctx context.Context, studentID string, since time.Time) ([]Problem, error)

	// GetContests returns a student's contest history since the given time
	// (zero time = all), ordered by Date ascending.
	GetContests(ctx context.Context, studentID string, since time.Time) ([]Contest, error)
}
