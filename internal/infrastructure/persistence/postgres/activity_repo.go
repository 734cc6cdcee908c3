package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY REPOSITORY IMPLEMENTATION
// Solved problems and contest results, refreshed wholesale on every sync.
// Batched writes go through pgx.Batch to keep a full refresh to one round
// trip per table.
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRepository implements activity.Repository for PostgreSQL.
type ActivityRepository struct {
	conn *Connection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(conn *Connection) *ActivityRepository {
	return &ActivityRepository{conn: conn}
}

// SaveProblems stores solved problems for a student, replacing earlier rows
// with the same (student, problem name) pair.
func (r *ActivityRepository) SaveProblems(ctx context.Context, problems []activity.Problem) error {
	if len(problems) == 0 {
		return nil
	}

	query := `
		INSERT INTO problems (student_id, name, rating, tags, solved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, name) DO UPDATE SET
			rating = EXCLUDED.rating,
			tags = EXCLUDED.tags,
			solved_at = EXCLUDED.solved_at
	`

	batch := &pgx.Batch{}
	for _, p := range problems {
		batch.Queue(query, p.StudentID, p.Name, p.Rating, p.Tags, p.SolvedAt)
	}

	results := r.conn.Pool().SendBatch(ctx, batch)
	defer results.Close()

	for range problems {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save problems: %w", err)
		}
	}

	return nil
}

// SaveContests stores contest results for a student.
func (r *ActivityRepository) SaveContests(ctx context.Context, contests []activity.Contest) error {
	if len(contests) == 0 {
		return nil
	}

	query := `
		INSERT INTO contests (
			student_id, name, date, rank, rating_before, rating_after,
			problems_solved, problems_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (student_id, name, date) DO UPDATE SET
			rank = EXCLUDED.rank,
			rating_before = EXCLUDED.rating_before,
			rating_after = EXCLUDED.rating_after,
			problems_solved = EXCLUDED.problems_solved,
			problems_total = EXCLUDED.problems_total
	`

	batch := &pgx.Batch{}
	for _, c := range contests {
		batch.Queue(query,
			c.StudentID, c.Name, c.Date, c.Rank, c.RatingBefore, c.RatingAfter,
			c.ProblemsSolved, c.ProblemsTotal)
	}

	results := r.conn.Pool().SendBatch(ctx, batch)
	defer results.Close()

	for range contests {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save contests: %w", err)
		}
	}

	return nil
}

// GetProblems returns a student's solved problems since the given time
// (zero time = all), ordered by SolvedAt ascending.
func (r *ActivityRepository) GetProblems(ctx context.Context, studentID string, since time.Time) ([]activity.Problem, error) {
	query := `
		SELECT id, student_id, name, rating, tags, solved_at
		FROM problems
		WHERE student_id = $1 AND solved_at >= $2
		ORDER BY solved_at ASC
	`

	rows, err := r.conn.Query(ctx, query, studentID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query problems: %w", err)
	}
	defer rows.Close()

	var problems []activity.Problem
	for rows.Next() {
		var p activity.Problem
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Name, &p.Rating, &p.Tags, &p.SolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan problem: %w", err)
		}
		problems = append(problems, p)
	}

	return problems, rows.Err()
}

// GetContests returns a student's contest history since the given time
// (zero time = all), ordered by Date ascending.
func (r *ActivityRepository) GetContests(ctx context.Context, studentID string, since time.Time) ([]activity.Contest, error) {
	query := `
		SELECT id, student_id, name, date, rank, rating_before, rating_after,
			problems_solved, problems_total
		FROM contests
		WHERE student_id = $1 AND date >= $2
		ORDER BY date ASC
	`

	rows, err := r.conn.Query(ctx, query, studentID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query contests: %w", err)
	}
	defer rows.Close()

	var contests []activity.Contest
	for rows.Next() {
		var c activity.Contest
		err := rows.Scan(&c.ID, &c.StudentID, &c.Name, &c.Date, &c.Rank,
			&c.RatingBefore, &c.RatingAfter, &c.ProblemsSolved, &c.ProblemsTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contest: %w", err)
		}
		contests = append(contests, c)
	}

	return contests, rows.Err()
}
