package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ScoreRepository implements platform.ScoreRepository for PostgreSQL.
type ScoreRepository struct {
	conn *Connection
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(conn *Connection) *ScoreRepository {
	return &ScoreRepository{conn: conn}
}

const scoreColumns = `id, student_id, platform_id, score, problems_solved, avg_rating,
	contests_participated, last_calculated`

// Upsert inserts the score or overwrites it in place, keyed by the
// (student_id, platform_id) composite key.
func (r *ScoreRepository) Upsert(ctx context.Context, score *platform.Score) error {
	query := `
		INSERT INTO platform_scores (
			id, student_id, platform_id, score, problems_solved, avg_rating,
			contests_participated, last_calculated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (student_id, platform_id) DO UPDATE SET
			score = EXCLUDED.score,
			problems_solved = EXCLUDED.problems_solved,
			avg_rating = EXCLUDED.avg_rating,
			contests_participated = EXCLUDED.contests_participated,
			last_calculated = EXCLUDED.last_calculated
	`

	_, err := r.conn.Exec(ctx, query,
		score.ID,
		score.StudentID,
		score.PlatformID,
		score.Value,
		score.ProblemsSolved,
		score.AvgRating,
		score.ContestsParticipated,
		score.LastCalculated,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("platform", "UpsertScore", shared.ErrNotFound,
				"student or platform does not exist")
		}
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	return nil
}

// GetByStudentAndPlatform returns the score for a pair.
func (r *ScoreRepository) GetByStudentAndPlatform(ctx context.Context, studentID, platformID string) (*platform.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM platform_scores WHERE student_id = $1 AND platform_id = $2`

	score, err := r.scanScore(r.conn.QueryRow(ctx, query, studentID, platformID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("platform", "GetScore", shared.ErrNotFound,
				"no score calculated for student "+studentID+" on this platform")
		}
		return nil, err
	}
	return score, nil
}

// GetAll returns all scores ordered by value descending.
func (r *ScoreRepository) GetAll(ctx context.Context) ([]*platform.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM platform_scores ORDER BY score DESC, last_calculated DESC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []*platform.Score
	for rows.Next() {
		score, err := r.scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	return scores, rows.Err()
}

func (r *ScoreRepository) scanScore(row pgx.Row) (*platform.Score, error) {
	var s platform.Score

	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.PlatformID,
		&s.Value,
		&s.ProblemsSolved,
		&s.AvgRating,
		&s.ContestsParticipated,
		&s.LastCalculated,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan score: %w", err)
	}

	return &s, nil
}
