package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LINK REPOSITORY IMPLEMENTATION
// student_platforms rows. The UNIQUE(student_id, platform_id) constraint
// keeps one link per pair; snapshot refreshes are strict UPDATEs.
// ══════════════════════════════════════════════════════════════════════════════

// LinkRepository implements platform.LinkRepository for PostgreSQL.
type LinkRepository struct {
	conn *Connection
}

// NewLinkRepository creates a new LinkRepository.
func NewLinkRepository(conn *Connection) *LinkRepository {
	return &LinkRepository{conn: conn}
}

const linkColumns = `id, student_id, platform_id, handle, current_rating, max_rating,
	problems_solved, contests_participated, last_synced, created_at`

// Create inserts a new link.
func (r *LinkRepository) Create(ctx context.Context, link *platform.Link) error {
	query := `
		INSERT INTO student_platforms (
			id, student_id, platform_id, handle, current_rating, max_rating,
			problems_solved, contests_participated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		link.ID,
		link.StudentID,
		link.PlatformID,
		link.Handle.String(),
		link.CurrentRating,
		link.MaxRating,
		link.ProblemsSolved,
		link.ContestsParticipated,
		link.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("platform", "CreateLink", shared.ErrAlreadyExists,
				"student already has a link on this platform")
		}
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("platform", "CreateLink", shared.ErrNotFound,
				"student or platform does not exist")
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetByStudentAndPlatform returns the link for a (student, platform) pair.
func (r *LinkRepository) GetByStudentAndPlatform(ctx context.Context, studentID, platformID string) (*platform.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM student_platforms WHERE student_id = $1 AND platform_id = $2`

	link, err := r.scanLink(r.conn.QueryRow(ctx, query, studentID, platformID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("platform", "GetLink", shared.ErrLinkNotFound,
				"no link for student "+studentID+" on this platform")
		}
		return nil, err
	}
	return link, nil
}

// GetByStudent returns all links for a student.
func (r *LinkRepository) GetByStudent(ctx context.Context, studentID string) ([]*platform.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM student_platforms WHERE student_id = $1 ORDER BY created_at`

	return r.queryLinks(ctx, query, studentID)
}

// GetByPlatform returns all links on a platform.
func (r *LinkRepository) GetByPlatform(ctx context.Context, platformID string) ([]*platform.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM student_platforms WHERE platform_id = $1 ORDER BY created_at`

	return r.queryLinks(ctx, query, platformID)
}

// UpdateSnapshot overwrites the snapshot fields of an existing link.
func (r *LinkRepository) UpdateSnapshot(ctx context.Context, link *platform.Link) error {
	query := `
		UPDATE student_platforms SET
			current_rating = $1,
			max_rating = $2,
			problems_solved = $3,
			contests_participated = $4,
			last_synced = $5
		WHERE id = $6
	`

	tag, err := r.conn.Exec(ctx, query,
		link.CurrentRating,
		link.MaxRating,
		link.ProblemsSolved,
		link.ContestsParticipated,
		link.LastSynced,
		link.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update link snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("platform", "UpdateSnapshot", shared.ErrLinkNotFound,
			"link "+link.ID+" not found")
	}

	return nil
}

// UpdateHandle changes the stored handle for an existing link.
func (r *LinkRepository) UpdateHandle(ctx context.Context, linkID string, handle platform.Handle) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE student_platforms SET handle = $1 WHERE id = $2`,
		handle.String(), linkID)
	if err != nil {
		return fmt.Errorf("failed to update link handle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("platform", "UpdateHandle", shared.ErrLinkNotFound,
			"link "+linkID+" not found")
	}

	return nil
}

// Delete removes a link and its derived score.
func (r *LinkRepository) Delete(ctx context.Context, linkID string) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var studentID, platformID string
		err := tx.QueryRow(ctx,
			`DELETE FROM student_platforms WHERE id = $1 RETURNING student_id, platform_id`,
			linkID).Scan(&studentID, &platformID)
		if err != nil {
			if IsNoRows(err) {
				return shared.NewDomainError("platform", "DeleteLink", shared.ErrLinkNotFound,
					"link "+linkID+" not found")
			}
			return fmt.Errorf("failed to delete link: %w", err)
		}

		_, err = tx.Exec(ctx,
			`DELETE FROM platform_scores WHERE student_id = $1 AND platform_id = $2`,
			studentID, platformID)
		if err != nil {
			return fmt.Errorf("failed to delete derived score: %w", err)
		}
		return nil
	})
}

func (r *LinkRepository) queryLinks(ctx context.Context, query string, arg any) ([]*platform.Link, error) {
	rows, err := r.conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []*platform.Link
	for rows.Next() {
		link, err := r.scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

func (r *LinkRepository) scanLink(row pgx.Row) (*platform.Link, error) {
	var link platform.Link
	var handle string
	var lastSynced *time.Time

	err := row.Scan(
		&link.ID,
		&link.StudentID,
		&link.PlatformID,
		&handle,
		&link.CurrentRating,
		&link.MaxRating,
		&link.ProblemsSolved,
		&link.ContestsParticipated,
		&lastSynced,
		&link.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}

	link.Handle = platform.Handle(handle)
	if lastSynced != nil {
		link.LastSynced = *lastSynced
	}
	return &link, nil
}
