package platform

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// PlatformRepository stores the static platform reference data.
type PlatformRepository interface {
	// GetByName returns a platform by canonical name.
	// Returns shared.ErrNotFound if unknown.
	GetByName(ctx context.Context, name Name) (*Platform, error)

	// GetAll returns all platforms ordered by name.
	GetAll(ctx context.Context) ([]*Platform, error)
}

// LinkRepository stores student-platform links and their sync snapshots.
type LinkRepository interface {
	// Create inserts a new link.
	// Returns shared.ErrAlreadyExists if the (student, platform) pair is taken.
	Create(ctx context.Context, link *Link) error

	// GetByStudentAndPlatform returns the link for a (student, platform) pair.
	// Returns shared.ErrLinkNotFound if absent.
	GetByStudentAndPlatform(ctx context.Context, studentID, platformID string) (*Link, error)

	// GetByStudent returns all links for a student.
	GetByStudent(ctx context.Context, studentID string) ([]*Link, error)

	// GetByPlatform returns all links on a platform.
	GetByPlatform(ctx context.Context, platformID string) ([]*Link, error)

	// UpdateSnapshot overwrites the snapshot fields of an existing link.
	// Strictly an UPDATE keyed by link ID; never inserts.
	UpdateSnapshot(ctx context.Context, link *Link) error

	// UpdateHandle changes the stored handle for an existing link.
	UpdateHandle(ctx context.Context, linkID string, handle Handle) error

	// Delete removes a link and its derived score.
	Delete(ctx context.Context, linkID string) error
}

// ScoreRepository stores derived composite scores.
type ScoreRepository interface {
	// Upsert inserts the score or overwrites it in place, keyed by the
	// (student_id, platform_id) composite key. This is what makes a repeated
	// sync idempotent: two runs against unchanged remote state leave one row.
	Upsert(ctx context.Context, score *Score) error

	// GetByStudentAndPlatform returns the score for a pair.
	// Returns shared.ErrNotFound if never calculated.
	GetByStudentAndPlatform(ctx context.Context, studentID, platformID string) (*Score, error)

	// GetAll returns all scores ordered by value descending.
	GetAll(ctx context.Context) ([]*Score, error)
}
