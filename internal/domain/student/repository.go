package student

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// The contract for student storage. Implementations live in
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ListOptions controls pagination for list queries.
type ListOptions struct {
	// Limit caps the number of returned rows (0 = repository default).
	Limit int

	// Offset skips the given number of rows.
	Offset int

	// IncludeInactive includes students that are no longer tracked.
	IncludeInactive bool
}

// DefaultListOptions returns sensible list defaults.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 100}
}

// Repository defines CRUD operations for students.
type Repository interface {
	// Create creates a new student.
	// Returns shared.ErrAlreadyExists if a student with the same email exists.
	Create(ctx context.Context, student *Student) error

	// GetByID returns a student by internal ID.
	// Returns shared.ErrNotFound if the student does not exist.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByEmail returns a student by email.
	// Returns shared.ErrNotFound if the student does not exist.
	GetByEmail(ctx context.Context, email Email) (*Student, error)

	// Update updates an existing student.
	// Returns shared.ErrNotFound if the student does not exist.
	Update(ctx context.Context, student *Student) error

	// Delete removes a student and, through cascading, their links and scores.
	// Returns shared.ErrNotFound if the student does not exist.
	Delete(ctx context.Context, id string) error

	// GetAll returns students with pagination.
	GetAll(ctx context.Context, opts ListOptions) ([]*Student, error)

	// Count returns the total number of students.
	Count(ctx context.Context) (int, error)
}
