package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

const studentColumns = `id, name, email, phone, is_active, email_notifications, created_at, updated_at`

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (id, name, email, phone, is_active, email_notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Name,
		string(s.Email),
		s.Phone,
		s.IsActive,
		s.EmailNotifications,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("student", "Create", shared.ErrAlreadyExists,
				"student with email "+string(s.Email)+" already exists")
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	return r.scanStudent(r.conn.QueryRow(ctx, query, id))
}

// GetByEmail returns a student by email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email student.Email) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE email = $1`

	return r.scanStudent(r.conn.QueryRow(ctx, query, string(email)))
}

// Update updates an existing student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			name = $1,
			email = $2,
			phone = $3,
			is_active = $4,
			email_notifications = $5,
			updated_at = $6
		WHERE id = $7
	`

	tag, err := r.conn.Exec(ctx, query,
		s.Name,
		string(s.Email),
		s.Phone,
		s.IsActive,
		s.EmailNotifications,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("student", "Update", shared.ErrNotFound, "student "+s.ID+" not found")
	}

	return nil
}

// Delete removes a student. Links, scores and activity records go with it
// through ON DELETE CASCADE.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("student", "Delete", shared.ErrNotFound, "student "+id+" not found")
	}

	return nil
}

// GetAll returns students with pagination.
func (r *StudentRepository) GetAll(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	if opts.Limit <= 0 {
		opts.Limit = student.DefaultListOptions().Limit
	}

	query := `SELECT ` + studentColumns + ` FROM students`
	if !opts.IncludeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at ASC LIMIT $1 OFFSET $2`

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []*student.Student
	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn.QueryRow(ctx, `SELECT count(*) FROM students`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// scanStudent maps one row to the domain entity.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var email string

	err := row.Scan(
		&s.ID,
		&s.Name,
		&email,
		&s.Phone,
		&s.IsActive,
		&s.EmailNotifications,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("student", "scan", shared.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.Email = student.Email(email)
	return &s, nil
}
