// Package student contains the student domain model for CodeTrack Hub.
// This is core business logic - no external dependencies live here.
package student

import (
	"strings"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Email represents a student's email address.
type Email string

// IsValid performs a minimal sanity check on the email.
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation of the email.
func (e Email) String() string {
	return string(e)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Student represents a tracked student.
// Students are created and edited through the dashboard; their platform
// activity is pulled in separately by the sync engine.
type Student struct {
	// ID is the internal unique identifier (UUID).
	ID string

	// Name is the student's display name.
	Name string

	// Email is the student's email address.
	Email Email

	// Phone is the student's phone number (optional).
	Phone string

	// IsActive marks whether the student is still being tracked.
	IsActive bool

	// EmailNotifications controls whether the student receives email digests.
	EmailNotifications bool

	// CreatedAt is when the student record was created.
	CreatedAt time.Time

	// UpdatedAt is when the student record was last modified.
	UpdatedAt time.Time
}

// NewStudent creates a new student with validated fields.
func NewStudent(id, name string, email Email) (*Student, error) {
	if id == "" {
		return nil, shared.NewDomainError("student", "NewStudent", shared.ErrInvalidID, "id must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("student", "NewStudent", shared.ErrEmptyValue, "name must not be empty")
	}
	if !email.IsValid() {
		return nil, shared.NewDomainError("student", "NewStudent", shared.ErrValidation, "invalid email: "+email.String())
	}

	now := time.Now().UTC()
	return &Student{
		ID:                 id,
		Name:               strings.TrimSpace(name),
		Email:              email,
		IsActive:           true,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Deactivate stops tracking the student without deleting history.
func (s *Student) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now().UTC()
}

// Activate resumes tracking the student.
func (s *Student) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now().UTC()
}
