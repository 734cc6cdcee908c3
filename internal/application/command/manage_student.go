package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT MANAGEMENT COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand creates a new tracked student.
type RegisterStudentCommand struct {
	Name  string
	Email string
	Phone string
}

// UpdateStudentCommand updates a student's profile fields. Nil pointers
// leave the stored value untouched.
type UpdateStudentCommand struct {
	StudentID string

	Name               *string
	Email              *string
	Phone              *string
	EmailNotifications *bool
}

// DeactivateStudentCommand stops tracking a student without deleting data.
type DeactivateStudentCommand struct {
	StudentID string
}

// DeleteStudentCommand removes a student and all derived data.
type DeleteStudentCommand struct {
	StudentID string
}

// StudentHandler handles student management commands.
type StudentHandler struct {
	repo        student.Repository
	invalidator CacheInvalidator
	logger      *logger.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(repo student.Repository, invalidator CacheInvalidator, log *logger.Logger) *StudentHandler {
	if log == nil {
		log = logger.Default()
	}
	return &StudentHandler{
		repo:        repo,
		invalidator: invalidator,
		logger:      log.With(logger.Component("students")),
	}
}

// Register creates a new student.
func (h *StudentHandler) Register(ctx context.Context, cmd RegisterStudentCommand) (*student.Student, error) {
	s, err := student.NewStudent(uuid.NewString(), cmd.Name, student.Email(cmd.Email))
	if err != nil {
		return nil, err
	}
	s.Phone = cmd.Phone

	if err := h.repo.Create(ctx, s); err != nil {
		return nil, err
	}

	h.logger.Info("student registered", logger.StudentID(s.ID))
	return s, nil
}

// Update applies profile changes.
func (h *StudentHandler) Update(ctx context.Context, cmd UpdateStudentCommand) (*student.Student, error) {
	s, err := h.repo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if *cmd.Name == "" {
			return nil, shared.NewDomainError("student", "Update", shared.ErrValidation, "name must not be empty")
		}
		s.Name = *cmd.Name
	}
	if cmd.Email != nil {
		email := student.Email(*cmd.Email)
		if !email.IsValid() {
			return nil, shared.NewDomainError("student", "Update", shared.ErrValidation, "invalid email: "+*cmd.Email)
		}
		s.Email = email
	}
	if cmd.Phone != nil {
		s.Phone = *cmd.Phone
	}
	if cmd.EmailNotifications != nil {
		s.EmailNotifications = *cmd.EmailNotifications
	}
	s.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(ctx, s); err != nil {
		return nil, err
	}

	h.invalidate(ctx, s.ID)
	return s, nil
}

// Deactivate stops tracking a student.
func (h *StudentHandler) Deactivate(ctx context.Context, cmd DeactivateStudentCommand) error {
	s, err := h.repo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return err
	}

	s.Deactivate()
	if err := h.repo.Update(ctx, s); err != nil {
		return err
	}

	h.invalidate(ctx, s.ID)
	h.logger.Info("student deactivated", logger.StudentID(s.ID))
	return nil
}

// Delete removes a student and all derived data.
func (h *StudentHandler) Delete(ctx context.Context, cmd DeleteStudentCommand) error {
	if err := h.repo.Delete(ctx, cmd.StudentID); err != nil {
		return err
	}

	h.invalidate(ctx, cmd.StudentID)
	h.logger.Info("student deleted", logger.StudentID(cmd.StudentID))
	return nil
}

func (h *StudentHandler) invalidate(ctx context.Context, studentID string) {
	if h.invalidator == nil {
		return
	}
	if err := h.invalidator.InvalidateStudent(ctx, studentID); err != nil {
		h.logger.Warn("cache invalidation failed", logger.StudentID(studentID), logger.Err(err))
	}
}
