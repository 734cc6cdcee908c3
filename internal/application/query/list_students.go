package query

import (
	"context"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentsQuery contains the query parameters.
type ListStudentsQuery struct {
	Limit           int
	Offset          int
	IncludeInactive bool
}

// Validate normalizes pagination.
func (q *ListStudentsQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// StudentDTO is one student row.
type StudentDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// StudentListDTO is the paginated listing payload.
type StudentListDTO struct {
	Students []StudentDTO `json:"students"`
	Total    int          `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

// ListStudentsHandler handles the query.
type ListStudentsHandler struct {
	studentRepo student.Repository
}

// NewListStudentsHandler creates a new handler.
func NewListStudentsHandler(studentRepo student.Repository) *ListStudentsHandler {
	return &ListStudentsHandler{studentRepo: studentRepo}
}

// Handle executes the query.
func (h *ListStudentsHandler) Handle(ctx context.Context, q ListStudentsQuery) (*StudentListDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	students, err := h.studentRepo.GetAll(ctx, student.ListOptions{
		Limit:           q.Limit,
		Offset:          q.Offset,
		IncludeInactive: q.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}

	total, err := h.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	dto := &StudentListDTO{
		Students: make([]StudentDTO, 0, len(students)),
		Total:    total,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	for _, s := range students {
		dto.Students = append(dto.Students, StudentDTO{
			ID:       s.ID,
			Name:     s.Name,
			Email:    string(s.Email),
			IsActive: s.IsActive,
		})
	}
	return dto, nil
}
