package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codetrack-hub/codetrack-backend/internal/application/command"
	"github.com/codetrack-hub/codetrack-backend/internal/application/query"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC
// ══════════════════════════════════════════════════════════════════════════════

type syncRequest struct {
	StudentID string `json:"student_id"`
	Platform  string `json:"platform_name"`
}

type syncResponse struct {
	StudentID            string    `json:"student_id"`
	Platform             string    `json:"platform"`
	Handle               string    `json:"handle"`
	Score                int       `json:"score"`
	ProblemsSolved       int       `json:"problems_solved"`
	CurrentRating        int       `json:"current_rating"`
	MaxRating            int       `json:"max_rating"`
	ContestsParticipated int       `json:"contests_participated"`
	SyncedAt             time.Time `json:"synced_at"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "validation", "request body is not valid JSON")
		return
	}
	if req.Platform == "" {
		req.Platform = string(platform.Codeforces)
	}

	result, err := s.deps.SyncHandler.Handle(r.Context(), command.SyncPlatformCommand{
		StudentID: req.StudentID,
		Platform:  platform.Name(req.Platform),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		StudentID:            result.StudentID,
		Platform:             string(result.Platform),
		Handle:               result.Activity.Handle.String(),
		Score:                result.Score,
		ProblemsSolved:       result.Activity.ProblemsSolved,
		CurrentRating:        result.Activity.CurrentRating,
		MaxRating:            result.Activity.MaxRating,
		ContestsParticipated: result.Activity.ContestsParticipated,
		SyncedAt:             result.SyncedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

type registerStudentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req registerStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "validation", "request body is not valid JSON")
		return
	}

	created, err := s.deps.StudentHandler.Register(r.Context(), command.RegisterStudentCommand{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, query.StudentDTO{
		ID:       created.ID,
		Name:     created.Name,
		Email:    string(created.Email),
		IsActive: created.IsActive,
	})
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	q := query.ListStudentsQuery{
		Limit:           queryInt(r, "limit", 0),
		Offset:          queryInt(r, "offset", 0),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
	}

	dto, err := s.deps.StudentsHandler.Handle(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

type updateStudentRequest struct {
	Name               *string `json:"name"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	EmailNotifications *bool   `json:"email_notifications"`
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req updateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "validation", "request body is not valid JSON")
		return
	}

	updated, err := s.deps.StudentHandler.Update(r.Context(), command.UpdateStudentCommand{
		StudentID:          chi.URLParam(r, "id"),
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		EmailNotifications: req.EmailNotifications,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, query.StudentDTO{
		ID:       updated.ID,
		Name:     updated.Name,
		Email:    string(updated.Email),
		IsActive: updated.IsActive,
	})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	err := s.deps.StudentHandler.Delete(r.Context(), command.DeleteStudentCommand{
		StudentID: chi.URLParam(r, "id"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": chi.URLParam(r, "id")})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.ProgressHandler.Handle(r.Context(), query.GetStudentProgressQuery{
		StudentID:  chi.URLParam(r, "id"),
		WindowDays: queryInt(r, "window_days", 0),
		SkipCache:  r.URL.Query().Get("fresh") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// PLATFORM LINKS
// ══════════════════════════════════════════════════════════════════════════════

type linkRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

type linkResponse struct {
	StudentID string `json:"student_id"`
	Platform  string `json:"platform"`
	Handle    string `json:"handle"`
}

func (s *Server) handleLinkPlatform(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "validation", "request body is not valid JSON")
		return
	}

	link, err := s.deps.LinkHandler.Link(r.Context(), command.LinkPlatformCommand{
		StudentID: chi.URLParam(r, "id"),
		Platform:  platform.Name(req.Platform),
		Handle:    platform.Handle(req.Handle),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, linkResponse{
		StudentID: link.StudentID,
		Platform:  req.Platform,
		Handle:    link.Handle.String(),
	})
}

func (s *Server) handleUpdateHandle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "validation", "request body is not valid JSON")
		return
	}

	err := s.deps.LinkHandler.UpdateHandle(r.Context(), command.UpdateHandleCommand{
		StudentID: chi.URLParam(r, "id"),
		Platform:  platform.Name(chi.URLParam(r, "platform")),
		Handle:    platform.Handle(req.Handle),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, linkResponse{
		StudentID: chi.URLParam(r, "id"),
		Platform:  chi.URLParam(r, "platform"),
		Handle:    req.Handle,
	})
}

func (s *Server) handleUnlinkPlatform(w http.ResponseWriter, r *http.Request) {
	err := s.deps.LinkHandler.Unlink(r.Context(), command.UnlinkPlatformCommand{
		StudentID: chi.URLParam(r, "id"),
		Platform:  platform.Name(chi.URLParam(r, "platform")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"student_id": chi.URLParam(r, "id"),
		"platform":   chi.URLParam(r, "platform"),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// READ-SIDE VIEWS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetScoreBoard(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.ScoreBoardHandler.Handle(r.Context(), query.GetScoreBoardQuery{
		Platform:  r.URL.Query().Get("platform"),
		Limit:     queryInt(r, "limit", 0),
		SkipCache: r.URL.Query().Get("fresh") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleGetPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := s.deps.PlatformsHandler.Handle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, platforms)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}

	if s.deps.HealthChecker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string)
		status := http.StatusOK
		for name, err := range s.deps.HealthChecker.Check(ctx) {
			if err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			} else {
				resp.Checks[name] = "ok"
			}
		}
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// queryInt reads an integer query parameter, falling back on bad input.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
