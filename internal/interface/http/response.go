package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/application/command"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse is the uniform response envelope.
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError carries a machine-readable code plus a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta is the envelope metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    &Meta{Timestamp: time.Now().UTC(), Version: "v1"},
	})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &Meta{Timestamp: time.Now().UTC()},
	})
}

// writeError maps a domain error to an HTTP status and envelope code.
func writeError(w http.ResponseWriter, err error) {
	writeErrorCode(w, statusFor(err), shared.FailureKind(err), err.Error())
}

// statusFor translates failure kinds into HTTP status codes. Typed domain
// errors surface unchanged in the body; only the status is derived here.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrLinkNotFound),
		errors.Is(err, shared.ErrHandleNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, shared.ErrUnsupportedPlatform):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, shared.ErrTransient),
		errors.Is(err, shared.ErrExternalService):
		return http.StatusBadGateway
	case command.IsClientFailure(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
