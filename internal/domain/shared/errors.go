// Package shared contains common domain types and errors that are used
// across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrNegativeValue = errors.New("value cannot be negative")

	// Sync errors. A sync can only run against a stored link, so a missing
	// link is its own failure kind: the user has to configure a handle first.
	ErrLinkNotFound        = errors.New("no platform handle on file")
	ErrUnsupportedPlatform = errors.New("platform not supported")
	ErrHandleNotFound      = errors.New("handle does not exist on platform")

	// External service errors
	ErrExternalService = errors.New("external service error")
	ErrRateLimited     = errors.New("rate limited")
	ErrTransient       = errors.New("transient remote failure")

	// Persistence errors
	ErrPersist = errors.New("persistence failure")
)

// Retryable reports whether re-invoking the failed operation later could
// succeed without user intervention. LinkNotFound, Unsupported and
// HandleNotFound all require the user to fix configuration first.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrPersist)
}

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "platform", "student", "sync"
	Op      string // Operation that failed, e.g., "Fetch", "UpsertScore"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// FailureKind names the sentinel an error matches, for logs and metrics
// labels. Unmatched errors report as "unknown".
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedPlatform):
		return "unsupported_platform"
	case errors.Is(err, ErrLinkNotFound):
		return "link_not_found"
	case errors.Is(err, ErrHandleNotFound):
		return "handle_not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrPersist):
		return "persist"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return "validation"
	case errors.Is(err, ErrExternalService):
		return "external"
	default:
		return "unknown"
	}
}
