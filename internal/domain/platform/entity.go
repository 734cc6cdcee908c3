// Package platform contains the domain model for external competitive
// programming platforms: the static platform registry, the link between a
// student and their handle on a platform, and the composite score derived
// from synced activity.
package platform

import (
	"strings"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Name identifies a platform. Matching is case-insensitive; Normalize is the
// canonical form used for adapter dispatch and scoring weights.
type Name string

// Well-known platforms. Codeforces is the reference platform and the only
// one with a full adapter; the others are registered but unsupported.
const (
	Codeforces Name = "codeforces"
	LeetCode   Name = "leetcode"
	CodeChef   Name = "codechef"
)

// Normalize returns the canonical lower-cased platform name.
func (n Name) Normalize() Name {
	return Name(strings.ToLower(strings.TrimSpace(string(n))))
}

// String returns the string representation of the name.
func (n Name) String() string {
	return string(n)
}

// Handle represents a student's username on an external platform.
type Handle string

// IsValid checks basic handle constraints.
func (h Handle) IsValid() bool {
	s := string(h)
	return len(s) >= 1 && len(s) <= 64 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation of the handle.
func (h Handle) String() string {
	return string(h)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Platform is static reference data describing one external service.
type Platform struct {
	// ID is the internal unique identifier (UUID).
	ID string

	// Name is the canonical platform name.
	Name Name

	// Icon is the dashboard icon identifier.
	Icon string

	// Color is the dashboard display color (hex).
	Color string

	// CreatedAt is when the platform row was seeded.
	CreatedAt time.Time
}

// Link ties one student to one platform via a handle, together with the last
// synchronized snapshot of their activity. At most one link exists per
// (student, platform) pair; syncs update the existing row, never insert.
type Link struct {
	// ID is the internal unique identifier (UUID).
	ID string

	// StudentID is the owning student's internal ID.
	StudentID string

	// PlatformID is the platform's internal ID.
	PlatformID string

	// Handle is the student's username on the platform.
	Handle Handle

	// CurrentRating is the rating at last sync.
	CurrentRating int

	// MaxRating is the peak rating at last sync.
	MaxRating int

	// ProblemsSolved is the distinct solved-problem count at last sync.
	ProblemsSolved int

	// ContestsParticipated is the contest count at last sync.
	ContestsParticipated int

	// LastSynced is when the snapshot was last refreshed (zero = never).
	LastSynced time.Time

	// CreatedAt is when the link was created.
	CreatedAt time.Time
}

// NewLink creates a link with zeroed snapshot counters. The counters stay at
// zero until the first successful sync fills them in.
func NewLink(id, studentID, platformID string, handle Handle) (*Link, error) {
	if id == "" || studentID == "" || platformID == "" {
		return nil, shared.NewDomainError("platform", "NewLink", shared.ErrInvalidID, "id, student_id and platform_id must not be empty")
	}
	if !handle.IsValid() {
		return nil, shared.NewDomainError("platform", "NewLink", shared.ErrValidation, "invalid handle: "+handle.String())
	}

	return &Link{
		ID:         id,
		StudentID:  studentID,
		PlatformID: platformID,
		Handle:     handle,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ApplySnapshot overwrites the snapshot fields with freshly fetched activity.
// The adapter's counts are authoritative: a smaller value than the stored one
// is accepted, not treated as an error.
func (l *Link) ApplySnapshot(a RawActivity, syncedAt time.Time) {
	l.CurrentRating = a.CurrentRating
	l.MaxRating = a.MaxRating
	l.ProblemsSolved = a.ProblemsSolved
	l.ContestsParticipated = a.ContestsParticipated
	l.LastSynced = syncedAt
}

// Score is the derived composite score for a (student, platform) pair,
// together with the inputs that produced it. Always recomputed from a fresh
// sync, never hand-edited.
type Score struct {
	// ID is the internal unique identifier (UUID).
	ID string

	// StudentID is the owning student's internal ID.
	StudentID string

	// PlatformID is the platform's internal ID.
	PlatformID string

	// Value is the composite score.
	Value int

	// ProblemsSolved is the solved count the score was derived from.
	ProblemsSolved int

	// AvgRating is the rating the score was derived from.
	AvgRating int

	// ContestsParticipated is the contest count the score was derived from.
	ContestsParticipated int

	// LastCalculated is when the score was last recomputed.
	LastCalculated time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// RAW ACTIVITY (EPHEMERAL)
// ══════════════════════════════════════════════════════════════════════════════

// RawActivity is the adapter's normalized output for one handle. It lives
// only for the duration of a single sync and is never persisted as-is.
type RawActivity struct {
	// Handle is the platform's canonical spelling of the handle.
	Handle Handle `json:"handle"`

	// CurrentRating is the current rating (0 for unrated accounts).
	CurrentRating int `json:"current_rating"`

	// MaxRating is the peak rating (0 for unrated accounts).
	MaxRating int `json:"max_rating"`

	// ProblemsSolved is the distinct count of accepted problems.
	ProblemsSolved int `json:"problems_solved"`

	// ContestsParticipated is the day-bucket contest approximation.
	ContestsParticipated int `json:"contests_participated"`
}
