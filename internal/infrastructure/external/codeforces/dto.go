// Package codeforces implements the Codeforces platform adapter.
// It speaks the public Codeforces REST API: user.info for profile data and
// user.status for the full submission history.
package codeforces

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// API RESPONSE WRAPPERS
// ══════════════════════════════════════════════════════════════════════════════

// statusOK is the sentinel the API uses for successful responses.
const statusOK = "OK"

// apiResponse is the envelope every Codeforces endpoint returns.
// Status is either "OK" (Result is set) or "FAILED" (Comment explains why).
type apiResponse[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
	Result  T      `json:"result,omitempty"`
}

// remoteError is a non-OK response from the API, preserving the remote's own
// comment so the user sees Codeforces' explanation verbatim.
type remoteError struct {
	Endpoint string
	Comment  string
}

// Error implements the error interface.
func (e *remoteError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("codeforces %s: remote returned non-OK status", e.Endpoint)
	}
	return fmt.Sprintf("codeforces %s: %s", e.Endpoint, e.Comment)
}

// ══════════════════════════════════════════════════════════════════════════════
// USER DTOs
// ══════════════════════════════════════════════════════════════════════════════

// userDTO is one user object from user.info.
// Rating fields are absent for accounts that never entered a rated contest.
type userDTO struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating,omitempty"`
	MaxRating int    `json:"maxRating,omitempty"`
	Rank      string `json:"rank,omitempty"`
	MaxRank   string `json:"maxRank,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION DTOs
// ══════════════════════════════════════════════════════════════════════════════

// problemDTO is the problem object embedded in a submission.
type problemDTO struct {
	ContestID int      `json:"contestId,omitempty"`
	Index     string   `json:"index,omitempty"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// submissionDTO is one submission from user.status.
type submissionDTO struct {
	ID                  int64      `json:"id"`
	Problem             problemDTO `json:"problem"`
	Verdict             string     `json:"verdict,omitempty"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RATING CHANGE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ratingChangeDTO is one contest result from user.rating.
type ratingChangeDTO struct {
	ContestID               int64  `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}
