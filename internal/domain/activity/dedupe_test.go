package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicate_CountsAcceptedProblemsOnce(t *testing.T) {
	subs := []Submission{
		{ProblemID: "p1", Verdict: "OK", TimestampSeconds: 100},
		{ProblemID: "p1", Verdict: "OK", TimestampSeconds: 200},
		{ProblemID: "p2", Verdict: "WRONG", TimestampSeconds: 150},
	}

	got := Deduplicate(subs)
	assert.Equal(t, 1, got.SolvedCount, "p1 counted once, p2 never accepted")
}

func TestDeduplicate_ContestApproxGroupsByDay(t *testing.T) {
	subs := []Submission{
		{ProblemID: "a", Verdict: "OK", TimestampSeconds: 0},     // day 0
		{ProblemID: "b", Verdict: "OK", TimestampSeconds: 50000}, // day 0
		{ProblemID: "c", Verdict: "OK", TimestampSeconds: 90000}, // day 1
	}

	got := Deduplicate(subs)
	assert.Equal(t, 2, got.ContestApprox)
}

func TestDeduplicate_RejectedSubmissionsContributeNothing(t *testing.T) {
	subs := []Submission{
		{ProblemID: "a", Verdict: "WRONG_ANSWER", TimestampSeconds: 100},
		{ProblemID: "b", Verdict: "TIME_LIMIT_EXCEEDED", TimestampSeconds: 90000},
	}

	got := Deduplicate(subs)
	assert.Equal(t, 0, got.SolvedCount)
	assert.Equal(t, 0, got.ContestApprox)
}

func TestDeduplicate_ContestApproxCappedAt100(t *testing.T) {
	subs := make([]Submission, 0, 150)
	for day := 0; day < 150; day++ {
		subs = append(subs, Submission{
			ProblemID:        "p" + string(rune('a'+day%26)),
			Verdict:          "OK",
			TimestampSeconds: int64(day) * 86400,
		})
	}

	got := Deduplicate(subs)
	assert.Equal(t, 100, got.ContestApprox)
}

func TestDeduplicate_OrderIndependent(t *testing.T) {
	a := []Submission{
		{ProblemID: "x", Verdict: "OK", TimestampSeconds: 1000},
		{ProblemID: "y", Verdict: "OK", TimestampSeconds: 90000},
		{ProblemID: "x", Verdict: "WRONG", TimestampSeconds: 500},
	}
	b := []Submission{a[2], a[1], a[0]}

	assert.Equal(t, Deduplicate(a), Deduplicate(b))
}

func TestDeduplicate_Empty(t *testing.T) {
	got := Deduplicate(nil)
	assert.Equal(t, Summary{}, got)
}
