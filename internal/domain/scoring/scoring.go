// Package scoring computes the composite score that summarizes a student's
// standing on one platform. Pure functions only.
package scoring

import (
	"math"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
)

// weights are the per-platform linear coefficients. Rating is divided, the
// other two multiplied. Changing these silently changes scoring semantics
// for every student, so treat them as frozen reference data.
type weights struct {
	problems      float64
	ratingDivisor float64
	contests      float64
}

var platformWeights = map[platform.Name]weights{
	platform.Codeforces: {problems: 2.0, ratingDivisor: 10, contests: 5},
	platform.LeetCode:   {problems: 1.5, ratingDivisor: 20, contests: 8},
	platform.CodeChef:   {problems: 1.8, ratingDivisor: 15, contests: 6},
}

// defaultWeights applies to any platform without its own entry.
var defaultWeights = weights{problems: 1.5, ratingDivisor: 15, contests: 5}

// Score maps solved problems, rating and contest participation to a single
// integer, rounded to nearest. Inputs are expected to be non-negative and
// already validated; the function does not clamp.
func Score(problemsSolved, rating, contestsParticipated int, name platform.Name) int {
	w, ok := platformWeights[name.Normalize()]
	if !ok {
		w = defaultWeights
	}

	raw := float64(problemsSolved)*w.problems +
		float64(rating)/w.ratingDivisor +
		float64(contestsParticipated)*w.contests

	return int(math.Round(raw))
}
