// Package score computes the advisory rollup of category sub-scores.
//
// The rollup is display-side guidance for the expert: the persisted
// final score is whatever the expert enters in the score section's own
// field, never this computed value.
package score

import (
	"math"
	"strconv"
)

// Rollup averages the qualifying sub-scores and rounds to one decimal.
// Inputs are free-form numeric strings; unparsable and non-positive
// entries mean "not yet scored" and are excluded rather than counted as
// zero. With no qualifying input the rollup is 0.
func Rollup(subScores ...string) float64 {
	var sum float64
	var n int
	for _, raw := range subScores {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= 0 {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*10) / 10
}
