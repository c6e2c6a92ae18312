// Package candidate holds one shape hypothesis's accumulating evidence: its
// fit parameters, the running score from every subset it has been tested
// against so far, and the confidence interval the bound engine maintains
// over its true score against the full point set (spec.md §3, §4.4).
package candidate

import (
	"math"

	"go.viam.com/shapedetect/shapes"
)

// Candidate is one shape hypothesis drawn from a minimal sample, plus the
// cumulative scoring state the detection driver refines incrementally.
type Candidate struct {
	KindTag string
	Kind    shapes.Kind
	Params  shapes.Params

	// Score is the cumulative inlier count across every subset scored so
	// far (subsets [0, NextSubset)).
	Score int
	// NextSubset is the index of the next, not-yet-scored subset in the
	// ladder. A candidate scored against every subset has
	// NextSubset == ladder.K().
	NextSubset int
	// MatchedIndices accumulates the global point indices matched in every
	// subset scored so far.
	MatchedIndices []int

	// MinBound, MaxBound bracket the candidate's expected score against
	// the full, still-unassigned point population; ExpectedValue is the
	// engine's point estimate within that bracket. All three are
	// recomputed each time UpdateBounds is called (spec.md §4.4).
	MinBound      float64
	MaxBound      float64
	ExpectedValue float64
}

// New starts a candidate from a fitted sample. Its bounds are left at their
// zero value until the first UpdateBounds call.
func New(kindTag string, kind shapes.Kind, params shapes.Params) *Candidate {
	return &Candidate{KindTag: kindTag, Kind: kind, Params: params}
}

// RecordSubsetResult folds the next subset's scoring result (subsetScore
// inliers, with their matched global indices) into the candidate's
// cumulative state and advances NextSubset. It does not touch the bounds;
// UpdateBounds does that.
func (c *Candidate) RecordSubsetResult(subsetScore int, matched []int) {
	c.Score += subsetScore
	c.MatchedIndices = append(c.MatchedIndices, matched...)
	c.NextSubset++
}

// Fresh reports whether the candidate has not yet been scored against any
// subset (score/bounds are meaningless until at least one call).
func (c *Candidate) Fresh() bool { return c.NextSubset == 0 }

// FullyScored reports whether the candidate has been scored against every
// subset in a ladder of size numSubsets.
func (c *Candidate) FullyScored(numSubsets int) bool { return c.NextSubset >= numSubsets }

// DefaultConfidenceZ is the number of standard deviations the bound engine
// brackets around ExpectedValue, chosen for roughly a 99.7% confidence
// interval under the normal approximation to the hypergeometric
// distribution used below.
const DefaultConfidenceZ = 3.0

// UpdateBounds recomputes ExpectedValue, MinBound and MaxBound from the
// candidate's cumulative Score out of cumAvailable
// currently-unassigned points sampled so far, projected onto the full
// population of totalAvailable currently-unassigned points, using the
// variance of a hypergeometric draw of size cumAvailable from a population
// of totalAvailable (spec.md §4.4's "hypergeometric-style bound
// refinement").
func UpdateBounds(c *Candidate, cumAvailable, totalAvailable int, z float64) {
	if cumAvailable <= 0 || totalAvailable <= cumAvailable {
		c.ExpectedValue = float64(c.Score)
		c.MinBound = float64(c.Score)
		c.MaxBound = float64(c.Score)
		return
	}

	p := float64(c.Score) / float64(cumAvailable)
	remaining := float64(totalAvailable - cumAvailable)
	c.ExpectedValue = float64(c.Score) + p*remaining

	n := float64(cumAvailable)
	nTotal := float64(totalAvailable)
	variance := remaining * p * (1 - p) * (nTotal - n) / (nTotal - 1)
	if variance < 0 {
		variance = 0
	}
	margin := z * math.Sqrt(variance)

	c.MinBound = c.ExpectedValue - margin
	c.MaxBound = c.ExpectedValue + margin
	if c.MinBound < float64(c.Score) {
		c.MinBound = float64(c.Score)
	}
}
