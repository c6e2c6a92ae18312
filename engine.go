// Package shapedetect finds instances of registered geometric primitives
// (planes, spheres, cylinders, cones, tori) in an oriented point cloud
// using an efficient-RANSAC search: octree-guided minimal-sample
// candidates, scored incrementally against a geometrically-sized subset
// ladder and pruned by a hypergeometric confidence bound, extracted
// one at a time until an overlook-probability criterion says further
// search is unlikely to find anything new (spec.md §1, §4).
package shapedetect

import (
	"math"
	"math/rand"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/shapedetect/candidate"
	"go.viam.com/shapedetect/components"
	"go.viam.com/shapedetect/internal/logging"
	"go.viam.com/shapedetect/octree"
	"go.viam.com/shapedetect/pointset"
	"go.viam.com/shapedetect/shapes"
	"go.viam.com/shapedetect/subsetladder"
)

// failedInARowCeiling forces detection to a normal stop once this many
// consecutive candidate-generation draws in a row have produced nothing
// admissible, per spec.md §4.7 step 1's "force termination" flag.
const failedInARowCeiling = 10000

// maxOuterStalls bounds how many outer-loop iterations in a row may end
// without ever committing a shape — a driver-level guard against spinning
// forever on a pool that keeps regenerating candidates that never clear
// the commit gate, distinct from spec.md's own failedInARowCeiling. Its
// trip returns ErrProgressStall rather than the silent, empty-progress
// Result a bare force-exit would give the caller.
const maxOuterStalls = 200

// DetectedShape is one extracted primitive: its kind, fit parameters, and
// the indices of the input points it claimed, expressed in the caller's
// original input order.
type DetectedShape struct {
	KindTag string
	Params  shapes.Params
	Indices []int
}

// Result is Detect's output (spec.md §6.2): every extracted shape, in
// extraction order, plus the indices of points no shape claimed. All indices refer to
// positions in the points slice Detect was called with, not the engine's
// internal (possibly permuted) point order.
type Result struct {
	Shapes            []DetectedShape
	UnassignedIndices []int
}

// Detect runs the search to completion against points using kinds drawn
// from registry, per cfg. logger may be nil, in which case a logger that
// discards everything is used.
func Detect(points []pointset.Point, registry *shapes.Registry, cfg Config, logger logging.Logger) (*Result, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	if registry == nil || registry.Len() == 0 {
		return nil, ErrNoKinds
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "shapedetect: invalid config")
	}
	if logger == nil {
		logger = logging.NewBlankLogger("shapedetect")
	}

	store, err := pointset.NewStore(points)
	if err != nil {
		return nil, errors.Wrap(err, "shapedetect")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ladder := subsetladder.Build(store, rng)
	indexed := octree.NewIndexed(store)
	assignment := pointset.NewAssignment(store.Len())
	numLevels := indexed.MaxLevel() + 1
	refine := makeRefiner(ladder, assignment, cfg)

	logger.Infow("built subset ladder", "subsets", ladder.K(), "points", store.Len())

	var shapesFound []DetectedShape
	var pool []*candidate.Candidate
	drawnCandidates := 0
	failedInARow := 0
	outerStalls := 0

outer:
	for {
		available := assignment.Available()
		if available < cfg.MinPoints {
			break
		}

		// Step 1 (spec.md §4.7): grow the pool until either the
		// minimum-shape-size overlook probability has dropped below the
		// threshold, or the best candidate already in the pool has.
		for {
			available = assignment.Available()
			if available < cfg.MinPoints {
				break outer
			}
			termProb := overlookProbability(cfg.MinPoints, available, drawnCandidates, numLevels)
			poolProb := 1.0
			if best := peekBest(pool); best != nil {
				poolProb = overlookProbability(int(best.ExpectedValue), available, drawnCandidates, numLevels)
			}
			if termProb <= cfg.ProbabilityThreshold || poolProb <= cfg.ProbabilityThreshold {
				break
			}

			for _, kind := range registry.All() {
				sample, ok := drawSample(kind, indexed, store, assignment, rng)
				drawnCandidates++
				if !ok {
					failedInARow++
					continue
				}
				params, ok := kind.Fit(sample, cfg.Epsilon, cfg.NormalThreshold)
				if !ok {
					failedInARow++
					continue
				}
				c := candidate.New(kind.Tag(), kind, params)
				if err := refine(c); err != nil {
					failedInARow++
					continue
				}
				if c.MaxBound < float64(cfg.MinPoints) {
					failedInARow++
					continue
				}
				pool = append(pool, c)
				failedInARow = 0
			}
			if failedInARow >= failedInARowCeiling {
				logger.Debugw("force exit", "drawn", drawnCandidates, "pool", len(pool))
				break outer
			}
		}

		if len(pool) == 0 {
			break
		}

		// Step 2: select best (spec.md §4.5).
		best, err := candidate.SelectBest(pool, ladder.K(), refine)
		if err != nil {
			return nil, errors.Wrap(err, "shapedetect: refining candidate")
		}
		if best == nil {
			break
		}

		// Step 3: rescore best on the global octree at widened tolerance
		// and apply the connected-component filter.
		extracted, ok := tryExtract(best, indexed, store, assignment, cfg, len(shapesFound))

		// Step 4: commit decision.
		commitProb := overlookProbability(int(best.ExpectedValue), available, drawnCandidates, numLevels)
		if !ok || commitProb > cfg.ProbabilityThreshold {
			pool = dropCandidate(pool, best)
			outerStalls++
			if outerStalls >= maxOuterStalls {
				return nil, ErrProgressStall
			}
			continue
		}

		for _, idx := range extracted.indices {
			assignment.Assign(idx, extracted.shapeID)
			ladder.MarkAssigned(idx)
		}
		shapesFound = append(shapesFound, DetectedShape{
			KindTag: extracted.kindTag,
			Params:  extracted.params,
			Indices: toOriginalIndices(store, extracted.indices),
		})
		logger.Infow("extracted shape", "kind", extracted.kindTag, "points", len(extracted.indices), "remaining", assignment.Available())

		pool = recomputePool(dropCandidate(pool, best), assignment, ladder, cfg)
		drawnCandidates = 0
		failedInARow = 0
		outerStalls = 0
	}

	return &Result{
		Shapes:            shapesFound,
		UnassignedIndices: toOriginalIndices(store, assignment.UnassignedIndices()),
	}, nil
}

// toOriginalIndices maps a sorted slice of engine-internal (possibly
// permuted) point indices back to their positions in the points slice
// Detect was called with, and re-sorts the result: the subset ladder's
// Fisher-Yates shuffle (subsetladder.Build) can permute the store, so
// ascending internal order does not imply ascending original order.
func toOriginalIndices(store *pointset.Store, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = store.OriginalIndex(idx)
	}
	sort.Ints(out)
	return out
}

// overlookProbability is spec.md §4.7's termination criterion:
// min(1, (1 - c/(3*P*L))^d), the probability that a shape of size c among P
// remaining points, invisible to any of d independent draws across an
// octree of L levels, actually exists but was never sampled.
func overlookProbability(c, totalAvailable, draws, numLevels int) float64 {
	if totalAvailable == 0 || numLevels == 0 {
		return 0
	}
	base := 1 - float64(c)/(3*float64(totalAvailable)*float64(numLevels))
	if base < 0 {
		base = 0
	}
	return math.Min(1, math.Pow(base, float64(draws)))
}

// peekBest returns the pool candidate with the highest expected value
// without mutating anything, for step 1's early-exit check. It returns nil
// for an empty pool.
func peekBest(pool []*candidate.Candidate) *candidate.Candidate {
	var best *candidate.Candidate
	for _, c := range pool {
		if best == nil || c.ExpectedValue > best.ExpectedValue {
			best = c
		}
	}
	return best
}

// dropCandidate removes target from pool by identity.
func dropCandidate(pool []*candidate.Candidate, target *candidate.Candidate) []*candidate.Candidate {
	out := pool[:0]
	for _, c := range pool {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

// recomputePool implements the second half of spec.md §4.7 step 4: for
// every surviving pool candidate, drop any indices the just-committed shape
// claimed, recompute its bounds against the shrunken available set, and
// discard it if its recomputed score no longer clears min_points.
func recomputePool(pool []*candidate.Candidate, assignment *pointset.Assignment, ladder *subsetladder.Ladder, cfg Config) []*candidate.Candidate {
	out := pool[:0]
	for _, c := range pool {
		kept := c.MatchedIndices[:0]
		for _, idx := range c.MatchedIndices {
			if !assignment.IsAssigned(idx) {
				kept = append(kept, idx)
			}
		}
		c.MatchedIndices = kept
		c.Score = len(kept)
		candidate.UpdateBounds(c, ladder.CumulativeAvailable(c.NextSubset), assignment.Available(), candidate.DefaultConfidenceZ)
		if c.Score < cfg.MinPoints {
			continue
		}
		out = append(out, c)
	}
	return out
}

// kindPredicate adapts a (Kind, Params) pair to octree.Predicate without
// coupling the octree package to the shapes package.
type kindPredicate struct {
	kind   shapes.Kind
	params shapes.Params
}

func (kp kindPredicate) SignedDistance(p r3.Vector) float64 {
	return kp.kind.SignedDistance(kp.params, p)
}

func (kp kindPredicate) NormalDeviation(normal, p r3.Vector) float64 {
	return kp.kind.NormalDeviation(kp.params, normal, p)
}

// drawSample picks a random still-unassigned point anywhere in the store as
// a seed, a random level of the global indexed octree, and draws kind's
// minimal sample size of distinct unassigned points from the cell at that
// level containing the seed (spec.md §4.7 step 1, §9's
// selectRandomOctreeLevel).
func drawSample(
	kind shapes.Kind,
	indexed *octree.Tree,
	store *pointset.Store,
	assignment *pointset.Assignment,
	rng *rand.Rand,
) ([]pointset.Point, bool) {
	seedIdx, ok := drawSeed(store, assignment, rng)
	if !ok {
		return nil, false
	}

	level := rng.Intn(indexed.MaxLevel() + 1)
	sampleIdx, ok := indexed.DrawSampleFromCell(store.At(seedIdx).Position, level, kind.MinimalSampleSize(), assignment, rng)
	if !ok {
		return nil, false
	}

	sample := make([]pointset.Point, len(sampleIdx))
	for i, gi := range sampleIdx {
		sample[i] = store.At(gi)
	}
	return sample, true
}

// drawSeed picks a uniformly random still-unassigned index from the whole
// store, by rejection sampling.
func drawSeed(store *pointset.Store, assignment *pointset.Assignment, rng *rand.Rand) (int, bool) {
	n := store.Len()
	attempts := 4*assignment.Available() + 16
	for attempt := 0; attempt < attempts; attempt++ {
		idx := rng.Intn(n)
		if !assignment.IsAssigned(idx) {
			return idx, true
		}
	}
	return -1, false
}

// makeRefiner returns a candidate.Refiner that scores against the ladder
// rung c has not yet been tested against and updates its bounds off the
// cumulative availability scored so far versus the whole remaining
// population.
func makeRefiner(ladder *subsetladder.Ladder, assignment *pointset.Assignment, cfg Config) candidate.Refiner {
	return func(c *candidate.Candidate) error {
		s := c.NextSubset
		if s >= ladder.K() {
			return errors.New("shapedetect: candidate already scored against every subset")
		}
		pred := kindPredicate{kind: c.Kind, params: c.Params}
		_, matched := ladder.Tree(s).Score(pred, assignment, cfg.Epsilon, cfg.NormalThreshold)
		c.RecordSubsetResult(len(matched), matched)
		cumAvailable := ladder.CumulativeAvailable(c.NextSubset)
		candidate.UpdateBounds(c, cumAvailable, assignment.Available(), candidate.DefaultConfidenceZ)
		return nil
	}
}

// extraction bundles what tryExtract found so the caller can commit it to
// the assignment map only after every check has passed.
type extraction struct {
	shapeID int
	kindTag string
	params  shapes.Params
	indices []int
}

// tryExtract re-verifies best against the full indexed octree at a widened
// tolerance (spec.md §4.7 step 3's global verification pass), applies the
// connected-component filter, and reports the surviving inlier set if it
// still clears cfg.MinPoints.
func tryExtract(best *candidate.Candidate, indexed *octree.Tree, store *pointset.Store, assignment *pointset.Assignment, cfg Config, shapeID int) (extraction, bool) {
	pred := kindPredicate{kind: best.Kind, params: best.Params}
	globalEpsilon := cfg.Epsilon * cfg.GlobalToleranceFactor
	_, matched := indexed.Score(pred, assignment, globalEpsilon, cfg.NormalThreshold)
	if len(matched) < cfg.MinPoints {
		return extraction{}, false
	}

	pts2D := make([]components.Point2D, len(matched))
	for i, idx := range matched {
		u, v := best.Kind.ParametricCoords(best.Params, store.At(idx).Position)
		pts2D[i] = components.Point2D{Index: idx, U: u, V: v}
	}
	filtered := components.Filter(pts2D, cfg.ClusterEpsilon)
	if len(filtered) < cfg.MinPoints {
		return extraction{}, false
	}

	return extraction{shapeID: shapeID, kindTag: best.KindTag, params: best.Params, indices: filtered}, true
}
