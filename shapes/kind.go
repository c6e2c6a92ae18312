// Package shapes is the shape-kind plug-in registry: the fit/score/refine
// contract spec.md §4.3 asks the core to be generic over, plus the five
// concrete primitive kinds (plane, sphere, cylinder, cone, torus) shipped
// with this module. The core (candidate, engine) depends only on Kind; it
// never switches on a concrete kind type.
package shapes

import (
	"github.com/golang/geo/r3"

	"go.viam.com/shapedetect/pointset"
)

// Params is an opaque, kind-specific parameter bundle. Only the Kind that
// produced it knows how to interpret it.
type Params interface{}

// Kind is the plug-in contract a primitive family implements. All geometric
// math for the family — fitting, distance, normal deviation, and the
// parametric coordinates the connected-component filter bins on — lives
// behind this interface (spec.md §4.3).
type Kind interface {
	// Tag names the kind (e.g. "plane"), used in Candidate.KindTag and in
	// logging.
	Tag() string

	// MinimalSampleSize is the number of oriented points Fit needs.
	MinimalSampleSize() int

	// Fit attempts to build Params from exactly MinimalSampleSize() sample
	// points. It reports false for a degenerate sample (e.g. collinear
	// points for a plane) or one whose own points don't satisfy epsilon and
	// normalThreshold against the resulting fit.
	Fit(sample []pointset.Point, epsilon, normalThreshold float64) (Params, bool)

	// SignedDistance is the point-to-surface distance used for inlier
	// testing and octree-cell pruning.
	SignedDistance(params Params, p r3.Vector) float64

	// NormalDeviation returns a value in [0, 2], 0 when normal exactly
	// matches the surface's expected normal at p and larger as it departs;
	// candidates reject points where this exceeds normalThreshold.
	NormalDeviation(params Params, normal, p r3.Vector) float64

	// ParametricCoords maps p (assumed on or near the surface) to a 2D
	// coordinate that is locally metric within a neighborhood of size
	// cluster_epsilon, for the connected-component filter to bin on.
	ParametricCoords(params Params, p r3.Vector) (u, v float64)
}

// Registry is an ordered, named set of Kinds the engine draws candidates
// from.
type Registry struct {
	kinds []Kind
}

// NewRegistry builds a Registry from kinds, in the order given. It is the
// caller's responsibility to pass at least one kind; an empty registry is
// caught by the engine as ErrNoKinds.
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{kinds: make([]Kind, len(kinds))}
	copy(r.kinds, kinds)
	return r
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int { return len(r.kinds) }

// All returns every registered kind, in registration order.
func (r *Registry) All() []Kind { return r.kinds }

// DefaultKinds returns a fresh registry-ready slice of the five built-in
// primitive kinds, in a fixed order: plane, cylinder, cone, sphere, torus.
func DefaultKinds() []Kind {
	return []Kind{
		NewPlane(),
		NewCylinder(),
		NewCone(),
		NewSphere(),
		NewTorus(),
	}
}

// validateSample re-checks every point of sample against params using the
// kind's own SignedDistance and NormalDeviation, the generic half of the
// Fit contract every concrete kind delegates to (spec.md §4.3: "rejects a
// sample whose own points don't satisfy epsilon/normal_threshold against
// the fit").
func validateSample(k Kind, params Params, sample []pointset.Point, epsilon, normalThreshold float64) bool {
	for _, p := range sample {
		if abs(k.SignedDistance(params, p.Position)) > epsilon {
			return false
		}
		if k.NormalDeviation(params, p.Normal, p.Position) > normalThreshold {
			return false
		}
	}
	return true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
