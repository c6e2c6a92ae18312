package shapedetect

import "github.com/pkg/errors"

// Config holds every tunable of the detection run (spec.md §5), modeled on
// config.Config's plain JSON-tagged struct with a Validate method.
type Config struct {
	// Epsilon is the maximum signed distance from a shape's surface a point
	// may have and still count as an inlier.
	Epsilon float64 `json:"epsilon"`
	// NormalThreshold bounds how far a point's normal may deviate from a
	// shape's expected surface normal and still count as an inlier.
	NormalThreshold float64 `json:"normal_threshold"`
	// ClusterEpsilon sizes the connected-component filter's grid cells in
	// a candidate's parametric coordinate space.
	ClusterEpsilon float64 `json:"cluster_epsilon"`
	// MinPoints is the minimum number of inliers a shape must have to be
	// extracted.
	MinPoints int `json:"min_points"`
	// ProbabilityThreshold is the overlook-probability target the
	// termination criterion tests against; detection stops once the
	// probability of having overlooked a shape of at least MinPoints
	// points drops to this value or below.
	ProbabilityThreshold float64 `json:"probability_threshold"`
	// GlobalToleranceFactor scales Epsilon when the selected candidate is
	// re-verified against the full indexed octree before extraction. The
	// default of 3 follows the original algorithm's global verification
	// pass; set to 1 to disable the widening (spec.md §9 Open Question).
	GlobalToleranceFactor float64 `json:"global_tolerance_factor"`
	// Seed seeds the engine's owned PRNG. Two runs with the same Config,
	// Seed and input produce identical output.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns sensible defaults for a point cloud whose
// coordinates are in meters, following the parameter magnitudes the
// original algorithm's authors report for that scale.
func DefaultConfig() Config {
	return Config{
		Epsilon:               0.01,
		NormalThreshold:       0.9,
		ClusterEpsilon:        0.02,
		MinPoints:             200,
		ProbabilityThreshold:  0.01,
		GlobalToleranceFactor: 3,
		Seed:                  1,
	}
}

// Validate reports whether every field is in range, matching the
// config.(*Remote).Validate style of returning the first problem found.
func (c Config) Validate() error {
	if c.Epsilon <= 0 {
		return errors.New("shapedetect: epsilon must be positive")
	}
	if c.NormalThreshold < 0 || c.NormalThreshold > 2 {
		return errors.New("shapedetect: normal_threshold must be in [0, 2]")
	}
	if c.ClusterEpsilon <= 0 {
		return errors.New("shapedetect: cluster_epsilon must be positive")
	}
	if c.MinPoints < 1 {
		return errors.New("shapedetect: min_points must be at least 1")
	}
	if c.ProbabilityThreshold <= 0 || c.ProbabilityThreshold > 1 {
		return errors.New("shapedetect: probability_threshold must be in (0, 1]")
	}
	if c.GlobalToleranceFactor < 1 {
		return errors.New("shapedetect: global_tolerance_factor must be at least 1")
	}
	return nil
}
