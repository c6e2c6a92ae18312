package shapes

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/shapedetect/pointset"
)

// PlaneParams is a plane in Hessian normal form: {x : Normal.Dot(x) + D == 0},
// Normal a unit vector.
type PlaneParams struct {
	Normal r3.Vector
	D      float64
	// u, v span the plane, used only to fix a stable parametric frame.
	u, v r3.Vector
}

type plane struct{}

// NewPlane returns the plane shape kind, grounded on the least-squares
// plane fit in vision/segmentation/plane_segmentation.go, simplified to the
// exact 3-point minimal case a RANSAC candidate draws.
func NewPlane() Kind { return plane{} }

func (plane) Tag() string            { return "plane" }
func (plane) MinimalSampleSize() int { return 3 }

func (k plane) Fit(sample []pointset.Point, epsilon, normalThreshold float64) (Params, bool) {
	p0, p1, p2 := sample[0].Position, sample[1].Position, sample[2].Position
	v1 := p1.Sub(p0)
	v2 := p2.Sub(p0)
	cross := v1.Cross(v2)
	if cross.Norm() < 1e-12 {
		return nil, false // collinear sample, no unique plane
	}
	normal := cross.Normalize()
	d := -normal.Dot(p0)

	u := stableOrthogonal(normal).Normalize()
	v := normal.Cross(u)
	params := PlaneParams{Normal: normal, D: d, u: u, v: v}

	if !validateSample(k, params, sample, epsilon, normalThreshold) {
		return nil, false
	}
	return params, true
}

func (plane) SignedDistance(params Params, p r3.Vector) float64 {
	pl := params.(PlaneParams)
	return pl.Normal.Dot(p) + pl.D
}

func (plane) NormalDeviation(params Params, normal, p r3.Vector) float64 {
	pl := params.(PlaneParams)
	n := unitOrZero(normal)
	return 1 - math.Abs(n.Dot(pl.Normal))
}

func (plane) ParametricCoords(params Params, p r3.Vector) (float64, float64) {
	pl := params.(PlaneParams)
	return p.Dot(pl.u), p.Dot(pl.v)
}

// stableOrthogonal returns a vector not parallel to n, for building an
// orthonormal in-plane frame.
func stableOrthogonal(n r3.Vector) r3.Vector {
	axis := r3.Vector{X: 1, Y: 0, Z: 0}
	if math.Abs(n.X) > 0.9 {
		axis = r3.Vector{X: 0, Y: 1, Z: 0}
	}
	return axis.Cross(n)
}

func unitOrZero(v r3.Vector) r3.Vector {
	norm := v.Norm()
	if norm < 1e-12 {
		return v
	}
	return v.Mul(1 / norm)
}
