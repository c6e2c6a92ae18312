package shapes

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/shapedetect/pointset"
)

// SphereParams is a sphere with the given center and radius.
type SphereParams struct {
	Center r3.Vector
	Radius float64
}

type sphere struct{}

// NewSphere returns the sphere shape kind, grounded on the linear
// sphere-through-4-points solve in applesauce/apple_pose/sphere_fit.go,
// using gonum for the 4x4 linear system.
func NewSphere() Kind { return sphere{} }

func (sphere) Tag() string            { return "sphere" }
func (sphere) MinimalSampleSize() int { return 4 }

// Fit solves the algebraic sphere system x*A + y*B + z*C + D =
// -(x^2+y^2+z^2) for the 4-point minimal sample via QR, then recovers
// center = (-A/2,-B/2,-C/2) and radius from the coefficients.
func (sphere) Fit(sample []pointset.Point, epsilon, normalThreshold float64) (Params, bool) {
	n := len(sample)
	a := mat.NewDense(n, 4, nil)
	b := mat.NewVecDense(n, nil)
	for i, s := range sample {
		p := s.Position
		a.SetRow(i, []float64{p.X, p.Y, p.Z, 1})
		b.SetVec(i, -(p.X*p.X + p.Y*p.Y + p.Z*p.Z))
	}

	var qr mat.QR
	qr.Factorize(a)
	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		return nil, false // near-degenerate sample, no unique sphere
	}

	coeffA, coeffB, coeffC, coeffD := x.AtVec(0), x.AtVec(1), x.AtVec(2), x.AtVec(3)
	center := r3.Vector{X: -coeffA / 2, Y: -coeffB / 2, Z: -coeffC / 2}
	r2 := coeffA*coeffA/4 + coeffB*coeffB/4 + coeffC*coeffC/4 - coeffD
	if r2 <= 1e-12 {
		return nil, false
	}
	params := SphereParams{Center: center, Radius: math.Sqrt(r2)}

	if !validateSample(sphere{}, params, sample, epsilon, normalThreshold) {
		return nil, false
	}
	return params, true
}

func (sphere) SignedDistance(params Params, p r3.Vector) float64 {
	sp := params.(SphereParams)
	return p.Sub(sp.Center).Norm() - sp.Radius
}

func (sphere) NormalDeviation(params Params, normal, p r3.Vector) float64 {
	sp := params.(SphereParams)
	radial := unitOrZero(p.Sub(sp.Center))
	return 1 - math.Abs(radial.Dot(unitOrZero(normal)))
}

// ParametricCoords uses a radius-scaled spherical (azimuth, polar)
// coordinate so a small patch of surface stays close to locally metric,
// matching spec.md §4.6's "need not be conformal, only locally metric
// within cluster_epsilon".
func (sphere) ParametricCoords(params Params, p r3.Vector) (float64, float64) {
	sp := params.(SphereParams)
	rel := p.Sub(sp.Center)
	theta := math.Atan2(rel.Y, rel.X)
	phi := math.Acos(clamp(rel.Z/sp.Radius, -1, 1))
	return sp.Radius * theta, sp.Radius * phi
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
