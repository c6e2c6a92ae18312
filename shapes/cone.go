package shapes

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/shapedetect/pointset"
)

// ConeParams is a right circular cone: the set of points p whose direction
// from Apex makes angle HalfAngle with Axis (unit).
type ConeParams struct {
	Apex      r3.Vector
	Axis      r3.Vector
	HalfAngle float64
}

type cone struct{}

// NewCone returns the cone shape kind. The tangent plane to a cone at any
// surface point contains the apex, so three oriented points pin the apex
// down as the intersection of their three tangent planes; the axis and
// half-angle then follow from requiring every sample generator to make the
// same angle with the axis.
func NewCone() Kind { return cone{} }

func (cone) Tag() string            { return "cone" }
func (cone) MinimalSampleSize() int { return 3 }

func (k cone) Fit(sample []pointset.Point, epsilon, normalThreshold float64) (Params, bool) {
	a := mat.NewDense(3, 3, nil)
	b := mat.NewVecDense(3, nil)
	for i, s := range sample {
		n := unitOrZero(s.Normal)
		a.SetRow(i, []float64{n.X, n.Y, n.Z})
		b.SetVec(i, n.Dot(s.Position))
	}
	var lu mat.LU
	lu.Factorize(a)
	if math.Abs(lu.Det()) < 1e-9 {
		return nil, false // near-coincident tangent planes, apex undetermined
	}
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, false
	}
	apex := r3.Vector{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}

	g := make([]r3.Vector, len(sample))
	for i, s := range sample {
		gen := s.Position.Sub(apex)
		if gen.Norm() < 1e-9 {
			return nil, false // sample point coincides with the apex
		}
		g[i] = gen.Normalize()
	}

	axis := g[0].Sub(g[1]).Cross(g[1].Sub(g[2]))
	if axis.Norm() < 1e-9 {
		return nil, false // generators coplanar, axis undetermined
	}
	axis = axis.Normalize()

	c := (g[0].Dot(axis) + g[1].Dot(axis) + g[2].Dot(axis)) / 3
	if c < 0 {
		axis = axis.Mul(-1)
		c = -c
	}
	c = clamp(c, -1, 1)
	halfAngle := math.Acos(c)
	if halfAngle < 1e-6 || halfAngle > math.Pi/2-1e-6 {
		return nil, false // degenerate (near-cylinder or near-plane) cone
	}
	params := ConeParams{Apex: apex, Axis: axis, HalfAngle: halfAngle}

	if !validateSample(k, params, sample, epsilon, normalThreshold) {
		return nil, false
	}
	return params, true
}

// meridian resolves p into the cone's 2D meridian-plane coordinates: t is
// signed distance along the axis from the apex, r is distance from the
// axis, and radialDir is the in-plane unit vector from the axis to p.
func meridian(cp ConeParams, p r3.Vector) (t, r float64, radialDir r3.Vector) {
	rel := p.Sub(cp.Apex)
	t = rel.Dot(cp.Axis)
	radial := rel.Sub(cp.Axis.Mul(t))
	r = radial.Norm()
	radialDir = unitOrZero(radial)
	return t, r, radialDir
}

// SignedDistance projects onto the cone's meridian half-plane, where the
// surface is the ray r = t*tan(HalfAngle), and returns the perpendicular
// distance to the line through that ray.
func (cone) SignedDistance(params Params, p r3.Vector) float64 {
	cp := params.(ConeParams)
	t, r, _ := meridian(cp, p)
	return r*math.Cos(cp.HalfAngle) - t*math.Sin(cp.HalfAngle)
}

func (cone) NormalDeviation(params Params, normal, p r3.Vector) float64 {
	cp := params.(ConeParams)
	_, _, radialDir := meridian(cp, p)
	expected := cp.Axis.Mul(-math.Sin(cp.HalfAngle)).Add(radialDir.Mul(math.Cos(cp.HalfAngle)))
	return 1 - math.Abs(expected.Dot(unitOrZero(normal)))
}

// ParametricCoords unrolls the cone's lateral surface: v is slant distance
// from the apex, u is arc length scaled by sin(HalfAngle) — the standard
// cone-unrolling factor that keeps the flattened sector locally metric.
func (cone) ParametricCoords(params Params, p r3.Vector) (float64, float64) {
	cp := params.(ConeParams)
	t, r, radialDir := meridian(cp, p)
	slant := math.Hypot(t, r)

	e1 := stableOrthogonal(cp.Axis).Normalize()
	e2 := cp.Axis.Cross(e1)
	azimuth := math.Atan2(radialDir.Dot(e2), radialDir.Dot(e1))
	return slant * azimuth * math.Sin(cp.HalfAngle), slant
}
