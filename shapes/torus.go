package shapes

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/shapedetect/pointset"
)

// TorusParams is a torus of revolution: the tube of radius MinorRadius
// swept at distance MajorRadius around Center along Axis (unit).
type TorusParams struct {
	Center      r3.Vector
	Axis        r3.Vector
	MajorRadius float64
	MinorRadius float64
}

type torus struct{}

// NewTorus returns the torus shape kind. Every surface normal of a torus
// (like a cylinder's or cone's) lies in its point's meridian plane, so it
// has zero component along the local circumferential tangent axis ×
// (p-center); with an approximate center (the sample centroid), that gives
// one linear constraint on the axis per point, solved by SVD. Major and
// minor radius then follow from a linear least-squares fit in the
// projected meridian plane.
func NewTorus() Kind { return torus{} }

func (torus) Tag() string            { return "torus" }
func (torus) MinimalSampleSize() int { return 4 }

func (k torus) Fit(sample []pointset.Point, epsilon, normalThreshold float64) (Params, bool) {
	n := len(sample)
	centroid := r3.Vector{}
	for _, s := range sample {
		centroid = centroid.Add(s.Position)
	}
	centroid = centroid.Mul(1 / float64(n))

	constraints := mat.NewDense(n, 3, nil)
	for i, s := range sample {
		rel := s.Position.Sub(centroid)
		row := rel.Cross(unitOrZero(s.Normal))
		constraints.SetRow(i, []float64{row.X, row.Y, row.Z})
	}
	var svd mat.SVD
	if !svd.Factorize(constraints, mat.SVDFull) {
		return nil, false
	}
	var v mat.Dense
	svd.VTo(&v)
	axis := r3.Vector{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)}
	if axis.Norm() < 1e-9 {
		return nil, false
	}
	axis = axis.Normalize()

	e1 := stableOrthogonal(axis).Normalize()
	e2 := axis.Cross(e1)

	// Solve x_i^2+y_i^2 = 2*R*x_i + K for (R, K) where x_i is radial
	// distance from centroid and y_i is axial offset, both in the plane
	// perpendicular to axis through centroid.
	a := mat.NewDense(n, 2, nil)
	b := mat.NewVecDense(n, nil)
	for i, s := range sample {
		rel := s.Position.Sub(centroid)
		axial := rel.Dot(axis)
		radial := rel.Sub(axis.Mul(axial))
		radialMag := math.Hypot(radial.Dot(e1), radial.Dot(e2))
		a.SetRow(i, []float64{2 * radialMag, 1})
		b.SetVec(i, radialMag*radialMag+axial*axial)
	}
	var qr mat.QR
	qr.Factorize(a)
	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		return nil, false
	}
	major, kVal := x.AtVec(0), x.AtVec(1)
	minorSq := kVal + major*major
	if major <= 1e-9 || minorSq <= 1e-12 {
		return nil, false
	}
	params := TorusParams{Center: centroid, Axis: axis, MajorRadius: major, MinorRadius: math.Sqrt(minorSq)}

	if !validateSample(k, params, sample, epsilon, normalThreshold) {
		return nil, false
	}
	return params, true
}

// tubeCenter returns the point on the torus's central circle nearest p.
func tubeCenter(tp TorusParams, p r3.Vector) r3.Vector {
	rel := p.Sub(tp.Center)
	axial := rel.Dot(tp.Axis)
	radial := unitOrZero(rel.Sub(tp.Axis.Mul(axial)))
	return tp.Center.Add(radial.Mul(tp.MajorRadius))
}

func (torus) SignedDistance(params Params, p r3.Vector) float64 {
	tp := params.(TorusParams)
	return p.Sub(tubeCenter(tp, p)).Norm() - tp.MinorRadius
}

func (torus) NormalDeviation(params Params, normal, p r3.Vector) float64 {
	tp := params.(TorusParams)
	expected := unitOrZero(p.Sub(tubeCenter(tp, p)))
	return 1 - math.Abs(expected.Dot(unitOrZero(normal)))
}

// ParametricCoords uses (major-circle arc length, tube arc length), both
// exactly metric on the torus surface.
func (torus) ParametricCoords(params Params, p r3.Vector) (float64, float64) {
	tp := params.(TorusParams)
	rel := p.Sub(tp.Center)
	axial := rel.Dot(tp.Axis)
	radial := rel.Sub(tp.Axis.Mul(axial))
	radialMag := radial.Norm()

	e1 := stableOrthogonal(tp.Axis).Normalize()
	e2 := tp.Axis.Cross(e1)
	azimuth := math.Atan2(radial.Dot(e2), radial.Dot(e1))
	tubeAngle := math.Atan2(axial, radialMag-tp.MajorRadius)
	return tp.MajorRadius * azimuth, tp.MinorRadius * tubeAngle
}
