package shapes

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/shapedetect/pointset"
)

// CylinderParams is an infinite right circular cylinder: the set of points
// at distance Radius from the line through AxisPoint in direction Axis
// (unit).
type CylinderParams struct {
	AxisPoint r3.Vector
	Axis      r3.Vector
	Radius    float64
}

type cylinder struct{}

// NewCylinder returns the cylinder shape kind. Two oriented points suffice:
// both normals are perpendicular to the axis, so their cross product gives
// the axis direction; projecting onto the plane perpendicular to that axis
// reduces the rest to a 2D circle-through-two-points-with-known-radial-
// directions solve.
func NewCylinder() Kind { return cylinder{} }

func (cylinder) Tag() string            { return "cylinder" }
func (cylinder) MinimalSampleSize() int { return 2 }

func (k cylinder) Fit(sample []pointset.Point, epsilon, normalThreshold float64) (Params, bool) {
	p1, p2 := sample[0].Position, sample[1].Position
	n1, n2 := unitOrZero(sample[0].Normal), unitOrZero(sample[1].Normal)

	axis := n1.Cross(n2)
	if axis.Norm() < 1e-9 {
		return nil, false // parallel normals, axis undetermined
	}
	axis = axis.Normalize()

	e1 := stableOrthogonal(axis).Normalize()
	e2 := axis.Cross(e1)

	proj2D := func(v r3.Vector) (float64, float64) { return v.Dot(e1), v.Dot(e2) }
	q1x, q1y := proj2D(p1)
	q2x, q2y := proj2D(p2)
	n1x, n1y := proj2D(n1)
	n2x, n2y := proj2D(n2)

	// Solve r*(n2'-n1') = (q2-q1) by least squares over the 2 components.
	dx, dy := n2x-n1x, n2y-n1y
	bx, by := q2x-q1x, q2y-q1y
	denom := dx*dx + dy*dy
	if denom < 1e-12 {
		return nil, false
	}
	r := (dx*bx + dy*by) / denom

	c2dx, c2dy := q1x-r*n1x, q1y-r*n1y
	axisPoint := e1.Mul(c2dx).Add(e2.Mul(c2dy))

	radius := math.Abs(r)
	if radius < 1e-9 {
		return nil, false
	}
	params := CylinderParams{AxisPoint: axisPoint, Axis: axis, Radius: radius}

	if !validateSample(k, params, sample, epsilon, normalThreshold) {
		return nil, false
	}
	return params, true
}

// radial returns the component of (p-AxisPoint) perpendicular to Axis.
func (cylinder) radial(cp CylinderParams, p r3.Vector) r3.Vector {
	rel := p.Sub(cp.AxisPoint)
	axial := rel.Dot(cp.Axis)
	return rel.Sub(cp.Axis.Mul(axial))
}

func (k cylinder) SignedDistance(params Params, p r3.Vector) float64 {
	cp := params.(CylinderParams)
	return k.radial(cp, p).Norm() - cp.Radius
}

func (k cylinder) NormalDeviation(params Params, normal, p r3.Vector) float64 {
	cp := params.(CylinderParams)
	radial := unitOrZero(k.radial(cp, p))
	return 1 - math.Abs(radial.Dot(unitOrZero(normal)))
}

// ParametricCoords unrolls the cylinder into a flat strip: u is arc length
// around the axis, v is distance along it. Both are exactly metric.
func (k cylinder) ParametricCoords(params Params, p r3.Vector) (float64, float64) {
	cp := params.(CylinderParams)
	rel := p.Sub(cp.AxisPoint)
	axial := rel.Dot(cp.Axis)
	rad := k.radial(cp, p)

	e1 := stableOrthogonal(cp.Axis).Normalize()
	e2 := cp.Axis.Cross(e1)
	angle := math.Atan2(rad.Dot(e2), rad.Dot(e1))
	return cp.Radius * angle, axial
}
