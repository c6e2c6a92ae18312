package shapes

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/shapedetect/pointset"
)

func cylinderPoint(axisPoint, axis r3.Vector, radius, along, angle float64) pointset.Point {
	e1 := stableOrthogonal(axis).Normalize()
	e2 := axis.Cross(e1)
	radial := e1.Mul(math.Cos(angle)).Add(e2.Mul(math.Sin(angle)))
	pos := axisPoint.Add(axis.Mul(along)).Add(radial.Mul(radius))
	return pointset.Point{Position: pos, Normal: radial}
}

func TestCylinderFitRecoversKnownCylinder(t *testing.T) {
	k := NewCylinder()
	axis := r3.Vector{Z: 1}
	axisPoint := r3.Vector{X: 1, Y: 1}
	radius := 0.5

	sample := []pointset.Point{
		cylinderPoint(axisPoint, axis, radius, 0, 0),
		cylinderPoint(axisPoint, axis, radius, 2, math.Pi/2),
	}
	params, ok := k.Fit(sample, 1e-6, 0.1)
	test.That(t, ok, test.ShouldBeTrue)

	cp := params.(CylinderParams)
	test.That(t, math.Abs(cp.Axis.Dot(axis)), test.ShouldAlmostEqual, 1, 1e-6)
	test.That(t, cp.Radius, test.ShouldAlmostEqual, radius, 1e-6)
}

func TestCylinderFitRejectsParallelNormals(t *testing.T) {
	k := NewCylinder()
	sample := []pointset.Point{
		{Position: r3.Vector{X: 1}, Normal: r3.Vector{X: 1}},
		{Position: r3.Vector{X: 1, Z: 1}, Normal: r3.Vector{X: 1}},
	}
	_, ok := k.Fit(sample, 1e-6, 0.1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestCylinderParametricCoordsAxialComponent(t *testing.T) {
	k := cylinder{}
	params := CylinderParams{AxisPoint: r3.Vector{}, Axis: r3.Vector{Z: 1}, Radius: 1}
	_, v1 := k.ParametricCoords(params, r3.Vector{X: 1, Z: 0})
	_, v2 := k.ParametricCoords(params, r3.Vector{X: 1, Z: 5})
	test.That(t, v2-v1, test.ShouldAlmostEqual, 5, 1e-9)
}
