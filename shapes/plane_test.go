package shapes

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/shapedetect/pointset"
)

func TestPlaneFitRecoversKnownPlane(t *testing.T) {
	k := NewPlane()
	sample := []pointset.Point{
		{Position: r3.Vector{X: 0, Y: 0, Z: 1}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 1, Y: 0, Z: 1}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 0, Y: 1, Z: 1}, Normal: r3.Vector{Z: 1}},
	}
	params, ok := k.Fit(sample, 1e-6, 0.1)
	test.That(t, ok, test.ShouldBeTrue)

	test.That(t, k.SignedDistance(params, r3.Vector{X: 5, Y: 5, Z: 1}), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, k.SignedDistance(params, r3.Vector{X: 0, Y: 0, Z: 2}), test.ShouldAlmostEqual, 1, 1e-9)
}

func TestPlaneFitRejectsCollinearSample(t *testing.T) {
	k := NewPlane()
	sample := []pointset.Point{
		{Position: r3.Vector{X: 0, Y: 0, Z: 0}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 1, Y: 0, Z: 0}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 2, Y: 0, Z: 0}, Normal: r3.Vector{Z: 1}},
	}
	_, ok := k.Fit(sample, 1e-6, 0.1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestPlaneNormalDeviation(t *testing.T) {
	k := NewPlane()
	params := PlaneParams{Normal: r3.Vector{Z: 1}, D: 0}
	test.That(t, k.NormalDeviation(params, r3.Vector{Z: 1}, r3.Vector{}), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, k.NormalDeviation(params, r3.Vector{X: 1}, r3.Vector{}), test.ShouldAlmostEqual, 1, 1e-9)
}

func TestPlaneParametricCoordsAreMetric(t *testing.T) {
	k := NewPlane()
	sample := []pointset.Point{
		{Position: r3.Vector{X: 0, Y: 0, Z: 0}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 1, Y: 0, Z: 0}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 0, Y: 1, Z: 0}, Normal: r3.Vector{Z: 1}},
	}
	params, ok := k.Fit(sample, 1e-6, 0.1)
	test.That(t, ok, test.ShouldBeTrue)

	u1, v1 := k.ParametricCoords(params, r3.Vector{X: 3, Y: 4, Z: 0})
	u2, v2 := k.ParametricCoords(params, r3.Vector{X: 6, Y: 8, Z: 0})
	planar := r3.Vector{X: 3, Y: 4, Z: 0}.Norm()
	got := r3.Vector{X: u2 - u1, Y: v2 - v1, Z: 0}.Norm()
	test.That(t, got, test.ShouldAlmostEqual, planar, 1e-9)
}
