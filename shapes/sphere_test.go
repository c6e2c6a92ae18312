package shapes

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/shapedetect/pointset"
)

func spherePoint(center r3.Vector, radius, theta, phi float64) pointset.Point {
	dir := r3.Vector{
		X: math.Sin(phi) * math.Cos(theta),
		Y: math.Sin(phi) * math.Sin(theta),
		Z: math.Cos(phi),
	}
	return pointset.Point{Position: center.Add(dir.Mul(radius)), Normal: dir}
}

func TestSphereFitRecoversKnownSphere(t *testing.T) {
	k := NewSphere()
	center := r3.Vector{X: 1, Y: 2, Z: 3}
	radius := 2.0
	sample := []pointset.Point{
		spherePoint(center, radius, 0, math.Pi/2),
		spherePoint(center, radius, math.Pi/2, math.Pi/2),
		spherePoint(center, radius, math.Pi, math.Pi/2),
		spherePoint(center, radius, 0, 0.1),
	}

	params, ok := k.Fit(sample, 1e-6, 0.1)
	test.That(t, ok, test.ShouldBeTrue)

	sp := params.(SphereParams)
	test.That(t, sp.Center.Distance(center), test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, sp.Radius, test.ShouldAlmostEqual, radius, 1e-6)
}

func TestSphereSignedDistance(t *testing.T) {
	k := NewSphere()
	params := SphereParams{Center: r3.Vector{}, Radius: 1}
	test.That(t, k.SignedDistance(params, r3.Vector{X: 2}), test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, k.SignedDistance(params, r3.Vector{X: 1}), test.ShouldAlmostEqual, 0, 1e-9)
}
