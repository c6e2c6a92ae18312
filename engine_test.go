package shapedetect

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/shapedetect/candidate"
	"go.viam.com/shapedetect/internal/logging"
	"go.viam.com/shapedetect/pointset"
	"go.viam.com/shapedetect/shapes"
)

// planeCloud generates an n x n grid of points on the z=0 plane, spaced
// 0.05 apart, all with unit +Z normals.
func planeCloud(n int) []pointset.Point {
	pts := make([]pointset.Point, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := float64(i) * 0.05
			y := float64(j) * 0.05
			pts = append(pts, pointset.Point{
				Position: r3.Vector{X: x, Y: y, Z: 0},
				Normal:   r3.Vector{Z: 1},
			})
		}
	}
	return pts
}

func TestDetectRejectsEmptyInput(t *testing.T) {
	registry := shapes.NewRegistry(shapes.NewPlane())
	_, err := Detect(nil, registry, DefaultConfig(), nil)
	test.That(t, errors.Is(err, ErrEmptyInput), test.ShouldBeTrue)
}

func TestDetectRejectsEmptyRegistry(t *testing.T) {
	pts := planeCloud(3)
	_, err := Detect(pts, shapes.NewRegistry(), DefaultConfig(), nil)
	test.That(t, errors.Is(err, ErrNoKinds), test.ShouldBeTrue)
}

func TestDetectFindsSinglePlane(t *testing.T) {
	pts := planeCloud(50) // 2500 points, all coplanar
	registry := shapes.NewRegistry(shapes.NewPlane())

	cfg := DefaultConfig()
	cfg.Epsilon = 0.01
	// The grid spacing is 0.05; the connected-component cells must be at
	// least that wide for the grid to form one component.
	cfg.ClusterEpsilon = 0.1
	cfg.MinPoints = 500
	cfg.Seed = 7

	result, err := Detect(pts, registry, cfg, logging.NewBlankLogger("test"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.Shapes), test.ShouldBeGreaterThanOrEqualTo, 1)

	plane := result.Shapes[0]
	test.That(t, plane.KindTag, test.ShouldEqual, "plane")
	test.That(t, len(plane.Indices), test.ShouldBeGreaterThanOrEqualTo, cfg.MinPoints)

	pp := plane.Params.(shapes.PlaneParams)
	test.That(t, math.Abs(pp.Normal.Z), test.ShouldBeGreaterThan, 0.99)
}

func TestOverlookProbabilityDecreasesWithDraws(t *testing.T) {
	p0 := overlookProbability(200, 10000, 1, 8)
	p1 := overlookProbability(200, 10000, 50, 8)
	test.That(t, p1, test.ShouldBeLessThan, p0)
}

func TestPeekBestPicksHighestExpectedValue(t *testing.T) {
	test.That(t, peekBest(nil), test.ShouldBeNil)

	plane := shapes.NewPlane()
	low := candidate.New("plane", plane, nil)
	low.ExpectedValue = 10
	mid := candidate.New("plane", plane, nil)
	mid.ExpectedValue = 500
	high := candidate.New("plane", plane, nil)
	high.ExpectedValue = 999

	best := peekBest([]*candidate.Candidate{low, high, mid})
	test.That(t, best, test.ShouldEqual, high)
}

func TestDetectStopsWhenNoCandidateClearsMinPoints(t *testing.T) {
	// A cloud far too small to ever reach an unreasonably high MinPoints:
	// fewer points are available than cfg.MinPoints, so the driver stops
	// before drawing any candidate and terminates with no shapes rather
	// than looping forever.
	pts := planeCloud(5) // 25 points
	cfg := DefaultConfig()
	cfg.MinPoints = 10000
	cfg.Seed = 3

	registry := shapes.NewRegistry(shapes.NewPlane())
	result, err := Detect(pts, registry, cfg, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.Shapes), test.ShouldEqual, 0)
	test.That(t, len(result.UnassignedIndices), test.ShouldEqual, len(pts))
}

func TestDetectWithProbabilityOneReturnsEarly(t *testing.T) {
	pts := planeCloud(50) // 2500 points, all coplanar
	registry := shapes.NewRegistry(shapes.NewPlane())

	cfg := DefaultConfig()
	cfg.Epsilon = 0.01
	cfg.MinPoints = 500
	cfg.ProbabilityThreshold = 1
	cfg.Seed = 7

	result, err := Detect(pts, registry, cfg, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.Shapes), test.ShouldBeLessThanOrEqualTo, 1)
}

func TestDetectIsDeterministicForFixedSeed(t *testing.T) {
	pts := planeCloud(30)
	cfg := DefaultConfig()
	cfg.MinPoints = 300
	cfg.Seed = 42

	registry := shapes.NewRegistry(shapes.NewPlane())
	first, err := Detect(pts, registry, cfg, nil)
	test.That(t, err, test.ShouldBeNil)

	second, err := Detect(pts, registry, cfg, nil)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, len(first.Shapes), test.ShouldEqual, len(second.Shapes))
	for i := range first.Shapes {
		test.That(t, first.Shapes[i].Indices, test.ShouldResemble, second.Shapes[i].Indices)
	}
}
