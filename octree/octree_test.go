package octree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/shapedetect/pointset"
)

// planePredicate scores against the z=0 plane, for exercising Score
// without depending on the shapes package.
type planePredicate struct{}

func (planePredicate) SignedDistance(p r3.Vector) float64  { return p.Z }
func (planePredicate) NormalDeviation(n, p r3.Vector) float64 {
	return 1 - math.Abs(n.Z)
}

func gridStore(t *testing.T, n int) *pointset.Store {
	t.Helper()
	pts := make([]pointset.Point, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pts = append(pts, pointset.Point{
				Position: r3.Vector{X: float64(i), Y: float64(j), Z: 0},
				Normal:   r3.Vector{Z: 1},
			})
		}
	}
	store, err := pointset.NewStore(pts)
	test.That(t, err, test.ShouldBeNil)
	return store
}

func TestNewIndexedCoversAllPoints(t *testing.T) {
	store := gridStore(t, 6)
	tree := NewIndexed(store)
	test.That(t, tree.Size(), test.ShouldEqual, store.Len())
	test.That(t, tree.MaxLevel(), test.ShouldBeGreaterThanOrEqualTo, 0)
}

func TestNewDirectCoversSubrange(t *testing.T) {
	store := gridStore(t, 6)
	tree := NewDirect(store, 4, 10)
	test.That(t, tree.Size(), test.ShouldEqual, 10)
}

func TestScoreFindsAllUnassignedPlanePoints(t *testing.T) {
	store := gridStore(t, 6)
	tree := NewIndexed(store)
	assignment := pointset.NewAssignment(store.Len())

	count, matched := tree.Score(planePredicate{}, assignment, 1e-9, 0.1)
	test.That(t, count, test.ShouldEqual, store.Len())
	test.That(t, len(matched), test.ShouldEqual, store.Len())
}

func TestScoreSkipsAssignedPoints(t *testing.T) {
	store := gridStore(t, 6)
	tree := NewIndexed(store)
	assignment := pointset.NewAssignment(store.Len())
	assignment.Assign(0, 42)

	count, _ := tree.Score(planePredicate{}, assignment, 1e-9, 0.1)
	test.That(t, count, test.ShouldEqual, store.Len()-1)
}

func TestDrawSampleFromCellReturnsDistinctIndices(t *testing.T) {
	store := gridStore(t, 8)
	tree := NewIndexed(store)
	assignment := pointset.NewAssignment(store.Len())
	rng := rand.New(rand.NewSource(1))

	idx, ok := tree.DrawSampleFromCell(store.At(0).Position, 0, 3, assignment, rng)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, len(idx), test.ShouldEqual, 3)
	test.That(t, idx[0], test.ShouldNotEqual, idx[1])
	test.That(t, idx[1], test.ShouldNotEqual, idx[2])
}

func TestDrawSampleFromCellFailsWhenPoolTooSmall(t *testing.T) {
	store := gridStore(t, 2)
	tree := NewIndexed(store)
	assignment := pointset.NewAssignment(store.Len())
	rng := rand.New(rand.NewSource(1))

	_, ok := tree.DrawSampleFromCell(store.At(0).Position, tree.MaxLevel(), store.Len()+1, assignment, rng)
	test.That(t, ok, test.ShouldBeFalse)
}
