package pointset

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func samplePoints(n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{Position: r3.Vector{X: float64(i)}, Normal: r3.Vector{Z: 1}}
	}
	return pts
}

func TestNewStoreRejectsEmpty(t *testing.T) {
	_, err := NewStore(nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStoreSwapAndSlice(t *testing.T) {
	store, err := NewStore(samplePoints(5))
	test.That(t, err, test.ShouldBeNil)

	before0, before1 := store.At(0), store.At(1)
	store.Swap(0, 1)
	test.That(t, store.At(0), test.ShouldResemble, before1)
	test.That(t, store.At(1), test.ShouldResemble, before0)

	sl := store.Slice(1, 4)
	test.That(t, len(sl), test.ShouldEqual, 3)
}

func TestStoreOriginalIndexSurvivesSwap(t *testing.T) {
	store, err := NewStore(samplePoints(5))
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 5; i++ {
		test.That(t, store.OriginalIndex(i), test.ShouldEqual, i)
	}

	store.Swap(0, 4)
	store.Swap(1, 4)
	test.That(t, store.OriginalIndex(0), test.ShouldEqual, 4)
	test.That(t, store.OriginalIndex(1), test.ShouldEqual, 0)
	test.That(t, store.OriginalIndex(4), test.ShouldEqual, 1)
}

func TestAssignmentMonotone(t *testing.T) {
	a := NewAssignment(3)
	test.That(t, a.Available(), test.ShouldEqual, 3)
	test.That(t, a.IsAssigned(0), test.ShouldBeFalse)

	a.Assign(0, 7)
	test.That(t, a.IsAssigned(0), test.ShouldBeTrue)
	test.That(t, a.ShapeID(0), test.ShouldEqual, 7)
	test.That(t, a.Available(), test.ShouldEqual, 2)

	test.That(t, func() { a.Assign(0, 8) }, test.ShouldPanic)
}

func TestUnassignedIndicesAndDistinctCount(t *testing.T) {
	a := NewAssignment(4)
	a.Assign(1, 0)
	a.Assign(3, 0)
	a.Assign(2, 1)

	test.That(t, a.UnassignedIndices(), test.ShouldResemble, []int{0})
	test.That(t, a.DistinctShapeCount(), test.ShouldEqual, 2)
}
