// Package pointset owns the input point/normal sequence that shapedetect
// operates on and the dense assignment map recording which extracted shape,
// if any, claims each point. It plays the role rdk's pointcloud package
// plays for a PointCloud: a flat, index-addressable store of geometry, with
// the RANSAC-specific addition of a monotone ownership map.
package pointset

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Point is a single sample: a position and a (possibly unoriented) surface
// normal.
type Point struct {
	Position r3.Vector
	Normal   r3.Vector
}

// Unassigned is the sentinel shape id meaning "claimed by no shape".
const Unassigned = -1

// Store owns an ordered, zero-based-indexed sequence of points. The
// sequence may be permuted (see Swap) during subset-ladder construction,
// but never during detection (spec.md §3). Store tracks each point's
// original position in the slice passed to NewStore, so callers can map a
// result index back to their own input order despite the permutation —
// the original algorithm reorders the caller's own container in place and
// keeps its indices meaningful the same way.
type Store struct {
	points   []Point
	original []int
}

// NewStore validates and wraps points. It returns an error if points is
// empty (spec.md §7's EmptyInput error kind); this is a plain error, not
// shapedetect.ErrEmptyInput, which Detect checks for before calling it.
func NewStore(points []Point) (*Store, error) {
	if len(points) == 0 {
		return nil, errors.New("shapedetect: point sequence is empty")
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	original := make([]int, len(points))
	for i := range original {
		original[i] = i
	}
	return &Store{points: cp, original: original}, nil
}

// Len returns the number of points in the store.
func (s *Store) Len() int { return len(s.points) }

// At returns the point at index i.
func (s *Store) At(i int) Point { return s.points[i] }

// OriginalIndex returns the position index i held in the slice passed to
// NewStore, before any Swap calls permuted the store.
func (s *Store) OriginalIndex(i int) int { return s.original[i] }

// Slice returns the contiguous range [start, end) of points, backed by the
// store's own array. The octrees do not use it; they read points one at a
// time through At.
func (s *Store) Slice(start, end int) []Point { return s.points[start:end] }

// Swap exchanges the points at positions i and j, keeping each one's
// original index attached to it. Used only during subset-ladder
// construction (spec.md §4.2); the driver never calls this during
// detection.
func (s *Store) Swap(i, j int) {
	s.points[i], s.points[j] = s.points[j], s.points[i]
	s.original[i], s.original[j] = s.original[j], s.original[i]
}

// Assignment is a dense index -> shape-id map. It starts fully unassigned
// and is monotone: once an index is assigned, it never changes (spec.md
// §3). It also tracks the count of still-unassigned points.
type Assignment struct {
	ids       []int
	available int
}

// NewAssignment returns an Assignment covering n points, all unassigned.
func NewAssignment(n int) *Assignment {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = Unassigned
	}
	return &Assignment{ids: ids, available: n}
}

// Len returns the number of indices tracked.
func (a *Assignment) Len() int { return len(a.ids) }

// IsAssigned reports whether index i currently belongs to a shape.
func (a *Assignment) IsAssigned(i int) bool { return a.ids[i] != Unassigned }

// ShapeID returns the shape id owning index i, or Unassigned.
func (a *Assignment) ShapeID(i int) int { return a.ids[i] }

// Available returns the number of currently-unassigned points.
func (a *Assignment) Available() int { return a.available }

// Assign marks index i as owned by shapeID. It panics if i is already
// assigned — spec.md §7 treats a double-assignment as an internal
// invariant violation, not a user-facing error.
func (a *Assignment) Assign(i, shapeID int) {
	if a.ids[i] != Unassigned {
		panic("shapedetect: point already assigned to a shape")
	}
	a.ids[i] = shapeID
	a.available--
}

// UnassignedIndices returns, in ascending order, every index not yet
// claimed by a shape (spec.md §6.2 unassigned_indices).
func (a *Assignment) UnassignedIndices() []int {
	out := make([]int, 0, a.available)
	for i, id := range a.ids {
		if id == Unassigned {
			out = append(out, i)
		}
	}
	return out
}

// DistinctShapeCount returns the number of distinct shape ids present in
// the assignment map (spec.md §8 property 2).
func (a *Assignment) DistinctShapeCount() int {
	seen := make(map[int]struct{})
	for _, id := range a.ids {
		if id != Unassigned {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}
