// Package octree implements the spatial index the RANSAC engine samples
// candidates from and scores them against: a bounded axis-aligned tree over
// a contiguous range of a pointset.Store. It plays the role rdk's own
// octree package plays for a pointcloud — a recursive spatial partition —
// generalized here to expose the sampling and pruned-scoring operations
// the detection driver needs.
//
// spec.md §4.1 distinguishes an "indexed" octree (global, covers every
// input point) from a "direct" octree (covers one subset's contiguous
// slice). Because shapedetect's pointset.Store keeps subsets contiguous
// once the subset ladder partitions it (see subsetladder), both variants
// reduce to the same underlying structure: a tree over a contiguous index
// range [offset, offset+n) of one shared store. Tree is that structure;
// NewIndexed and NewDirect are the two named entry points spec.md expects,
// differing only in which range they cover.
package octree

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"

	"go.viam.com/shapedetect/pointset"
)

// DefaultBucketSize is the maximum number of points a leaf holds before the
// tree splits it into octants (spec.md §3: "e.g., 10").
const DefaultBucketSize = 10

// DefaultMaxDepth bounds recursion when points are coincident or otherwise
// impossible to further separate by spatial subdivision.
const DefaultMaxDepth = 32

// Predicate is the minimal contract Score needs from a candidate: a signed
// distance function (used both for the exact inlier test and, at cell
// centers, for coarse subtree pruning) and a normal-deviation function.
// This mirrors spec.md §4.3's signed_distance/normal_deviation pair without
// coupling the octree package to any concrete shape kind.
type Predicate interface {
	SignedDistance(p r3.Vector) float64
	NormalDeviation(normal, p r3.Vector) float64
}

// Tree is a bounded octree over a contiguous range of points in a
// pointset.Store.
type Tree struct {
	store      *pointset.Store
	offset     int
	n          int
	bucketSize int
	root       *node
	maxDepth   int
}

type node struct {
	center    r3.Vector
	halfWidth float64
	isLeaf    bool
	indices   []int // global store indices covered by this node (leaf or the union under an internal node)
	children  [8]*node
}

// NewIndexed builds the global octree over every point in store — the
// "indexed" variant of spec.md §4.1, used for final candidate verification.
func NewIndexed(store *pointset.Store) *Tree {
	return build(store, 0, store.Len(), DefaultBucketSize)
}

// NewDirect builds a "direct" octree over the contiguous range
// [offset, offset+n) of store — one subset ladder rung's own tree, used for
// incremental score refinement.
func NewDirect(store *pointset.Store, offset, n int) *Tree {
	return build(store, offset, n, DefaultBucketSize)
}

func build(store *pointset.Store, offset, n, bucketSize int) *Tree {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = offset + i
	}
	t := &Tree{store: store, offset: offset, n: n, bucketSize: bucketSize}
	if n == 0 {
		t.root = &node{isLeaf: true}
		return t
	}
	center, halfWidth := boundingCube(store, indices)
	t.root, t.maxDepth = t.split(center, halfWidth, indices, 0)
	return t
}

func boundingCube(store *pointset.Store, indices []int) (r3.Vector, float64) {
	min := store.At(indices[0]).Position
	max := min
	for _, idx := range indices[1:] {
		p := store.At(idx).Position
		min.X, max.X = math.Min(min.X, p.X), math.Max(max.X, p.X)
		min.Y, max.Y = math.Min(min.Y, p.Y), math.Max(max.Y, p.Y)
		min.Z, max.Z = math.Min(min.Z, p.Z), math.Max(max.Z, p.Z)
	}
	center := min.Add(max).Mul(0.5)
	half := max.Sub(min).Mul(0.5)
	halfWidth := math.Max(half.X, math.Max(half.Y, half.Z))
	if halfWidth <= 0 {
		halfWidth = 1e-6
	}
	return center, halfWidth
}

// split partitions indices into up to eight octants of a cube centered at
// center with the given halfWidth, recursing until each leaf holds at most
// bucketSize points or DefaultMaxDepth is reached. A point exactly on a
// split plane goes to the lower octant (spec.md §4.1), which falls out of
// using strict '>' in octantOf.
func (t *Tree) split(center r3.Vector, halfWidth float64, indices []int, depth int) (*node, int) {
	if len(indices) <= t.bucketSize || depth >= DefaultMaxDepth {
		return &node{center: center, halfWidth: halfWidth, isLeaf: true, indices: indices}, depth
	}

	var buckets [8][]int
	for _, idx := range indices {
		o := octantOf(center, t.store.At(idx).Position)
		buckets[o] = append(buckets[o], idx)
	}

	n := &node{center: center, halfWidth: halfWidth, indices: indices}
	childHalf := halfWidth / 2
	deepest := depth
	for i := 0; i < 8; i++ {
		if len(buckets[i]) == 0 {
			continue
		}
		childCenter := octantCenter(center, childHalf, i)
		child, d := t.split(childCenter, childHalf, buckets[i], depth+1)
		n.children[i] = child
		if d > deepest {
			deepest = d
		}
	}
	return n, deepest
}

func octantOf(center, p r3.Vector) int {
	i := 0
	if p.X > center.X {
		i |= 1
	}
	if p.Y > center.Y {
		i |= 2
	}
	if p.Z > center.Z {
		i |= 4
	}
	return i
}

func octantCenter(center r3.Vector, childHalf float64, octant int) r3.Vector {
	sx, sy, sz := -1.0, -1.0, -1.0
	if octant&1 != 0 {
		sx = 1
	}
	if octant&2 != 0 {
		sy = 1
	}
	if octant&4 != 0 {
		sz = 1
	}
	return r3.Vector{
		X: center.X + sx*childHalf,
		Y: center.Y + sy*childHalf,
		Z: center.Z + sz*childHalf,
	}
}

// MaxLevel returns the depth of the deepest leaf in the tree.
func (t *Tree) MaxLevel() int { return t.maxDepth }

// Size returns the number of points the tree covers.
func (t *Tree) Size() int { return t.n }

// cellAt descends from the root toward the cell containing seedPos at the
// requested level, stopping early if a leaf is reached first (a leaf may be
// shallower than level when its region was sparse).
func (t *Tree) cellAt(seedPos r3.Vector, level int) *node {
	cur := t.root
	for depth := 0; depth < level && !cur.isLeaf; depth++ {
		child := cur.children[octantOf(cur.center, seedPos)]
		if child == nil {
			break
		}
		cur = child
	}
	return cur
}

// DrawSampleFromCell finds the cell at the given level containing seedPos
// and draws k distinct indices, uniformly at random, from among that
// cell's currently-unassigned points. It fails if fewer than k such points
// exist (spec.md §4.1).
func (t *Tree) DrawSampleFromCell(
	seedPos r3.Vector,
	level, k int,
	assignment *pointset.Assignment,
	rng *rand.Rand,
) ([]int, bool) {
	cell := t.cellAt(seedPos, level)
	pool := make([]int, 0, len(cell.indices))
	for _, idx := range cell.indices {
		if !assignment.IsAssigned(idx) {
			pool = append(pool, idx)
		}
	}
	if len(pool) < k {
		return nil, false
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	out := make([]int, k)
	copy(out, pool[:k])
	return out, true
}

// Score walks the tree, skipping any subtree whose cell cannot possibly
// contain a point within epsilon of pred's surface (a conservative bound
// using the cell's bounding-sphere radius, since a leaf cell is a cube),
// and returns the count and indices of currently-unassigned points that
// pass both the distance and normal-deviation tests (spec.md §4.1).
func (t *Tree) Score(pred Predicate, assignment *pointset.Assignment, epsilon, normalThreshold float64) (int, []int) {
	var matched []int
	t.scoreNode(t.root, pred, assignment, epsilon, normalThreshold, &matched)
	return len(matched), matched
}

func (t *Tree) scoreNode(n *node, pred Predicate, assignment *pointset.Assignment, epsilon, normalThreshold float64, matched *[]int) {
	if n == nil || len(n.indices) == 0 {
		return
	}
	cellRadius := n.halfWidth * math.Sqrt(3)
	if math.Abs(pred.SignedDistance(n.center))-cellRadius > epsilon {
		return
	}
	if n.isLeaf {
		for _, idx := range n.indices {
			if assignment.IsAssigned(idx) {
				continue
			}
			p := t.store.At(idx)
			if math.Abs(pred.SignedDistance(p.Position)) > epsilon {
				continue
			}
			if pred.NormalDeviation(p.Normal, p.Position) > normalThreshold {
				continue
			}
			*matched = append(*matched, idx)
		}
		return
	}
	for _, child := range n.children {
		t.scoreNode(child, pred, assignment, epsilon, normalThreshold, matched)
	}
}
