// Package subsetladder builds the geometrically-sized cascade of point
// subsets the bound engine refines candidates against (spec.md §3, §4.2):
// K disjoint ranges of a pointset.Store, each backed by its own direct
// octree, roughly doubling in size from subset 0 up to subset K-1.
package subsetladder

import (
	"math"
	"math/rand"

	"go.viam.com/shapedetect/octree"
	"go.viam.com/shapedetect/pointset"
)

// Ladder is the built subset cascade: K disjoint, contiguous ranges of a
// store, each with its own direct octree and its own live count of
// still-unassigned points.
type Ladder struct {
	offsets   []int
	sizes     []int
	available []int
	trees     []*octree.Tree
}

// K returns the number of subsets.
func (l *Ladder) K() int { return len(l.sizes) }

// Size returns subset s's total point count.
func (l *Ladder) Size(s int) int { return l.sizes[s] }

// Offset returns the global index of subset s's first point.
func (l *Ladder) Offset(s int) int { return l.offsets[s] }

// Available returns subset s's currently-unassigned point count.
func (l *Ladder) Available(s int) int { return l.available[s] }

// Tree returns subset s's direct octree.
func (l *Ladder) Tree(s int) *octree.Tree { return l.trees[s] }

// CumulativeAvailable sums Available(0..upToExclusive).
func (l *Ladder) CumulativeAvailable(upToExclusive int) int {
	sum := 0
	for s := 0; s < upToExclusive; s++ {
		sum += l.available[s]
	}
	return sum
}

// MarkAssigned records that the point at globalIndex has just been claimed
// by a shape, decrementing the availability counter of whichever subset
// owns it. This is the driver-owned "subset availability counter" of
// spec.md §5, grounded on the offset-range scan in the original
// Shape_detection_3::detect()'s point-removal step.
func (l *Ladder) MarkAssigned(globalIndex int) {
	s := l.subsetOf(globalIndex)
	l.available[s]--
}

func (l *Ladder) subsetOf(globalIndex int) int {
	for s, off := range l.offsets {
		if globalIndex >= off && globalIndex < off+l.sizes[s] {
			return s
		}
	}
	panic("subsetladder: index not owned by any subset")
}

// Build partitions store's full index range [0, store.Len()) into
// K = max(2, floor(log2 N) - 9) disjoint subsets, subset K-1 largest and
// subset 0 smallest, by repeatedly carving roughly half of a shrinking
// prefix window off its tail with a partial Fisher-Yates shuffle. This
// replaces the original CGAL implementation's biased
// `(rng()%2) + (i<<1)` index scheme (spec.md §9) with an unbiased random
// selection, per this module's Open Question decision.
func Build(store *pointset.Store, rng *rand.Rand) *Ladder {
	n := store.Len()
	k := numSubsets(n)

	offsets := make([]int, k)
	sizes := make([]int, k)

	remaining := n
	for s := k - 1; s >= 1; s-- {
		subsetSize := remaining / 2
		shuffleTail(store, remaining, subsetSize, rng)
		offset := remaining - subsetSize
		offsets[s] = offset
		sizes[s] = subsetSize
		remaining -= subsetSize
	}
	offsets[0] = 0
	sizes[0] = remaining

	trees := make([]*octree.Tree, k)
	available := make([]int, k)
	for s := 0; s < k; s++ {
		trees[s] = octree.NewDirect(store, offsets[s], sizes[s])
		available[s] = sizes[s]
	}

	return &Ladder{offsets: offsets, sizes: sizes, available: available, trees: trees}
}

func numSubsets(n int) int {
	if n <= 1 {
		return 2
	}
	k := int(math.Floor(math.Log2(float64(n)))) - 9
	if k < 2 {
		k = 2
	}
	return k
}

// shuffleTail performs a partial Fisher-Yates shuffle of store's window
// [0, windowSize), moving a uniformly random, duplicate-free selection of
// tailSize elements into the window's final tailSize positions.
func shuffleTail(store *pointset.Store, windowSize, tailSize int, rng *rand.Rand) {
	for i := windowSize - 1; i >= windowSize-tailSize; i-- {
		j := rng.Intn(i + 1)
		store.Swap(i, j)
	}
}
