// Package components implements the connected-component filter (spec.md
// §4.6): given a candidate's matched points mapped into 2D parametric
// coordinates, it bins them into a grid of cluster_epsilon-sized cells and
// keeps only the points in the single largest 8-connected group of
// occupied cells, discarding the rest as spatially disjoint from the main
// patch. It is grounded on the voxel connected-component labeling in
// pointcloud/voxel_segmentation.go: a BFS flood fill over a grid keyed by
// integer cell coordinates, using container/list as the frontier queue.
package components

import (
	"container/list"
	"sort"
)

// cell is an integer grid coordinate.
type cell struct{ x, y int }

// Point2D is one matched point's parametric coordinate and its original
// global index, the minimal pair the filter needs.
type Point2D struct {
	Index int
	U, V  float64
}

// Filter bins points into cellSize x cellSize cells and returns the subset
// belonging to the largest 8-connected group of occupied cells, sorted by
// global index. A tie between two components of equal size is broken in
// favor of whichever contains the smaller global index, so the result is
// independent of Go's randomized map iteration order. cellSize should be
// the candidate's cluster_epsilon: it is what "locally metric" in a Kind's
// ParametricCoords is measured against.
func Filter(points []Point2D, cellSize float64) []int {
	if len(points) == 0 {
		return nil
	}
	if cellSize <= 0 {
		cellSize = 1
	}

	cellOf := func(p Point2D) cell {
		return cell{x: floorDiv(p.U, cellSize), y: floorDiv(p.V, cellSize)}
	}

	byCell := make(map[cell][]int) // cell -> indices into points
	for i, p := range points {
		c := cellOf(p)
		byCell[c] = append(byCell[c], i)
	}

	visited := make(map[cell]bool, len(byCell))
	var largest []int
	largestMinIndex := -1

	for start := range byCell {
		if visited[start] {
			continue
		}
		var component []int
		minIndex := -1
		queue := list.New()
		queue.PushBack(start)
		visited[start] = true
		for queue.Len() > 0 {
			e := queue.Front()
			queue.Remove(e)
			c := e.Value.(cell)
			for _, pi := range byCell[c] {
				component = append(component, pi)
				if minIndex == -1 || points[pi].Index < minIndex {
					minIndex = points[pi].Index
				}
			}
			for _, n := range neighbors8(c) {
				if _, ok := byCell[n]; ok && !visited[n] {
					visited[n] = true
					queue.PushBack(n)
				}
			}
		}
		if len(component) > len(largest) || (len(component) == len(largest) && minIndex < largestMinIndex) {
			largest = component
			largestMinIndex = minIndex
		}
	}

	out := make([]int, len(largest))
	for i, pi := range largest {
		out[i] = points[pi].Index
	}
	sort.Ints(out)
	return out
}

func neighbors8(c cell) [8]cell {
	return [8]cell{
		{c.x - 1, c.y - 1}, {c.x, c.y - 1}, {c.x + 1, c.y - 1},
		{c.x - 1, c.y}, {c.x + 1, c.y},
		{c.x - 1, c.y + 1}, {c.x, c.y + 1}, {c.x + 1, c.y + 1},
	}
}

func floorDiv(v, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}
