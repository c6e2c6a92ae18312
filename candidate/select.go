package candidate

import "sort"

// Refiner scores c against its next not-yet-tested subset, calling
// RecordSubsetResult and UpdateBounds on it in place.
type Refiner func(c *Candidate) error

// SelectBest repeatedly refines the best-looking candidate — the one with
// the highest MaxBound — until either it is the only candidate left, it has
// been scored against every subset, or its MinBound already exceeds every
// other candidate's MaxBound (so no further refinement could change the
// ranking). This is the two-pointer refine-and-compare loop of spec.md
// §4.5, generalized from CGAL's getBestCandidate: rather than tracking a
// running second-best pointer, each round re-sorts and re-checks the whole
// remaining set, which is simpler and cheap at the small candidate counts
// this engine keeps live at once.
func SelectBest(candidates []*Candidate, numSubsets int, refine Refiner) (*Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	for {
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].MaxBound > candidates[j].MaxBound })
		best := candidates[0]

		if len(candidates) == 1 || best.FullyScored(numSubsets) {
			return best, nil
		}

		dominant := true
		for _, c := range candidates[1:] {
			if c.MaxBound > best.MinBound {
				dominant = false
				break
			}
		}
		if dominant {
			return best, nil
		}

		if err := refine(best); err != nil {
			return nil, err
		}
	}
}
