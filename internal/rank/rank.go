// Package rank assigns dense ranks to scored candidates.
package rank

import (
	"sort"
)

// Ranks assigns a rank to every score such that rank 1 has the maximal
// score and the ranks form the permutation 1..N. Ties are broken by
// original position: among equal scores the earlier entry gets the better
// rank, so rankings are reproducible for a fixed input order.
func Ranks(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranks := make([]int, len(scores))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// TopK returns the indices of the k best-ranked entries, in rank order.
// If k exceeds the number of scores, all indices are returned.
func TopK(scores []float64, k int) []int {
	if k > len(scores) {
		k = len(scores)
	}
	if k <= 0 {
		return nil
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	return order[:k]
}
