package dataset

import (
	"math/rand"
	"sort"
)

// Sample draws a deterministic subsample of n rows using a seeded shuffle,
// mirroring the seeded sampling step applied to the source tables. The
// sampled rows are returned in their original table order so the ranking
// tie-break stays stable. If n is zero or exceeds the row count, a copy of
// all rows is returned.
func Sample(rows []Row, n int, seed int64) []Row {
	if n <= 0 || n >= len(rows) {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(idx), func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})

	picked := idx[:n]
	sort.Ints(picked)

	out := make([]Row, 0, n)
	for _, i := range picked {
		out = append(out, rows[i])
	}
	return out
}
