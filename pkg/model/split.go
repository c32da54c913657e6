package model

import (
	"math/rand"
	"sort"

	"github.com/PeetV/csml-sub000/pkg/core"
)

// pair is a column value with its target, kept together while sorting.
type pair struct {
	v, t float64
}

// bestSplit finds the split point of a single numeric column that
// maximizes weighted purity gain against the target. values and target
// must have equal lengths (the matrix-level callers check this once).
//
// Empty input returns (0, 0). A column whose values are all identical
// returns (min-1, 0): every row would route to the "no" branch, and the
// zero gain tells callers not to split.
func bestSplit(values, target []float64, purity PurityFunc) (point, gain float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}

	pairs := make([]pair, n)
	for i := range values {
		pairs[i] = pair{values[i], target[i]}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

	if pairs[0].v == pairs[n-1].v {
		return pairs[0].v - 1.0, 0
	}

	sorted := make([]float64, n)
	for i, p := range pairs {
		sorted[i] = p.t
	}
	base := purity(sorted)

	// Scan every boundary between distinct adjacent values; the left
	// partition is sorted[:i], the right sorted[i:]. Strictly-greater
	// comparison keeps the earliest (lowest) split on ties.
	for i := 1; i < n; i++ {
		if pairs[i].v == pairs[i-1].v {
			continue
		}
		g := base -
			float64(i)/float64(n)*purity(sorted[:i]) -
			float64(n-i)/float64(n)*purity(sorted[i:])
		if g > gain {
			gain = g
			point = (pairs[i-1].v + pairs[i].v) / 2.0
		}
	}
	return point, gain
}

// bestColumnSplit runs bestSplit over every column of the matrix, or over
// a random subset of randomFeatures columns when 0 < randomFeatures < C,
// sampled without replacement. Columns are scanned in ascending order and
// only a strictly greater gain replaces the current best, so the first
// column reaching the maximum wins.
//
// The returned gain is 0 when no column produces a positive gain; callers
// treat that as "cannot split".
func bestColumnSplit(m *core.Matrix, target []float64, purity PurityFunc, randomFeatures int, rnd *rand.Rand) (column int, point, gain float64) {
	cols := make([]int, m.C)
	for j := range cols {
		cols[j] = j
	}
	if randomFeatures > 0 && randomFeatures < m.C {
		// Partial Fisher-Yates, then restore ascending order so the
		// first-column-wins rule stays deterministic.
		for i := 0; i < randomFeatures; i++ {
			j := i + rnd.Intn(m.C-i)
			cols[i], cols[j] = cols[j], cols[i]
		}
		cols = cols[:randomFeatures]
		sort.Ints(cols)
	}

	for _, j := range cols {
		p, g := bestSplit(m.Col(j), target, purity)
		if g > gain {
			column, point, gain = j, p, g
		}
	}
	return column, point, gain
}
