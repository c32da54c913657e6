package dataprep

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeetV/csml-sub000/pkg/core"
)

// rows where column 1 is always twice column 0, so a component-wise mix
// of two originals is detectable.
func linkedRows(n int) (*core.Matrix, []float64) {
	rows := make([][]float64, n)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = []float64{float64(i), float64(2 * i)}
		target[i] = float64(i)
	}
	return core.FromSlice(rows), target
}

func TestBootstrapPreservesRowCountAndRowIntegrity(t *testing.T) {
	m, y := linkedRows(20)
	rnd := rand.New(rand.NewSource(7))
	mb, yb, oob := Bootstrap(m, y, rnd)

	require.Equal(t, m.R, mb.R)
	require.Len(t, yb, m.R)

	picked := make(map[int]bool)
	for i := 0; i < mb.R; i++ {
		row := mb.Row(i)
		idx := int(row[0])
		assert.Equal(t, 2*row[0], row[1], "resampled row mixed components")
		assert.Equal(t, float64(idx), yb[i], "target detached from its row")
		picked[idx] = true
	}
	for _, i := range oob {
		assert.False(t, picked[i], "out-of-bag index %d was picked", i)
	}
	assert.Len(t, oob, m.R-len(picked))
}

func TestShuffleKeepsPairing(t *testing.T) {
	m, y := linkedRows(15)
	ms, ys := Shuffle(m, y, rand.New(rand.NewSource(3)))
	require.Equal(t, m.R, ms.R)
	seen := make(map[float64]bool)
	for i := 0; i < ms.R; i++ {
		assert.Equal(t, ms.At(i, 0), ys[i])
		seen[ys[i]] = true
	}
	assert.Len(t, seen, 15)
}

func TestTrainTestSplitSizes(t *testing.T) {
	m, y := linkedRows(10)
	mTrain, mTest, yTrain, yTest := TrainTestSplit(m, y, 0.3, rand.New(rand.NewSource(1)))
	assert.Equal(t, 7, mTrain.R)
	assert.Equal(t, 3, mTest.R)
	assert.Len(t, yTrain, 7)
	assert.Len(t, yTest, 3)

	all := append(append([]float64(nil), yTrain...), yTest...)
	sort.Float64s(all)
	for i, v := range all {
		assert.Equal(t, float64(i), v)
	}
}

func TestKFoldCoversEveryIndexOnce(t *testing.T) {
	folds := KFold(10, 3, rand.New(rand.NewSource(5)))
	require.Len(t, folds, 3)
	var all []int
	for _, f := range folds {
		all = append(all, f...)
	}
	sort.Ints(all)
	require.Len(t, all, 10)
	for i, v := range all {
		assert.Equal(t, i, v)
	}
}

func TestSplitByFilter(t *testing.T) {
	m := core.FromSlice([][]float64{{1, 0}, {2, 0}, {3, 0}})
	y := []float64{10, 20, 30}
	mYes, mNo, yYes, yNo := SplitByFilter(m, y, []bool{true, false, true})
	assert.Equal(t, [][]float64{{1, 0}, {3, 0}}, mYes.ToSlice())
	assert.Equal(t, [][]float64{{2, 0}}, mNo.ToSlice())
	assert.Equal(t, []float64{10, 30}, yYes)
	assert.Equal(t, []float64{20}, yNo)
}

func TestSelectColumns(t *testing.T) {
	m := core.FromSlice([][]float64{{1, 2, 3}, {4, 5, 6}})
	s := SelectColumns(m, []int{2, 0})
	assert.Equal(t, [][]float64{{3, 1}, {6, 4}}, s.ToSlice())
}
