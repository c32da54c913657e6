package dataprep

import (
	"math/rand"

	"github.com/PeetV/csml-sub000/pkg/core"
)

// Row-level sampling utilities shared by the tree and forest trainers.
// All randomized functions take an explicit *rand.Rand so callers control
// reproducibility.

// Bootstrap resamples rows with replacement, producing a matrix/target
// pair with the same row count as the input. Every resampled row is drawn
// intact from exactly one original row. The third result lists the
// out-of-bag row indices: original rows the resample never picked.
func Bootstrap(m *core.Matrix, target []float64, rnd *rand.Rand) (*core.Matrix, []float64, []int) {
	n := m.R
	indices := make([]int, n)
	picked := make([]bool, n)
	for i := 0; i < n; i++ {
		idx := rnd.Intn(n)
		indices[i] = idx
		picked[idx] = true
	}
	yb := make([]float64, n)
	for i, idx := range indices {
		yb[i] = target[idx]
	}
	var oob []int
	for i, p := range picked {
		if !p {
			oob = append(oob, i)
		}
	}
	return m.SelectRows(indices), yb, oob
}

// Shuffle permutes the matrix rows and the target in unison.
func Shuffle(m *core.Matrix, target []float64, rnd *rand.Rand) (*core.Matrix, []float64) {
	indices := rnd.Perm(m.R)
	ys := make([]float64, len(target))
	for i, idx := range indices {
		ys[i] = target[idx]
	}
	return m.SelectRows(indices), ys
}

// TrainTestSplit splits the matrix and target into train and test sets by
// ratio, after a random permutation.
func TrainTestSplit(m *core.Matrix, target []float64, testRatio float64, rnd *rand.Rand) (mTrain, mTest *core.Matrix, yTrain, yTest []float64) {
	n := m.R
	indices := rnd.Perm(n)
	nTest := int(float64(n) * testRatio)
	testIdx, trainIdx := indices[:nTest], indices[nTest:]
	yTrain = make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		yTrain[i] = target[idx]
	}
	yTest = make([]float64, len(testIdx))
	for i, idx := range testIdx {
		yTest[i] = target[idx]
	}
	return m.SelectRows(trainIdx), m.SelectRows(testIdx), yTrain, yTest
}

// KFold partitions n row indices into k folds after a random permutation.
func KFold(n, k int, rnd *rand.Rand) [][]int {
	indices := rnd.Perm(n)
	folds := make([][]int, k)
	for i := 0; i < n; i++ {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds
}

// SplitByFilter partitions the matrix and target by a boolean mask: rows
// where keep[i] is true land in the first pair, the rest in the second.
func SplitByFilter(m *core.Matrix, target []float64, keep []bool) (mYes, mNo *core.Matrix, yYes, yNo []float64) {
	mYes, mNo = m.FilterRows(keep)
	for i, k := range keep {
		if k {
			yYes = append(yYes, target[i])
		} else {
			yNo = append(yNo, target[i])
		}
	}
	return mYes, mNo, yYes, yNo
}

// SelectColumns projects the matrix onto the given column indices.
func SelectColumns(m *core.Matrix, indices []int) *core.Matrix {
	out := core.NewMatrix(m.R, len(indices))
	for i := 0; i < m.R; i++ {
		for j, idx := range indices {
			out.SetAt(i, j, m.At(i, idx))
		}
	}
	return out
}
