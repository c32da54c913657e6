package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSliceAndAccessors(t *testing.T) {
	m := FromSlice([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	assert.Equal(t, 2, m.R)
	assert.Equal(t, 3, m.C)
	assert.Equal(t, 6.0, m.At(1, 2))
	assert.Equal(t, []float64{4, 5, 6}, m.Row(1))
	assert.Equal(t, []float64{2, 5}, m.Col(1))
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, m.ToSlice())
}

func TestFromSliceEmpty(t *testing.T) {
	m := FromSlice(nil)
	assert.Equal(t, 0, m.R)
	assert.Equal(t, 0, m.C)
}

func TestCloneIsIndependent(t *testing.T) {
	m := FromSlice([][]float64{{1, 2}, {3, 4}})
	n := m.Clone()
	n.SetAt(0, 0, 99)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 99.0, n.At(0, 0))
}

func TestRowIsACopy(t *testing.T) {
	m := FromSlice([][]float64{{1, 2}})
	r := m.Row(0)
	r[0] = 99
	assert.Equal(t, 1.0, m.At(0, 0))
}

func TestSelectRowsWithRepeats(t *testing.T) {
	m := FromSlice([][]float64{{1, 1}, {2, 2}, {3, 3}})
	s := m.SelectRows([]int{2, 0, 2})
	assert.Equal(t, [][]float64{{3, 3}, {1, 1}, {3, 3}}, s.ToSlice())
}

func TestFilterRows(t *testing.T) {
	m := FromSlice([][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}})
	yes, no := m.FilterRows([]bool{true, false, false, true})
	assert.Equal(t, [][]float64{{1, 1}, {4, 4}}, yes.ToSlice())
	assert.Equal(t, [][]float64{{2, 2}, {3, 3}}, no.ToSlice())
}

func TestFilterRowsAllOneSide(t *testing.T) {
	m := FromSlice([][]float64{{1}, {2}})
	yes, no := m.FilterRows([]bool{false, false})
	assert.Equal(t, 0, yes.R)
	assert.Equal(t, 2, no.R)
}
