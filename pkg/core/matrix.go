package core

// Matrix is a dense row-major table of float64 values.
type Matrix struct {
	R, C int
	Data []float64
}

// NewMatrix allocates a zero matrix with r rows and c columns.
func NewMatrix(r, c int) *Matrix {
	return &Matrix{R: r, C: c, Data: make([]float64, r*c)}
}

// FromSlice creates a Matrix from a nested slice (copies the data).
// Rows beyond the first are assumed to have the same width as the first.
func FromSlice(a [][]float64) *Matrix {
	r := len(a)
	if r == 0 {
		return &Matrix{R: 0, C: 0}
	}
	c := len(a[0])
	m := NewMatrix(r, c)
	k := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Data[k] = a[i][j]
			k++
		}
	}
	return m
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.C+j] }

// SetAt sets element (i, j).
func (m *Matrix) SetAt(i, j int, v float64) { m.Data[i*m.C+j] = v }

// Clone deep-copies the matrix.
func (m *Matrix) Clone() *Matrix {
	n := &Matrix{R: m.R, C: m.C, Data: make([]float64, len(m.Data))}
	copy(n.Data, m.Data)
	return n
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	v := make([]float64, m.C)
	copy(v, m.Data[i*m.C:(i+1)*m.C])
	return v
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	v := make([]float64, m.R)
	for i := 0; i < m.R; i++ {
		v[i] = m.Data[i*m.C+j]
	}
	return v
}

// ToSlice converts the matrix back to a nested slice (copies the data).
func (m *Matrix) ToSlice() [][]float64 {
	out := make([][]float64, m.R)
	for i := 0; i < m.R; i++ {
		out[i] = m.Row(i)
	}
	return out
}

// SelectRows builds a new matrix from the given row indices, in order.
// Indices may repeat, which is what bootstrap resampling relies on.
func (m *Matrix) SelectRows(indices []int) *Matrix {
	n := NewMatrix(len(indices), m.C)
	for i, idx := range indices {
		copy(n.Data[i*n.C:(i+1)*n.C], m.Data[idx*m.C:(idx+1)*m.C])
	}
	return n
}

// FilterRows partitions the matrix by a boolean mask: rows where keep[i]
// is true go to the first result, the rest to the second. len(keep) must
// equal the row count.
func (m *Matrix) FilterRows(keep []bool) (*Matrix, *Matrix) {
	var yes, no []int
	for i, k := range keep {
		if k {
			yes = append(yes, i)
		} else {
			no = append(no, i)
		}
	}
	return m.SelectRows(yes), m.SelectRows(no)
}
