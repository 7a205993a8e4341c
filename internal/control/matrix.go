package control

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dynctl/internal/dynamo"
)

// ControlMatrix is a square control-dimension matrix, such as the
// derivative of a control action with respect to the initial control.
// It implements mat.Matrix so it can be fed directly to gonum.
type ControlMatrix[S dynamo.Scalar] struct {
	n    int
	data []S
}

var _ mat.Matrix = (*ControlMatrix[float64])(nil)

// NewControlMatrix returns a zero n×n matrix. It panics if n < 0.
func NewControlMatrix[S dynamo.Scalar](n int) *ControlMatrix[S] {
	if n < 0 {
		panic(fmt.Sprintf("control: negative matrix dimension %d", n))
	}
	return &ControlMatrix[S]{n: n, data: make([]S, n*n)}
}

// Identity returns the n×n identity matrix.
func Identity[S dynamo.Scalar](n int) *ControlMatrix[S] {
	m := NewControlMatrix[S](n)
	m.SetIdentity()
	return m
}

func (m *ControlMatrix[S]) Dims() (r, c int) { return m.n, m.n }

// At returns element (i, j) as float64, satisfying mat.Matrix.
func (m *ControlMatrix[S]) At(i, j int) float64 {
	return float64(m.Entry(i, j))
}

func (m *ControlMatrix[S]) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Entry returns element (i, j) in the matrix's own scalar type.
func (m *ControlMatrix[S]) Entry(i, j int) S {
	m.check(i, j)
	return m.data[i*m.n+j]
}

func (m *ControlMatrix[S]) Set(i, j int, v S) {
	m.check(i, j)
	m.data[i*m.n+j] = v
}

func (m *ControlMatrix[S]) SetIdentity() {
	for i := range m.data {
		m.data[i] = 0
	}
	for i := 0; i < m.n; i++ {
		m.data[i*m.n+i] = 1
	}
}

func (m *ControlMatrix[S]) IsIdentity() bool {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			want := S(0)
			if i == j {
				want = 1
			}
			if m.data[i*m.n+j] != want {
				return false
			}
		}
	}
	return true
}

func (m *ControlMatrix[S]) Clone() *ControlMatrix[S] {
	c := &ControlMatrix[S]{n: m.n, data: make([]S, len(m.data))}
	copy(c.data, m.data)
	return c
}

func (m *ControlMatrix[S]) Equal(o *ControlMatrix[S]) bool {
	if m.n != o.n {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Dense copies m into a gonum dense matrix. A 0×0 matrix yields an empty
// Dense, since gonum does not allocate zero-length matrices.
func (m *ControlMatrix[S]) Dense() *mat.Dense {
	if m.n == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.n, m.n, nil)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			d.Set(i, j, float64(m.data[i*m.n+j]))
		}
	}
	return d
}

func (m *ControlMatrix[S]) check(i, j int) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(mat.ErrIndexOutOfRange)
	}
}
