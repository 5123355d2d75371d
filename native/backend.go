//go:build !purego

// SPDX-License-Identifier: MIT

package native

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quantgen/matrix"
	"gonum.org/v1/gonum/mat"
)

// Available reports whether the gonum kernels are compiled in.
const Available = true

// maxCondition is the condition number above which a factorization is
// treated as singular. It matches the relative pivot tolerance of the
// portable kernels and is checked on equilibrated matrices only.
const maxCondition = 1 / matrix.DefaultPivotTolerance

const (
	opComputeGRM = "native.ComputeGRM"
	opSolveBLUP  = "native.SolveBLUP"
	opSolveGBLUP = "native.SolveGBLUP"
	opEstimate   = "native.EstimateVarianceComponents"
)

// Backend runs the numeric kernels on gonum. The zero value is ready to use
// and safe for concurrent calls.
type Backend struct{}

// New returns the gonum backend.
func New() (*Backend, error) {
	return &Backend{}, nil
}

// Name returns "gonum".
func (*Backend) Name() string { return Name }

// toGonum copies a Dense into a gonum matrix.
func toGonum(m *matrix.Dense) *mat.Dense {
	r, c := m.Rows(), m.Cols()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		row, _ := m.RowView(i)
		data = append(data, row...)
	}

	return mat.NewDense(r, c, data)
}

// toGonumMatrix is toGonum for any matrix.Matrix.
func toGonumMatrix(m matrix.Matrix) (*mat.Dense, error) {
	d, err := matrix.AsDense(m)
	if err != nil {
		return nil, err
	}

	return toGonum(d), nil
}

// fromGonum copies a non-empty gonum matrix back into a Dense.
func fromGonum(m mat.Matrix) *matrix.Dense {
	r, c := m.Dims()
	out, _ := matrix.NewDense(r, c)
	for i := 0; i < r; i++ {
		row, _ := out.RowView(i)
		for j := range row {
			row[j] = m.At(i, j)
		}
	}

	return out
}

// equilibration returns d with d_i = 1/√|m_ii| (1 for a zero diagonal),
// the scaling matrix.Equilibrate uses.
func equilibration(m mat.Matrix) []float64 {
	n, _ := m.Dims()
	d := make([]float64, n)
	for i := range d {
		if v := math.Abs(m.At(i, i)); v > 0 {
			d[i] = 1 / math.Sqrt(v)
		} else {
			d[i] = 1
		}
	}

	return d
}

// scaleDense overwrites m with diag(d)·m·diag(d).
func scaleDense(m *mat.Dense, d []float64) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, m.At(i, j)*d[i]*d[j])
		}
	}
}

func finite(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
