// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   - Small deterministic fixtures for the kernels.
//   - hide forces the interface (non-*Dense) path through AsDense.

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/quantgen/matrix"
	"github.com/stretchr/testify/require"
)

// hide wraps any Matrix to mask its concrete type from type assertions,
// so kernels take the At-based conversion path.
type hide struct{ matrix.Matrix }

// MustDense builds a *Dense from rows or fails the test.
func MustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	d, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return d
}

// MustAt reads (i,j) or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)

	return v
}

// requireClose asserts got and want have the same shape and agree
// element-wise within tol.
func requireClose(t *testing.T, want [][]float64, got matrix.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, len(want), got.Rows(), "rows")
	require.Equal(t, len(want[0]), got.Cols(), "cols")
	for i, row := range want {
		for j, w := range row {
			require.InDeltaf(t, w, MustAt(t, got, i, j), tol, "(%d,%d)", i, j)
		}
	}
}

// requireIdentity asserts m is the identity within tol.
func requireIdentity(t *testing.T, m matrix.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, m.Rows(), m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			require.InDeltaf(t, want, MustAt(t, m, i, j), tol, "(%d,%d)", i, j)
		}
	}
}

var nan = math.NaN()
