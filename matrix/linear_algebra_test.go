// SPDX-License-Identifier: MIT

package matrix_test

import (
	"testing"

	"github.com/katalvlaran/quantgen/matrix"
	"github.com/stretchr/testify/require"
)

func TestProducts(t *testing.T) {
	t.Parallel()
	a := MustDense(t, [][]float64{{1, 2}, {3, 4}})
	b := MustDense(t, [][]float64{{5, 6}, {7, 8}})

	tests := []struct {
		name string
		fn   func(x, y matrix.Matrix) (*matrix.Dense, error)
		want [][]float64
	}{
		{"Add", matrix.Add, [][]float64{{6, 8}, {10, 12}}},
		{"Mul", matrix.Mul, [][]float64{{19, 22}, {43, 50}}},
		{"MulTrans", matrix.MulTrans, [][]float64{{17, 23}, {39, 53}}},
		{"TransMul", matrix.TransMul, [][]float64{{26, 30}, {38, 44}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fn(a, b)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.ToRows())

			// the interface path must agree bit for bit
			hidden, err := tc.fn(hide{a}, hide{b})
			require.NoError(t, err)
			require.Equal(t, tc.want, hidden.ToRows())
		})
	}
}

func TestMulTrans_SelfIsSymmetric(t *testing.T) {
	z := MustDense(t, [][]float64{{1, 2, 0}, {3, 4, 1}, {0, -1, 2}})
	g, err := matrix.MulTrans(z, z)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{5, 11, -2}, {11, 26, -2}, {-2, -2, 5}}, g.ToRows())
}

func TestProducts_ShapeErrors(t *testing.T) {
	a := MustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}}) // 2×3
	b := MustDense(t, [][]float64{{1, 2}, {3, 4}})       // 2×2

	_, err := matrix.Add(a, b)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.MulTrans(a, b)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.TransMul(a, MustDense(t, [][]float64{{1}, {2}, {3}}))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Mul(nil, b)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
	_, err = matrix.TransMul(b, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestTransposeScaleAddDiagonal(t *testing.T) {
	a := MustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})

	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, at.ToRows())

	s, err := matrix.Scale(a, -2)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{-2, -4, -6}, {-8, -10, -12}}, s.ToRows())
	require.Equal(t, 1.0, MustAt(t, a, 0, 0), "input untouched")

	sq := MustDense(t, [][]float64{{1, 2}, {3, 4}})
	r, err := matrix.AddDiagonal(sq, 0.5)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1.5, 2}, {3, 4.5}}, r.ToRows())
	require.Equal(t, 1.0, MustAt(t, sq, 0, 0), "input untouched")

	_, err = matrix.AddDiagonal(a, 1)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
}

func TestMatVecAndTransMatVec(t *testing.T) {
	a := MustDense(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})

	y, err := matrix.MatVec(a, []float64{1, -1})
	require.NoError(t, err)
	require.Equal(t, []float64{-1, -1, -1}, y)

	x, err := matrix.TransMatVec(a, []float64{1, 0, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{6, 8}, x)

	_, err = matrix.MatVec(a, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.TransMatVec(a, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.MatVec(a, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestTraceOfProductAndDot(t *testing.T) {
	a := MustDense(t, [][]float64{{1, 2}, {3, 4}})
	b := MustDense(t, [][]float64{{5, 6}, {7, 8}})
	tr, err := matrix.TraceOfProduct(a, b)
	require.NoError(t, err)
	require.Equal(t, 69.0, tr) // tr(AB) = 19 + 50

	wide := MustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	tall, err := matrix.Transpose(wide)
	require.NoError(t, err)
	tr, err = matrix.TraceOfProduct(wide, tall)
	require.NoError(t, err)
	require.Equal(t, 91.0, tr) // squared Frobenius norm
	_, err = matrix.TraceOfProduct(wide, wide)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	d, err := matrix.Dot([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, 32.0, d)
	_, err = matrix.Dot([]float64{1}, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestEigen_Symmetric(t *testing.T) {
	a := MustDense(t, [][]float64{{4, 1, 0}, {1, 3, 1}, {0, 1, 2}})
	vals, vecs, err := matrix.Eigen(a, 1e-12, 100)
	require.NoError(t, err)
	require.Len(t, vals, 3)

	// A·v_k = λ_k·v_k for every column of Q
	for k, lambda := range vals {
		v := make([]float64, 3)
		for i := range v {
			v[i] = MustAt(t, vecs, i, k)
		}
		av, err := matrix.MatVec(a, v)
		require.NoError(t, err)
		for i := range v {
			require.InDelta(t, lambda*v[i], av[i], 1e-10)
		}
	}

	// the trace is preserved
	require.InDelta(t, 9.0, vals[0]+vals[1]+vals[2], 1e-10)

	// Q is orthogonal
	qtq, err := matrix.TransMul(vecs, vecs)
	require.NoError(t, err)
	requireIdentity(t, qtq, 1e-10)
}

func TestEigen_Errors(t *testing.T) {
	_, _, err := matrix.Eigen(MustDense(t, [][]float64{{1, 2}, {0, 1}}), 1e-12, 10)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)
	_, _, err = matrix.Eigen(MustDense(t, [][]float64{{1, 2, 3}}), 1e-12, 10)
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	// no sweeps allowed on a non-diagonal matrix
	_, _, err = matrix.Eigen(MustDense(t, [][]float64{{2, 1}, {1, 2}}), 1e-12, 0)
	require.ErrorIs(t, err, matrix.ErrEigenFailed)
}
