package blup

import (
	"testing"

	"github.com/katalvlaran/quantgen/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

func TestAssemble_Blocks(t *testing.T) {
	y := []float64{1, 2, 3}
	x := mustDense(t, [][]float64{{1, 0}, {1, 1}, {1, 2}})
	z := mustDense(t, [][]float64{{1, 0}, {0, 1}, {1, 0}})
	aInv := mustDense(t, [][]float64{{2, -1}, {-1, 2}})

	sys, err := assemble(y, x, z, aInv, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, sys.p)
	assert.Equal(t, 2, sys.q)
	assert.Equal(t, [][]float64{
		{3, 3, 2, 1},
		{3, 5, 2, 1},
		{2, 2, 3, -0.5},
		{1, 1, -0.5, 2},
	}, sys.c.ToRows())
	assert.Equal(t, []float64{6, 8, 4, 2}, sys.rhs)
}

// TestSystemSolve_UndoesScaling compares the equilibrated solve with a
// plain solve of the same equations.
func TestSystemSolve_UndoesScaling(t *testing.T) {
	y := []float64{1, 2, 3}
	x := mustDense(t, [][]float64{{1, 0}, {1, 10}, {1, 20}})
	z := mustDense(t, [][]float64{{1, 0}, {0, 1}, {1, 0}})
	aInv := mustDense(t, [][]float64{{2, -1}, {-1, 2}})
	const lambda = 0.5

	sys, err := assemble(y, x, z, aInv, lambda)
	require.NoError(t, err)
	res, ok := sys.solve(lambda, nil)
	require.True(t, ok)

	want, err := matrix.Solve(sys.c, sys.rhs)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want[:2], res.FixedEffects, 1e-12)
	assert.InDeltaSlice(t, want[2:], res.BreedingValues, 1e-12)

	cInv, err := matrix.Inverse(sys.c)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		cii, err := cInv.At(2+i, 2+i)
		require.NoError(t, err)
		assert.InDelta(t, clamp01(1-lambda*cii), res.Reliability[i], 1e-12)
	}
}
