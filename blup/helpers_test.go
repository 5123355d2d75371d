package blup_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/quantgen/matrix"
	"github.com/stretchr/testify/require"
)

func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

func mustIdentity(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	m, err := matrix.Identity(n)
	require.NoError(t, err)

	return m
}

func intercept(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	m, err := matrix.ColumnOf(ones)
	require.NoError(t, err)

	return m
}

func sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}

	return s
}

func requireFinite(t *testing.T, x []float64) {
	t.Helper()
	for i, v := range x {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "index %d is %v", i, v)
	}
}
