package grm_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/quantgen/matrix"
	"github.com/stretchr/testify/require"
)

// smallPanel is a 5×4 diploid panel with every locus polymorphic.
func smallPanel(t *testing.T) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows([][]float64{
		{0, 1, 2, 1},
		{1, 1, 0, 2},
		{2, 0, 1, 1},
		{1, 2, 1, 0},
		{0, 1, 2, 2},
	})
	require.NoError(t, err)

	return m
}

// randomPanel draws an n×m diploid panel in Hardy-Weinberg proportions from
// a fixed seed; allele frequencies are uniform on [0.1, 0.9].
func randomPanel(t *testing.T, n, m int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	freqs := make([]float64, m)
	for k := range freqs {
		freqs[k] = 0.1 + 0.8*rng.Float64()
	}
	d, err := matrix.NewDense(n, m)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		for k, p := range freqs {
			var dosage float64
			for c := 0; c < 2; c++ {
				if rng.Float64() < p {
					dosage++
				}
			}
			require.NoError(t, d.Set(i, k, dosage))
		}
	}

	return d
}

func requireSymmetric(t *testing.T, g *matrix.Dense) {
	t.Helper()
	require.NoError(t, matrix.ValidateSymmetric(g, 1e-12))
}
