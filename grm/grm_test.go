package grm_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompute_VanRaden1SmallPanel checks shape, symmetry and diagonal scale
// of a 5×4 panel, plus two hand-computed cells.
func TestCompute_VanRaden1SmallPanel(t *testing.T) {
	res, err := grm.Compute(smallPanel(t), grm.VanRaden1)
	require.NoError(t, err)
	assert.Equal(t, grm.VanRaden1, res.Method)
	assert.Equal(t, 5, res.Individuals)
	assert.Equal(t, 4, res.Markers)
	require.Equal(t, 5, res.Matrix.Rows())
	require.Equal(t, 5, res.Matrix.Cols())
	requireSymmetric(t, res.Matrix)

	diag := res.Matrix.Diagonal()
	mean := matrix.Mean(diag)
	assert.GreaterOrEqual(t, mean, 0.5)
	assert.LessOrEqual(t, mean, 1.5)

	// p = (0.4, 0.5, 0.6, 0.6); Σ2p(1−p) = 1.94.
	g00, _ := res.Matrix.At(0, 0)
	assert.InDelta(t, 1.32/1.94, g00, 1e-12)
	g01, _ := res.Matrix.At(0, 1)
	assert.InDelta(t, -1.28/1.94, g01, 1e-12)
}

// TestCompute_AllMethodsSymmetric runs every estimator on a random panel.
func TestCompute_AllMethodsSymmetric(t *testing.T) {
	panel := randomPanel(t, 40, 200, 7)
	for _, method := range []grm.Method{grm.VanRaden1, grm.VanRaden2, grm.Yang} {
		t.Run(method.String(), func(t *testing.T) {
			res, err := grm.Compute(panel, method)
			require.NoError(t, err)
			requireSymmetric(t, res.Matrix)
			mean := matrix.Mean(res.Matrix.Diagonal())
			assert.InDelta(t, 1.0, mean, 0.25, "diagonal should average near 1")
		})
	}
}

// TestCompute_FixedLociFinite verifies monomorphic markers never produce NaN or Inf.
func TestCompute_FixedLociFinite(t *testing.T) {
	panel, err := matrix.FromRows([][]float64{
		{0, 2, 1, 0},
		{0, 2, 0, 0},
		{0, 2, 2, 0},
	})
	require.NoError(t, err)
	for _, method := range []grm.Method{grm.VanRaden1, grm.VanRaden2, grm.Yang} {
		res, err := grm.Compute(panel, method)
		require.NoError(t, err, method.String())
		assert.NoError(t, matrix.ValidateFinite(res.Matrix), method.String())
	}
}

// TestCompute_AllFixed checks the VanRaden1 denominator guard: every locus
// fixed gives an all-zero matrix instead of 0/0.
func TestCompute_AllFixed(t *testing.T) {
	panel, err := matrix.FromRows([][]float64{{2, 0}, {2, 0}})
	require.NoError(t, err)
	res, err := grm.Compute(panel, grm.VanRaden1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}}, res.Matrix.ToRows())
}

// TestCompute_MissingCallsImputed treats NaN as the column mean.
func TestCompute_MissingCallsImputed(t *testing.T) {
	withMissing, err := matrix.FromRows([][]float64{
		{0, 1},
		{math.NaN(), 2},
		{2, 0},
	})
	require.NoError(t, err)
	imputed, err := matrix.FromRows([][]float64{
		{0, 1},
		{1, 2},
		{2, 0},
	})
	require.NoError(t, err)

	a, err := grm.Compute(withMissing, grm.VanRaden1)
	require.NoError(t, err)
	b, err := grm.Compute(imputed, grm.VanRaden1)
	require.NoError(t, err)
	assert.True(t, cmp.Equal(a.Matrix.ToRows(), b.Matrix.ToRows(), cmpopts.EquateApprox(0, 1e-12)))
}

// TestCompute_WorkerInvariance requires bit-identical output for any worker count.
func TestCompute_WorkerInvariance(t *testing.T) {
	panel := randomPanel(t, 70, 120, 42)
	base, err := grm.Compute(panel, grm.Yang, grm.WithWorkers(1))
	require.NoError(t, err)
	for _, w := range []int{2, 3, 4, 8} {
		res, err := grm.Compute(panel, grm.Yang, grm.WithWorkers(w))
		require.NoError(t, err)
		assert.Equal(t, base.Matrix.ToRows(), res.Matrix.ToRows(), "workers=%d", w)
	}
}

// TestStandardize_ProductMatchesCompute rebuilds G as ZZᵀ/divisor from the
// standardized matrix, the path alternative product kernels take.
func TestStandardize_ProductMatchesCompute(t *testing.T) {
	panel := randomPanel(t, 25, 60, 3)
	for _, method := range []grm.Method{grm.VanRaden1, grm.VanRaden2, grm.Yang} {
		t.Run(method.String(), func(t *testing.T) {
			z, divisor, err := grm.Standardize(panel, method)
			require.NoError(t, err)
			require.Equal(t, 25, z.Rows())
			require.Equal(t, 60, z.Cols())
			require.Greater(t, divisor, 0.0)

			zzt, err := matrix.MulTrans(z, z)
			require.NoError(t, err)
			g, err := matrix.Scale(zzt, 1/divisor)
			require.NoError(t, err)

			res, err := grm.Compute(panel, method)
			require.NoError(t, err)
			opt := cmpopts.EquateApprox(0, 1e-12)
			if diff := cmp.Diff(res.Matrix.ToRows(), g.ToRows(), opt); diff != "" {
				t.Fatalf("ZZᵀ/divisor differs from Compute (-want +got):\n%s", diff)
			}
		})
	}

	_, _, err := grm.Standardize(panel, grm.Method(99))
	require.ErrorIs(t, err, grm.ErrUnknownMethod)
	_, _, err = grm.Standardize(nil, grm.Yang)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestCompute_Ploidy checks tetraploid dosages are accepted only with WithPloidy(4).
func TestCompute_Ploidy(t *testing.T) {
	panel, err := matrix.FromRows([][]float64{{0, 4}, {3, 1}, {4, 2}})
	require.NoError(t, err)

	_, err = grm.Compute(panel, grm.VanRaden1)
	assert.ErrorIs(t, err, grm.ErrInvalidDosage)

	res, err := grm.Compute(panel, grm.VanRaden1, grm.WithPloidy(4))
	require.NoError(t, err)
	requireSymmetric(t, res.Matrix)
}

// TestCompute_Errors covers malformed input and unknown methods.
func TestCompute_Errors(t *testing.T) {
	_, err := grm.Compute(nil, grm.VanRaden1)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)

	_, err = grm.Compute(smallPanel(t), grm.Method(99))
	assert.ErrorIs(t, err, grm.ErrUnknownMethod)

	bad, err := matrix.FromRows([][]float64{{0, 1}, {math.Inf(1), 2}})
	require.NoError(t, err)
	_, err = grm.Compute(bad, grm.VanRaden1)
	assert.ErrorIs(t, err, grm.ErrInvalidDosage)

	neg, err := matrix.FromRows([][]float64{{0, -1}, {1, 2}})
	require.NoError(t, err)
	_, err = grm.Compute(neg, grm.VanRaden1)
	assert.ErrorIs(t, err, grm.ErrInvalidDosage)
}

// TestAlleleFrequencies verifies p = mean/ploidy over observed calls only.
func TestAlleleFrequencies(t *testing.T) {
	panel, err := matrix.FromRows([][]float64{
		{0, 2, math.NaN()},
		{2, 2, math.NaN()},
		{1, 2, math.NaN()},
	})
	require.NoError(t, err)
	p, err := grm.AlleleFrequencies(panel)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 0}, p)
}

// TestParseMethod covers names, aliases and the error path.
func TestParseMethod(t *testing.T) {
	cases := map[string]grm.Method{
		"vanraden1": grm.VanRaden1,
		"VanRaden":  grm.VanRaden1,
		"vr2":       grm.VanRaden2,
		" yang ":    grm.Yang,
		"GCTA":      grm.Yang,
	}
	for in, want := range cases {
		got, err := grm.ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := grm.ParseMethod("ibs")
	assert.ErrorIs(t, err, grm.ErrUnknownMethod)
	assert.Equal(t, "Method(7)", grm.Method(7).String())
}

// TestOptions_Panics checks programmer-error options panic eagerly.
func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { grm.WithPloidy(0) })
	assert.Panics(t, func() { grm.WithWorkers(-1) })
	assert.Panics(t, func() { grm.WithEpsilon(math.NaN()) })
}
