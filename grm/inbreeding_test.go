package grm_test

import (
	"testing"

	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbreeding_Summary(t *testing.T) {
	g, err := matrix.FromRows([][]float64{
		{1.2, 0.1, 0.3},
		{0.1, 0.9, 0.2},
		{0.3, 0.2, 1.0},
	})
	require.NoError(t, err)

	s, err := grm.Inbreeding(g)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.2, -0.1, 0}, s.Coefficients, 1e-12)
	assert.InDeltaSlice(t, []float64{0.2, 0.15, 0.25}, s.AverageKinship, 1e-12)
	assert.InDelta(t, 0.1/3, s.MeanInbreeding, 1e-12)
	assert.InDelta(t, -0.1, s.MinInbreeding, 1e-12)
	assert.InDelta(t, 0.2, s.MaxInbreeding, 1e-12)
	assert.Equal(t, 1, s.Inbred)
	assert.Equal(t, 1, s.Outcrossed)
	assert.InDelta(t, 0.2, s.PopulationKinship, 1e-12)
	assert.InDelta(t, 15.0, s.EffectiveSize, 1e-9)
}

func TestInbreeding_NoEffectiveSizeWhenOutbred(t *testing.T) {
	id, err := matrix.Identity(4)
	require.NoError(t, err)
	s, err := grm.Inbreeding(id)
	require.NoError(t, err)
	assert.Zero(t, s.MeanInbreeding)
	assert.Zero(t, s.EffectiveSize)
	assert.Zero(t, s.PopulationKinship)
}

func TestInbreeding_Errors(t *testing.T) {
	_, err := grm.Inbreeding(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)

	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = grm.Inbreeding(rect)
	assert.ErrorIs(t, err, matrix.ErrNonSquare)
}
