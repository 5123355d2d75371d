// SPDX-License-Identifier: MIT

package blup

import "errors"

var (
	// ErrInvalidVariance is returned when a variance component is not a
	// positive finite number.
	ErrInvalidVariance = errors.New("blup: variance components must be positive and finite")

	// ErrInvalidHeritability is returned when h² is outside the open interval (0, 1).
	ErrInvalidHeritability = errors.New("blup: heritability must be in (0, 1)")
)

// Ridge is added to the GRM diagonal before inversion in GBLUP.
const Ridge = 0.001

// Result holds the solution of the mixed-model equations.
// Every field is always populated; all slices are owned by the caller.
type Result struct {
	// FixedEffects are the β estimates (length p; length 1 for GBLUP).
	FixedEffects []float64
	// BreedingValues are the predicted random effects û (length q).
	BreedingValues []float64
	// Reliability is r²_i = 1 − PEV_i/(A_ii·σ²_a) clamped to [0, 1];
	// all zero when the solve failed.
	Reliability []float64
	// Converged is false when the system was singular or ill-conditioned.
	Converged bool
	// Iterations is 0 for the direct solve.
	Iterations int
}

// failed builds the well-defined fallback result for a failed solve.
func failed(fixed []float64, q int) *Result {
	return &Result{
		FixedEffects:   fixed,
		BreedingValues: make([]float64, q),
		Reliability:    make([]float64, q),
		Converged:      false,
	}
}
