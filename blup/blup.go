// SPDX-License-Identifier: MIT

package blup

import (
	"fmt"

	"github.com/katalvlaran/quantgen/matrix"
)

const (
	opSolve        = "blup.Solve"
	opSolveGenomic = "blup.SolveGenomic"
	opSolveFromGRM = "blup.SolveGenomicFromGRM"
)

// Solve computes β and û from Henderson's mixed-model equations.
//
// Shapes: y has length n, X is n×p, Z is n×q and Ainv (A⁻¹) is q×q.
// varA and varE must be positive and finite; λ = varE/varA.
//
// Errors:
//   - ErrInvalidVariance for a non-positive or non-finite component.
//   - matrix.ErrNilMatrix / matrix.ErrDimensionMismatch / matrix.ErrNaNInf
//     for malformed inputs.
//
// A singular or ill-conditioned system is not an error: the returned Result
// has zero vectors and Converged=false.
//
// Complexity: O(n·(p+q)² + (p+q)³).
func Solve(y []float64, X, Z, Ainv matrix.Matrix, varA, varE float64) (*Result, error) {
	if !validVariance(varA) || !validVariance(varE) {
		return nil, fmt.Errorf("%s: varA=%g varE=%g: %w", opSolve, varA, varE, ErrInvalidVariance)
	}
	x, z, aInv, err := validateMME(y, X, Z, Ainv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	lambda := varE / varA

	// diag(A) for the reliability; unit diagonal when A⁻¹ cannot be inverted.
	var aDiag []float64
	if a, invErr := matrix.Inverse(aInv); invErr == nil {
		aDiag = a.Diagonal()
	}

	sys, err := assemble(y, x, z, aInv, lambda)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	res, ok := sys.solve(lambda, aDiag)
	if !ok {
		return failed(make([]float64, x.Cols()), z.Cols()), nil
	}

	return res, nil
}

// validateMME checks the MME inputs and returns their Dense forms.
func validateMME(y []float64, X, Z, Ainv matrix.Matrix) (x, z, aInv *matrix.Dense, err error) {
	if err = matrix.ValidateMixedModel(y, X, Z, Ainv); err != nil {
		return nil, nil, nil, err
	}
	if x, err = matrix.AsDense(X); err != nil {
		return nil, nil, nil, err
	}
	if z, err = matrix.AsDense(Z); err != nil {
		return nil, nil, nil, err
	}
	if aInv, err = matrix.AsDense(Ainv); err != nil {
		return nil, nil, nil, err
	}

	return x, z, aInv, nil
}
