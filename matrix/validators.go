// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels and the mixed-model packages minimal by delegating
//    shape/nil/finite checks here.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.
//  - Symmetry check runs O(n²) on the upper triangle only.
//
// Note:
//  - Each composite validator follows a fixed sequence (NotNil → Shape → Values).

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// A typed nil *Dense stored in the interface is rejected as well.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
// Complexity: O(1).
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateSquare", err)
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", fmt.Errorf("%dx%d: %w", m.Rows(), m.Cols(), ErrNonSquare))
	}

	return nil
}

// ValidateShape checks that m is non-nil and exactly rows×cols.
// A negative rows or cols skips that dimension.
// Complexity: O(1).
func ValidateShape(m Matrix, rows, cols int) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateShape", err)
	}
	if rows >= 0 && m.Rows() != rows {
		return validatorErrorf("ValidateShape", fmt.Errorf("rows %d, want %d: %w", m.Rows(), rows, ErrDimensionMismatch))
	}
	if cols >= 0 && m.Cols() != cols {
		return validatorErrorf("ValidateShape", fmt.Errorf("cols %d, want %d: %w", m.Cols(), cols, ErrDimensionMismatch))
	}

	return nil
}

// ValidateVecLen ensures the vector length matches the required size n.
// Time: O(1). Space: O(1).
func ValidateVecLen(x []float64, n int) error {
	if x == nil {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix) // reuse the "nil argument" sentinel
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", fmt.Errorf("len %d, want %d: %w", len(x), n, ErrDimensionMismatch))
	}

	return nil
}

// ValidateMulCompatible checks a.Cols == b.Rows for a product a*b.
// Complexity: O(1).
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf("ValidateMulCompatible", fmt.Errorf("%dx%d * %dx%d: %w",
			a.Rows(), a.Cols(), b.Rows(), b.Cols(), ErrDimensionMismatch))
	}

	return nil
}

// ValidateFinite scans m and returns ErrNaNInf on the first NaN or ±Inf.
// Complexity: O(r*c).
func ValidateFinite(m Matrix) error {
	d, err := AsDense(m)
	if err != nil {
		return validatorErrorf("ValidateFinite", err)
	}
	for idx, v := range d.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf("ValidateFinite", fmt.Errorf("(%d,%d): %w", idx/d.c, idx%d.c, ErrNaNInf))
		}
	}

	return nil
}

// ValidateFiniteVec is ValidateFinite for plain vectors.
func ValidateFiniteVec(x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf("ValidateFiniteVec", fmt.Errorf("[%d]: %w", i, ErrNaNInf))
		}
	}

	return nil
}

// ValidateSymmetric checks A is symmetric within tolerance tol:
// |A[i,j] - A[j,i]| ≤ tol for all i<j.
// Complexity: O(n^2) where n = Rows(A). Space: O(1).
// Returns ErrNilMatrix/ErrNonSquare on structural issues, ErrNaNInf on bad tol,
// ErrAsymmetry on violation.
func ValidateSymmetric(m Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	tol = math.Abs(tol)

	d, err := AsDense(m)
	if err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}
	n := d.r
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ { // upper triangle only
			if math.Abs(d.data[i*n+j]-d.data[j*n+i]) > tol {
				return validatorErrorf("ValidateSymmetric", fmt.Errorf("(%d,%d): %w", i, j, ErrAsymmetry))
			}
		}
	}

	return nil
}

// ValidateMixedModel checks the inputs of a mixed model y = Xβ + Zu + e with
// a q×q covariance-structure matrix S (A or A⁻¹): presence, conformance
// (y: n, X: n×p, Z: n×q, S: q×q) and finiteness, in that order.
// Errors name the offending argument and wrap ErrNilMatrix,
// ErrDimensionMismatch or ErrNaNInf.
// Complexity: O(n·(p+q) + q²).
func ValidateMixedModel(y []float64, X, Z, S Matrix) error {
	if err := ValidateNotNil(X); err != nil {
		return fmt.Errorf("X: %w", err)
	}
	n := X.Rows()
	if err := ValidateVecLen(y, n); err != nil {
		return fmt.Errorf("y: %w", err)
	}
	if err := ValidateShape(Z, n, -1); err != nil {
		return fmt.Errorf("Z: %w", err)
	}
	q := Z.Cols()
	if err := ValidateShape(S, q, q); err != nil {
		return fmt.Errorf("S: %w", err)
	}
	if err := ValidateFiniteVec(y); err != nil {
		return fmt.Errorf("y: %w", err)
	}
	names := [...]string{"X", "Z", "S"}
	for i, m := range [...]Matrix{X, Z, S} {
		if err := ValidateFinite(m); err != nil {
			return fmt.Errorf("%s: %w", names[i], err)
		}
	}

	return nil
}
