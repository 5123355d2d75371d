// SPDX-License-Identifier: MIT
// Package matrix provides the dense kernels used by the portable compute
// backend: products (A·B, A·Bᵀ, Aᵀ·B), transpose, scaling, diagonal
// updates, matrix-vector products and the symmetric Jacobi eigen solver.
//
// Purpose:
//   - Canonical, deterministic kernels; every loop runs in a fixed order so
//     identical inputs always produce bit-identical outputs.
//   - All kernels validate first and allocate a fresh result; inputs are
//     never mutated.
//
// Notes:
//   - Kernels convert operands with AsDense once and then work on flat
//     row-major buffers.
//   - Errors are wrapped exactly once with matrixErrorf(op, err).

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial sum value for dot products and substitutions.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd         = "Add"
	opMul         = "Mul"
	opMulTrans    = "MulTrans"
	opTransMul    = "TransMul"
	opTranspose   = "Transpose"
	opScale       = "Scale"
	opAddDiagonal = "AddDiagonal"
	opMatVec      = "MatVec"
	opTransMatVec = "TransMatVec"
	opTraceProd   = "TraceOfProduct"
	opEigen       = "Eigen"
	opInverse     = "Inverse"
	opLU          = "LU"
	opSolve       = "Solve"
	opCholesky    = "Cholesky"
	opPinv        = "PseudoInverse"
	opEquilibrate = "Equilibrate"
	opScaleSym    = "ScaleSymmetric"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Add computes the element-wise sum C = A + B into a fresh Dense.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c).
func Add(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	if err := ValidateShape(b, a.Rows(), a.Cols()); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	da, err := AsDense(a)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	db, err := AsDense(b)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	res := &Dense{r: da.r, c: da.c, data: make([]float64, len(da.data))}
	for idx := range res.data { // deterministic 0..n-1
		res.data[idx] = da.data[idx] + db.data[idx]
	}

	return res, nil
}

// Mul computes the matrix product C = A × B.
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b).
//   - Stage 2: i→k→j loop order so the inner loop streams a row of B and a
//     row of C; zero entries of A are skipped (design matrices are sparse-ish).
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(r·n·c), Space O(r·c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, err := AsDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := AsDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	r, n, c := da.r, da.c, db.c
	res := &Dense{r: r, c: c, data: make([]float64, r*c)}
	var i, k, j int
	var aik float64
	for i = 0; i < r; i++ {
		out := res.data[i*c : (i+1)*c]
		for k = 0; k < n; k++ {
			aik = da.data[i*n+k]
			if aik == 0 {
				continue
			}
			row := db.data[k*c : (k+1)*c]
			for j = 0; j < c; j++ {
				out[j] += aik * row[j]
			}
		}
	}

	return res, nil
}

// MulTrans computes C = A × Bᵀ without materializing Bᵀ.
// Both operands must have the same number of columns. When a and b are the
// same matrix the result is symmetric and only the upper triangle is
// computed, then mirrored.
// Complexity: Time O(r_a·r_b·c), Space O(r_a·r_b).
func MulTrans(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMulTrans, err)
	}
	if err := ValidateShape(b, -1, a.Cols()); err != nil {
		return nil, matrixErrorf(opMulTrans, err)
	}
	da, err := AsDense(a)
	if err != nil {
		return nil, matrixErrorf(opMulTrans, err)
	}
	db, err := AsDense(b)
	if err != nil {
		return nil, matrixErrorf(opMulTrans, err)
	}

	r, n, c := da.r, db.r, da.c
	same := da == db
	res := &Dense{r: r, c: n, data: make([]float64, r*n)}
	var i, j, k, jStart int
	var sum float64
	for i = 0; i < r; i++ {
		ai := da.data[i*c : (i+1)*c]
		jStart = 0
		if same {
			jStart = i
		}
		for j = jStart; j < n; j++ {
			bj := db.data[j*c : (j+1)*c]
			sum = ZeroSum
			for k = 0; k < c; k++ {
				sum += ai[k] * bj[k]
			}
			res.data[i*n+j] = sum
			if same {
				res.data[j*n+i] = sum
			}
		}
	}

	return res, nil
}

// TransMul computes C = Aᵀ × B without materializing Aᵀ.
// Both operands must have the same number of rows.
// Complexity: Time O(r·c_a·c_b), Space O(c_a·c_b).
func TransMul(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opTransMul, err)
	}
	if err := ValidateShape(b, a.Rows(), -1); err != nil {
		return nil, matrixErrorf(opTransMul, err)
	}
	da, err := AsDense(a)
	if err != nil {
		return nil, matrixErrorf(opTransMul, err)
	}
	db, err := AsDense(b)
	if err != nil {
		return nil, matrixErrorf(opTransMul, err)
	}

	r, ca, cb := da.r, da.c, db.c
	res := &Dense{r: ca, c: cb, data: make([]float64, ca*cb)}
	var i, p, j int
	var aip float64
	for i = 0; i < r; i++ { // accumulate outer products row by row
		arow := da.data[i*ca : (i+1)*ca]
		brow := db.data[i*cb : (i+1)*cb]
		for p = 0; p < ca; p++ {
			aip = arow[p]
			if aip == 0 {
				continue
			}
			out := res.data[p*cb : (p+1)*cb]
			for j = 0; j < cb; j++ {
				out[j] += aip * brow[j]
			}
		}
	}

	return res, nil
}

// Transpose returns a new Dense Aᵀ.
// Complexity: O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	d, err := AsDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	res := &Dense{r: d.c, c: d.r, data: make([]float64, len(d.data))}
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			res.data[j*d.r+i] = d.data[i*d.c+j]
		}
	}

	return res, nil
}

// Scale returns alpha·A as a fresh Dense.
// Complexity: O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	d, err := AsDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res := &Dense{r: d.r, c: d.c, data: make([]float64, len(d.data))}
	for idx, v := range d.data {
		res.data[idx] = alpha * v
	}

	return res, nil
}

// AddDiagonal returns A + alpha·I for a square A as a fresh Dense.
// This is the ridge step used to regularize relationship matrices.
// Errors: ErrNilMatrix, ErrNonSquare.
// Complexity: O(n²) for the copy, O(n) for the update.
func AddDiagonal(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opAddDiagonal, err)
	}
	res, err := CopyDense(m)
	if err != nil {
		return nil, matrixErrorf(opAddDiagonal, err)
	}
	n := res.r
	for i := 0; i < n; i++ {
		res.data[i*n+i] += alpha
	}

	return res, nil
}

// MatVec computes y = A·x.
// Errors: ErrNilMatrix (nil A or x), ErrDimensionMismatch (len(x) != Cols).
// Complexity: O(r*c).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	d, err := AsDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err = ValidateVecLen(x, d.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, d.r)
	var i, j int
	var acc float64
	for i = 0; i < d.r; i++ {
		acc = ZeroSum
		row := d.data[i*d.c : (i+1)*d.c]
		for j = 0; j < d.c; j++ {
			acc += row[j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// TransMatVec computes y = Aᵀ·x without materializing Aᵀ.
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != Rows).
// Complexity: O(r*c).
func TransMatVec(m Matrix, x []float64) ([]float64, error) {
	d, err := AsDense(m)
	if err != nil {
		return nil, matrixErrorf(opTransMatVec, err)
	}
	if err = ValidateVecLen(x, d.r); err != nil {
		return nil, matrixErrorf(opTransMatVec, err)
	}
	y := make([]float64, d.c)
	var i, j int
	var xi float64
	for i = 0; i < d.r; i++ {
		xi = x[i]
		if xi == 0 {
			continue
		}
		row := d.data[i*d.c : (i+1)*d.c]
		for j = 0; j < d.c; j++ {
			y[j] += row[j] * xi
		}
	}

	return y, nil
}

// TraceOfProduct returns tr(A·B) = Σ_ij A[i,j]·B[j,i] without forming A·B.
// A must be r×c and B c×r.
// Complexity: O(r*c).
func TraceOfProduct(a, b Matrix) (float64, error) {
	if err := ValidateNotNil(a); err != nil {
		return 0, matrixErrorf(opTraceProd, err)
	}
	if err := ValidateShape(b, a.Cols(), a.Rows()); err != nil {
		return 0, matrixErrorf(opTraceProd, err)
	}
	da, err := AsDense(a)
	if err != nil {
		return 0, matrixErrorf(opTraceProd, err)
	}
	db, err := AsDense(b)
	if err != nil {
		return 0, matrixErrorf(opTraceProd, err)
	}
	var sum float64
	var i, j int
	for i = 0; i < da.r; i++ {
		for j = 0; j < da.c; j++ {
			sum += da.data[i*da.c+j] * db.data[j*db.c+i]
		}
	}

	return sum, nil
}

// Dot returns Σ x[i]·y[i]. Lengths must match.
func Dot(x, y []float64) (float64, error) {
	if err := ValidateVecLen(y, len(x)); err != nil {
		return 0, matrixErrorf("Dot", err)
	}
	var sum float64
	for i := range x {
		sum += x[i] * y[i]
	}

	return sum, nil
}

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix via Jacobi rotations.
// Implementation:
//   - Stage 1: Validate symmetric square input within tol.
//   - Stage 2: Cyclic sweeps over the strict upper triangle; each (p,q) with
//     |A[p,q]| > tol is annihilated by one rotation, accumulated into Q.
//   - Stage 3: Stop when the off-diagonal Frobenius mass falls below tol.
//
// Returns:
//   - []float64: eigenvalues (diagonal of the rotated matrix), unsorted.
//   - *Dense: Q whose columns are the matching eigenvectors.
//
// Errors:
//   - ErrNonSquare, ErrAsymmetry, ErrEigenFailed (not converged after maxSweeps).
//
// Determinism:
//   - Fixed p→q sweep order produces stable results.
//
// Complexity:
//   - Time O(maxSweeps · n³), Space O(n²).
func Eigen(m Matrix, tol float64, maxSweeps int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, math.Max(tol, DefaultSymmetryTolerance)); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	a, err := CopyDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := a.r
	q, _ := Identity(n) // n > 0 is guaranteed by the validated Dense

	var (
		sweep, p, r, i     int
		app, aqq, apq, off float64
		theta, t, c, s     float64
		aip, aiq, qip, qiq float64
	)
	for sweep = 0; sweep < maxSweeps; sweep++ {
		off = 0
		for p = 0; p < n; p++ {
			for r = p + 1; r < n; r++ {
				off += a.data[p*n+r] * a.data[p*n+r]
			}
		}
		if math.Sqrt(off) < tol {
			break
		}
		for p = 0; p < n-1; p++ {
			for r = p + 1; r < n; r++ {
				apq = a.data[p*n+r]
				if math.Abs(apq) <= tol*1e-3 {
					continue // negligible; a rotation here would only add noise
				}
				app = a.data[p*n+p]
				aqq = a.data[r*n+r]
				theta = (aqq - app) / (2 * apq)
				t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
				c = 1.0 / math.Sqrt(t*t+1)
				s = t * c

				for i = 0; i < n; i++ {
					if i == p || i == r {
						continue
					}
					aip = a.data[i*n+p]
					aiq = a.data[i*n+r]
					a.data[i*n+p] = c*aip - s*aiq
					a.data[p*n+i] = a.data[i*n+p]
					a.data[i*n+r] = s*aip + c*aiq
					a.data[r*n+i] = a.data[i*n+r]
				}
				a.data[p*n+p] = app - t*apq
				a.data[r*n+r] = aqq + t*apq
				a.data[p*n+r], a.data[r*n+p] = 0, 0

				for i = 0; i < n; i++ {
					qip = q.data[i*n+p]
					qiq = q.data[i*n+r]
					q.data[i*n+p] = c*qip - s*qiq
					q.data[i*n+r] = s*qip + c*qiq
				}
			}
		}
	}

	off = 0
	for p = 0; p < n; p++ {
		for r = p + 1; r < n; r++ {
			off += a.data[p*n+r] * a.data[p*n+r]
		}
	}
	if math.Sqrt(off) >= tol {
		return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
	}

	return a.Diagonal(), q, nil
}
