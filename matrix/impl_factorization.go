// SPDX-License-Identifier: MIT
// Package matrix: factorization kernels (LU with partial pivoting, Cholesky,
// symmetric pseudo-inverse).
//
// Purpose:
//   - Direct solves for mixed-model equations (LU), covariance inversion and
//     log-determinants (Cholesky), and a never-failing inverse for
//     rank-deficient relationship matrices (PseudoInverse).
//
// Singularity policy:
//   - A pivot p with |p| <= pivotTol·max|A| yields ErrSingular (LU) or
//     ErrNotPositiveDefinite (Cholesky). Both are ordinary error returns; the
//     mixed-model packages turn them into non-converged results.
//   - The tolerance is relative to the largest entry, so callers whose
//     unknowns carry very different units run Equilibrate first.

package matrix

import (
	"fmt"
	"math"
)

// maxAbs returns max |v| over data (0 for an all-zero slice).
func maxAbs(data []float64) float64 {
	var m float64
	for _, v := range data {
		if a := math.Abs(v); a > m {
			m = a
		}
	}

	return m
}

// Equilibrate returns S = D·A·D with D = diag(d), d_i = 1/√|A_ii|, and
// the scale vector d. A zero diagonal entry gets d_i = 1.
// Scaling every row and column to a unit diagonal makes the relative pivot
// tests of LU and Cholesky independent of the units of each unknown.
// Undo it with x = D·(S⁻¹·D·b), A⁻¹ = D·S⁻¹·D and log|A| = log|S| − 2·Σ log d_i.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf.
// Complexity: O(n²).
func Equilibrate(m Matrix) (*Dense, []float64, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opEquilibrate, err)
	}
	if err := ValidateFinite(m); err != nil {
		return nil, nil, matrixErrorf(opEquilibrate, err)
	}
	a, err := AsDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEquilibrate, err)
	}
	d := a.Diagonal()
	for i, v := range d {
		if v = math.Abs(v); v > 0 {
			d[i] = 1 / math.Sqrt(v)
		} else {
			d[i] = 1
		}
	}
	s, err := ScaleSymmetric(a, d)
	if err != nil {
		return nil, nil, matrixErrorf(opEquilibrate, err)
	}

	return s, d, nil
}

// ScaleSymmetric returns diag(d)·A·diag(d) for a square A.
// Errors: ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch.
// Complexity: O(n²).
func ScaleSymmetric(m Matrix, d []float64) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opScaleSym, err)
	}
	if err := ValidateVecLen(d, m.Rows()); err != nil {
		return nil, matrixErrorf(opScaleSym, err)
	}
	out, err := CopyDense(m)
	if err != nil {
		return nil, matrixErrorf(opScaleSym, err)
	}
	n := out.r
	var i, j int
	for i = 0; i < n; i++ {
		row := out.data[i*n : (i+1)*n]
		for j = 0; j < n; j++ {
			row[j] *= d[i] * d[j]
		}
	}

	return out, nil
}

// LUFactors holds a row-pivoted LU factorization P·A = L·U packed in one
// Dense (unit diagonal of L implicit).
type LUFactors struct {
	lu  *Dense
	piv []int // piv[i] = original row placed at position i
}

// LU computes P·A = L·U with partial (row) pivoting.
// Implementation:
//   - Stage 1: Validate square, finite input; copy into a working Dense.
//   - Stage 2: For each column k pick the largest |A[i,k]|, i ≥ k, swap rows,
//     eliminate below the pivot.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNaNInf.
//   - ErrSingular when a pivot is negligible relative to max|A|.
//
// Determinism:
//   - Ties in the pivot search resolve to the smallest row index.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func LU(m Matrix, opts ...Option) (*LUFactors, error) {
	o := gatherOptions(opts...)
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opLU, err)
	}
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opLU, err)
	}
	a, err := CopyDense(m)
	if err != nil {
		return nil, matrixErrorf(opLU, err)
	}

	n := a.r
	piv := make([]int, n)
	for i := range piv {
		piv[i] = i
	}
	threshold := o.pivotTol * maxAbs(a.data)
	if threshold == 0 {
		threshold = math.SmallestNonzeroFloat64
	}

	var i, j, k, p int
	var best, v, f float64
	for k = 0; k < n; k++ {
		// pivot search in column k
		p, best = k, math.Abs(a.data[k*n+k])
		for i = k + 1; i < n; i++ {
			if v = math.Abs(a.data[i*n+k]); v > best {
				p, best = i, v
			}
		}
		if best <= threshold {
			return nil, matrixErrorf(opLU, fmt.Errorf("pivot %d: %w", k, ErrSingular))
		}
		if p != k {
			rk := a.data[k*n : (k+1)*n]
			rp := a.data[p*n : (p+1)*n]
			for j = 0; j < n; j++ {
				rk[j], rp[j] = rp[j], rk[j]
			}
			piv[k], piv[p] = piv[p], piv[k]
		}
		// eliminate below the pivot
		pivot := a.data[k*n+k]
		for i = k + 1; i < n; i++ {
			f = a.data[i*n+k] / pivot
			a.data[i*n+k] = f
			if f == 0 {
				continue
			}
			for j = k + 1; j < n; j++ {
				a.data[i*n+j] -= f * a.data[k*n+j]
			}
		}
	}

	return &LUFactors{lu: a, piv: piv}, nil
}

// Solve returns x with A·x = b using the stored factors.
// Errors: ErrDimensionMismatch when len(b) != n.
// Complexity: O(n²).
func (f *LUFactors) Solve(b []float64) ([]float64, error) {
	n := f.lu.r
	if err := ValidateVecLen(b, n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	x := make([]float64, n)
	f.solveInto(b, x)

	return x, nil
}

// solveInto writes A⁻¹·b into x (len(x) == n); b is not modified.
func (f *LUFactors) solveInto(b, x []float64) {
	n := f.lu.r
	d := f.lu.data
	var i, k int
	var sum float64
	// forward: L·y = P·b (unit diagonal)
	for i = 0; i < n; i++ {
		sum = b[f.piv[i]]
		for k = 0; k < i; k++ {
			sum -= d[i*n+k] * x[k]
		}
		x[i] = sum
	}
	// backward: U·x = y
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= d[i*n+k] * x[k]
		}
		x[i] = sum / d[i*n+i]
	}
}

// Inverse returns A⁻¹ by solving against every unit vector.
// Complexity: O(n³).
func (f *LUFactors) Inverse() *Dense {
	n := f.lu.r
	inv := &Dense{r: n, c: n, data: make([]float64, n*n)}
	e := make([]float64, n)
	x := make([]float64, n)
	for col := 0; col < n; col++ {
		e[col] = 1
		f.solveInto(e, x)
		e[col] = 0
		for i := 0; i < n; i++ {
			inv.data[i*n+col] = x[i]
		}
	}

	return inv
}

// Solve is a convenience wrapper: LU(a) followed by Solve(b).
// Errors: everything LU returns plus ErrDimensionMismatch for b.
func Solve(a Matrix, b []float64, opts ...Option) ([]float64, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	if err := ValidateVecLen(b, a.Rows()); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	f, err := LU(a, opts...)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}

	return f.Solve(b)
}

// Inverse computes A⁻¹ via pivoted LU.
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf, ErrSingular.
// Complexity: O(n³).
func Inverse(m Matrix, opts ...Option) (*Dense, error) {
	f, err := LU(m, opts...)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return f.Inverse(), nil
}

// CholeskyFactor holds the lower-triangular factor L of A = L·Lᵀ.
type CholeskyFactor struct {
	l *Dense
}

// Cholesky factors a symmetric positive definite matrix as A = L·Lᵀ.
// Only the lower triangle of A is read.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNaNInf.
//   - ErrNotPositiveDefinite when a diagonal pivot is not above pivotTol·max|diag(A)|.
//
// Complexity:
//   - Time O(n³/3), Space O(n²).
func Cholesky(m Matrix, opts ...Option) (*CholeskyFactor, error) {
	o := gatherOptions(opts...)
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	a, err := AsDense(m)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}

	n := a.r
	threshold := o.pivotTol * maxAbs(a.Diagonal())
	l := &Dense{r: n, c: n, data: make([]float64, n*n)}
	var i, j, k int
	var sum float64
	for j = 0; j < n; j++ {
		sum = a.data[j*n+j]
		lj := l.data[j*n : j*n+j]
		for k = range lj {
			sum -= lj[k] * lj[k]
		}
		if sum <= threshold {
			return nil, matrixErrorf(opCholesky, fmt.Errorf("pivot %d: %w", j, ErrNotPositiveDefinite))
		}
		djj := math.Sqrt(sum)
		l.data[j*n+j] = djj
		for i = j + 1; i < n; i++ {
			sum = a.data[i*n+j]
			li := l.data[i*n : i*n+j]
			for k = range li {
				sum -= li[k] * lj[k]
			}
			l.data[i*n+j] = sum / djj
		}
	}

	return &CholeskyFactor{l: l}, nil
}

// LogDet returns log|A| = 2·Σ log L[i,i].
func (c *CholeskyFactor) LogDet() float64 {
	n := c.l.r
	var s float64
	for i := 0; i < n; i++ {
		s += math.Log(c.l.data[i*n+i])
	}

	return 2 * s
}

// Solve returns x with A·x = b.
// Complexity: O(n²).
func (c *CholeskyFactor) Solve(b []float64) ([]float64, error) {
	n := c.l.r
	if err := ValidateVecLen(b, n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	d := c.l.data
	x := make([]float64, n)
	var i, k int
	var sum float64
	for i = 0; i < n; i++ { // L·y = b
		sum = b[i]
		for k = 0; k < i; k++ {
			sum -= d[i*n+k] * x[k]
		}
		x[i] = sum / d[i*n+i]
	}
	for i = n - 1; i >= 0; i-- { // Lᵀ·x = y
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= d[k*n+i] * x[k]
		}
		x[i] = sum / d[i*n+i]
	}

	return x, nil
}

// Inverse returns A⁻¹ = L⁻ᵀ·L⁻¹; the result is exactly symmetric.
// Complexity: O(n³).
func (c *CholeskyFactor) Inverse() *Dense {
	n := c.l.r
	d := c.l.data
	// W = L⁻¹, lower triangular, column by column.
	w := make([]float64, n*n)
	var i, j, k int
	var sum float64
	for j = 0; j < n; j++ {
		w[j*n+j] = 1 / d[j*n+j]
		for i = j + 1; i < n; i++ {
			sum = ZeroSum
			for k = j; k < i; k++ {
				sum -= d[i*n+k] * w[k*n+j]
			}
			w[i*n+j] = sum / d[i*n+i]
		}
	}
	// inv[i,j] = Σ_{k ≥ max(i,j)} W[k,i]·W[k,j]
	inv := &Dense{r: n, c: n, data: make([]float64, n*n)}
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			sum = ZeroSum
			for k = j; k < n; k++ {
				sum += w[k*n+i] * w[k*n+j]
			}
			inv.data[i*n+j] = sum
			inv.data[j*n+i] = sum
		}
	}

	return inv
}

// InverseSPD inverts a symmetric positive definite matrix through Cholesky.
// It also returns log|A| so callers computing likelihoods factor only once.
// Errors: as Cholesky.
func InverseSPD(m Matrix, opts ...Option) (*Dense, float64, error) {
	c, err := Cholesky(m, opts...)
	if err != nil {
		return nil, 0, matrixErrorf(opInverse, err)
	}

	return c.Inverse(), c.LogDet(), nil
}

// PseudoInverse returns the Moore–Penrose inverse of a symmetric matrix
// from its Jacobi eigen decomposition: A⁺ = Σ_{λ_i > tol·max|λ|} v_i v_iᵀ / λ_i.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNaNInf, ErrAsymmetry.
//   - ErrEigenFailed if the sweeps do not converge.
//
// Complexity:
//   - Time O(sweeps·n³), Space O(n²).
func PseudoInverse(m Matrix, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opPinv, err)
	}
	d, err := AsDense(m)
	if err != nil {
		return nil, matrixErrorf(opPinv, err)
	}
	var frob float64
	for _, v := range d.data {
		frob += v * v
	}
	frob = math.Sqrt(frob)

	n := d.r
	out := &Dense{r: n, c: d.c, data: make([]float64, len(d.data))}
	if frob == 0 {
		return out, nil // pinv(0) = 0
	}
	vals, vecs, err := Eigen(m, o.eigenTol*frob, o.maxSweeps)
	if err != nil {
		return nil, matrixErrorf(opPinv, err)
	}

	cut := o.eigenTol * maxAbs(vals) * float64(n)
	var i, j, k int
	var inv float64
	for k = 0; k < n; k++ {
		if math.Abs(vals[k]) <= cut {
			continue
		}
		inv = 1 / vals[k]
		for i = 0; i < n; i++ {
			vik := vecs.data[i*n+k] * inv
			if vik == 0 {
				continue
			}
			for j = 0; j < n; j++ {
				out.data[i*n+j] += vik * vecs.data[j*n+k]
			}
		}
	}

	return out, nil
}
