// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the factorization kernels.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that applies them over the defaults.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Safe by construction: panic only on invalid parameters (programmer error).
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultPivotTolerance is the relative pivot threshold of LU and Cholesky:
	// a pivot p with |p| <= tol·max|A| marks the matrix singular or too
	// ill-conditioned to trust the solve.
	DefaultPivotTolerance = 1e-12

	// DefaultSymmetryTolerance is the absolute tolerance used when a kernel
	// requires a symmetric input (Eigen, PseudoInverse).
	DefaultSymmetryTolerance = 1e-9

	// DefaultEigenTolerance is the relative off-diagonal mass at which the
	// Jacobi sweeps of PseudoInverse stop, and the relative cut-off below
	// which eigenvalues are treated as zero.
	DefaultEigenTolerance = 1e-12

	// DefaultMaxSweeps caps the Jacobi sweeps of PseudoInverse.
	DefaultMaxSweeps = 100
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicPivotToleranceInvalid = "matrix: WithPivotTolerance: tol must be finite, non-negative"
	panicEigenToleranceInvalid = "matrix: WithEigenTolerance: tol must be finite, positive"
	panicMaxSweepsInvalid      = "matrix: WithMaxSweeps: sweeps must be > 0"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option`.
type Options struct {
	pivotTol  float64
	eigenTol  float64
	maxSweeps int
}

// WithPivotTolerance sets the relative pivot threshold for LU/Cholesky.
// Panics when tol is negative, NaN or Inf.
func WithPivotTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		panic(panicPivotToleranceInvalid)
	}

	return func(o *Options) { o.pivotTol = tol }
}

// WithEigenTolerance sets the relative eigen tolerance used by PseudoInverse.
// Panics when tol is not a positive finite number.
func WithEigenTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		panic(panicEigenToleranceInvalid)
	}

	return func(o *Options) { o.eigenTol = tol }
}

// WithMaxSweeps caps the number of Jacobi sweeps used by PseudoInverse.
func WithMaxSweeps(sweeps int) Option {
	if sweeps <= 0 {
		panic(panicMaxSweepsInvalid)
	}

	return func(o *Options) { o.maxSweeps = sweeps }
}

func defaultOptions() Options {
	return Options{
		pivotTol:  DefaultPivotTolerance,
		eigenTol:  DefaultEigenTolerance,
		maxSweeps: DefaultMaxSweeps,
	}
}

// gatherOptions applies user setters over the defaults; nil setters are skipped.
func gatherOptions(user ...Option) Options {
	o := defaultOptions()
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
