// Package native is the high-performance numeric backend: the same four
// operations as the portable grm, blup and reml packages, computed with
// gonum's BLAS/LAPACK kernels (symmetric rank-k update for the GRM, LU and
// Cholesky solves, SVD pseudo-inverse).
//
// Building with the purego tag compiles the package without gonum; New then
// reports ErrUnavailable and every method returns it, so callers fall back
// to the portable implementation.
//
// Validation, sentinel errors and failure results are shared with the
// portable packages; numeric results agree with them to rounding.
package native
