// Package matrix is the portable dense linear-algebra kernel behind the
// fallback compute backend.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix behind the Matrix interface, with
//     bounds-checked At/Set and deep Clone.
//   - Products (Mul, MulTrans, TransMul), MatVec/TransMatVec, Transpose,
//     Scale, AddDiagonal and TraceOfProduct.
//   - Factorizations: LU with partial pivoting (Solve, Inverse), Cholesky
//     (InverseSPD with log-determinant), and a symmetric PseudoInverse from
//     Jacobi eigen sweeps.
//   - Column statistics and centering that tolerate missing (NaN) cells.
//
// Every kernel validates shapes first and returns sentinel errors
// (ErrDimensionMismatch, ErrSingular, ...) wrapped with the operation name;
// nothing panics on user input. Results are always freshly allocated.
package matrix
