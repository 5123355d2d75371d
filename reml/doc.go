// Package reml estimates additive and residual variance components by
// Restricted Maximum Likelihood with an EM-style iteration.
//
// For the model y = Xβ + Zu + e with u ~ N(0, A·σ²_a) and e ~ N(0, I·σ²_e)
// every round forms
//
//	V = σ²_a·ZAZᵀ + σ²_e·I
//	P = V⁻¹ − V⁻¹X(XᵀV⁻¹X)⁻¹XᵀV⁻¹
//
// and applies the EM update
//
//	σ²_a ← σ²_a + σ⁴_a/q·(yᵀPKPy − tr(PK)),   K = ZAZᵀ
//	σ²_e ← σ²_e + σ⁴_e/n·(yᵀPPy − tr(P))
//
// flooring both at VarianceFloor. Iteration stops when both relative
// changes drop below Params.Tolerance or after Params.MaxIter rounds.
//
// The EM step is the plain, slowly converging variant: it never leaves the
// parameter space but may need many rounds on weakly informative data.
// Average-information REML is not implemented.
//
// Numerical failure (V or XᵀV⁻¹X not positive definite) stops the iteration
// with the last valid estimates and Converged=false; it is never an error.
package reml
