// Package blup solves Henderson's mixed-model equations for Best Linear
// Unbiased Prediction (BLUP) and its genomic specialization (GBLUP).
//
// 🚀 The model
//
//	y = Xβ + Zu + e,  u ~ N(0, A·σ²_a),  e ~ N(0, I·σ²_e)
//
// is solved through the mixed-model equations
//
//	[ XᵀX   XᵀZ          ] [β]   [Xᵀy]
//	[ ZᵀX   ZᵀZ + λA⁻¹   ] [û] = [Zᵀy],   λ = σ²_e / σ²_a
//
// with a direct, row-pivoted LU solve.
//
// ✨ Contracts:
//   - Shape mismatches fail fast with an error wrapping
//     matrix.ErrDimensionMismatch before any numeric work.
//   - A singular or ill-conditioned system NEVER returns an error or panics:
//     the Result carries zero vectors and Converged=false.
//   - Identical inputs give bit-identical outputs.
//
// GBLUP builds a VanRaden1 GRM from the genotypes, adds a 0.001 ridge to its
// diagonal, inverts it (pseudo-inverse when direct inversion fails) and
// solves an intercept + genomic-effect model with λ = (1−h²)/h².
package blup
