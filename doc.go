// Package quantgen is the numeric core of a quantitative-genetics service:
// genomic relationship matrices, mixed-model prediction of breeding values
// and variance-component estimation, behind a backend-selection facade.
//
// 🚀 What is inside?
//
//	• GRM construction: VanRaden 1 & 2, Yang (GCTA), missing calls imputed
//	• BLUP: Henderson's mixed-model equations with prediction reliabilities
//	• GBLUP: genotypes → GRM → genomic breeding values in one call
//	• REML: EM-style estimation of σ²_a, σ²_e and heritability
//	• Compute facade: native (gonum/BLAS) backend when available, portable
//	  pure-Go fallback otherwise, chosen once per process
//
// ✨ Guarantees
//
//   - Malformed input fails fast with sentinel errors (errors.Is friendly).
//   - Singular or ill-conditioned systems never panic or error: results come
//     back with Converged=false and well-defined values.
//   - Deterministic: identical inputs give identical outputs, whatever the
//     worker count of the GRM builder.
//
// Package layout:
//
//	matrix/        Dense matrices, products, LU/Cholesky/pseudo-inverse kernels
//	grm/           genomic relationship matrices and inbreeding summaries
//	blup/          BLUP and GBLUP solvers
//	reml/          EM-REML variance components
//	native/        gonum-backed implementation of the same operations
//	compute/       Backend interface, probe, Capability, Engine, YAML config
//	cmd/quantgen/  JSON-in/JSON-out command-line harness
//
// Quick start:
//
//	engine := compute.NewEngine(compute.DefaultConfig(), logger)
//	g, err := engine.ComputeGRM(genotypes, grm.VanRaden1)
//	res, err := engine.SolveGBLUP(genotypes, phenotypes, 0.4)
//
// All numeric work is synchronous and CPU-bound; nothing is persisted.
package quantgen
