// SPDX-License-Identifier: MIT

package blup

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
)

// SolveGenomic runs GBLUP: it builds a VanRaden1 GRM from an n×m genotype
// matrix and solves y = 1μ + u + e with u ~ N(0, G·σ²_a).
// Extra grm options (ploidy, workers) are forwarded to grm.Compute.
//
// Errors: ErrInvalidHeritability, grm.Compute errors, and
// matrix.ErrDimensionMismatch when len(y) != n.
func SolveGenomic(genotypes matrix.Matrix, y []float64, h2 float64, opts ...grm.Option) (*Result, error) {
	if !validHeritability(h2) {
		return nil, fmt.Errorf("%s: h2=%g: %w", opSolveGenomic, h2, ErrInvalidHeritability)
	}
	if err := matrix.ValidateNotNil(genotypes); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolveGenomic, err)
	}
	if err := matrix.ValidateVecLen(y, genotypes.Rows()); err != nil {
		return nil, fmt.Errorf("%s: y: %w", opSolveGenomic, err)
	}
	g, err := grm.Compute(genotypes, grm.VanRaden1, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolveGenomic, err)
	}
	res, err := SolveGenomicFromGRM(g.Matrix, y, h2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolveGenomic, err)
	}

	return res, nil
}

// SolveGenomicFromGRM is SolveGenomic for a precomputed n×n GRM.
//
// The GRM gets a Ridge on its diagonal and is inverted directly, falling back
// to the pseudo-inverse. If neither works, or the MME are singular, the
// result is β=[mean(y)], û=0, Converged=false.
func SolveGenomicFromGRM(G matrix.Matrix, y []float64, h2 float64) (*Result, error) {
	if !validHeritability(h2) {
		return nil, fmt.Errorf("%s: h2=%g: %w", opSolveFromGRM, h2, ErrInvalidHeritability)
	}
	if err := matrix.ValidateSquare(G); err != nil {
		return nil, fmt.Errorf("%s: G: %w", opSolveFromGRM, err)
	}
	n := G.Rows()
	if err := matrix.ValidateVecLen(y, n); err != nil {
		return nil, fmt.Errorf("%s: y: %w", opSolveFromGRM, err)
	}
	if err := matrix.ValidateFiniteVec(y); err != nil {
		return nil, fmt.Errorf("%s: y: %w", opSolveFromGRM, err)
	}
	if err := matrix.ValidateFinite(G); err != nil {
		return nil, fmt.Errorf("%s: G: %w", opSolveFromGRM, err)
	}

	fallback := failed([]float64{matrix.Mean(y)}, n)

	gr, err := matrix.AddDiagonal(G, Ridge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolveFromGRM, err)
	}
	gInv, err := matrix.Inverse(gr)
	if err != nil {
		if gInv, err = matrix.PseudoInverse(gr); err != nil {
			return fallback, nil
		}
	}

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	x, err := matrix.ColumnOf(ones)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolveFromGRM, err)
	}
	z, err := matrix.Identity(n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolveFromGRM, err)
	}

	lambda := (1 - h2) / h2
	sys, err := assemble(y, x, z, gInv, lambda)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolveFromGRM, err)
	}
	res, ok := sys.solve(lambda, gr.Diagonal())
	if !ok {
		return fallback, nil
	}

	return res, nil
}

func validHeritability(h2 float64) bool {
	return !math.IsNaN(h2) && h2 > 0 && h2 < 1
}
