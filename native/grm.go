//go:build !purego

// SPDX-License-Identifier: MIT

package native

import (
	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"gonum.org/v1/gonum/mat"
)

// ComputeGRM standardizes the genotypes exactly like grm.Compute and forms
// ZZᵀ/divisor with a BLAS symmetric rank-k update. The workers option is
// ignored; BLAS does its own blocking.
func (*Backend) ComputeGRM(genotypes matrix.Matrix, method grm.Method, opts ...grm.Option) (*grm.Result, error) {
	z, divisor, err := grm.Standardize(genotypes, method, opts...)
	if err != nil {
		return nil, wrap(opComputeGRM, err)
	}
	n := z.Rows()
	g := mat.NewSymDense(n, nil)
	g.SymOuterK(1/divisor, toGonum(z))

	return &grm.Result{
		Matrix:      fromGonum(g),
		Method:      method,
		Individuals: n,
		Markers:     z.Cols(),
	}, nil
}
