// SPDX-License-Identifier: MIT

package compute

import (
	"github.com/katalvlaran/quantgen/blup"
	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"github.com/katalvlaran/quantgen/reml"
)

// FallbackName identifies the portable backend.
const FallbackName = "portable"

// Backend is the contract shared by the portable and native implementations.
// Both must return the same sentinel errors and the same failure results;
// numeric results agree to rounding.
type Backend interface {
	Name() string
	ComputeGRM(genotypes matrix.Matrix, method grm.Method, opts ...grm.Option) (*grm.Result, error)
	SolveBLUP(y []float64, X, Z, Ainv matrix.Matrix, varA, varE float64) (*blup.Result, error)
	SolveGBLUP(genotypes matrix.Matrix, y []float64, h2 float64, opts ...grm.Option) (*blup.Result, error)
	EstimateVarianceComponents(y []float64, X, Z, A matrix.Matrix, params reml.Params) (*reml.Result, error)
}

type portable struct{}

// Fallback returns the pure-Go backend built on the grm, blup and reml packages.
func Fallback() Backend { return portable{} }

func (portable) Name() string { return FallbackName }

func (portable) ComputeGRM(genotypes matrix.Matrix, method grm.Method, opts ...grm.Option) (*grm.Result, error) {
	return grm.Compute(genotypes, method, opts...)
}

func (portable) SolveBLUP(y []float64, X, Z, Ainv matrix.Matrix, varA, varE float64) (*blup.Result, error) {
	return blup.Solve(y, X, Z, Ainv, varA, varE)
}

func (portable) SolveGBLUP(genotypes matrix.Matrix, y []float64, h2 float64, opts ...grm.Option) (*blup.Result, error) {
	return blup.SolveGenomic(genotypes, y, h2, opts...)
}

func (portable) EstimateVarianceComponents(y []float64, X, Z, A matrix.Matrix, params reml.Params) (*reml.Result, error) {
	return reml.Estimate(y, X, Z, A, params)
}
