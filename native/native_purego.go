//go:build purego

// SPDX-License-Identifier: MIT

package native

import (
	"github.com/katalvlaran/quantgen/blup"
	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"github.com/katalvlaran/quantgen/reml"
)

// Available reports whether the gonum kernels are compiled in.
const Available = false

// Backend is a placeholder whose methods all return ErrUnavailable.
type Backend struct{}

// New always fails with ErrUnavailable in purego builds.
func New() (*Backend, error) { return nil, ErrUnavailable }

// Name returns "gonum".
func (*Backend) Name() string { return Name }

func (*Backend) ComputeGRM(matrix.Matrix, grm.Method, ...grm.Option) (*grm.Result, error) {
	return nil, ErrUnavailable
}

func (*Backend) SolveBLUP([]float64, matrix.Matrix, matrix.Matrix, matrix.Matrix, float64, float64) (*blup.Result, error) {
	return nil, ErrUnavailable
}

func (*Backend) SolveGBLUP(matrix.Matrix, []float64, float64, ...grm.Option) (*blup.Result, error) {
	return nil, ErrUnavailable
}

func (*Backend) EstimateVarianceComponents([]float64, matrix.Matrix, matrix.Matrix, matrix.Matrix, reml.Params) (*reml.Result, error) {
	return nil, ErrUnavailable
}
