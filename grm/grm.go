// SPDX-License-Identifier: MIT

package grm

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quantgen/matrix"
)

const (
	opCompute     = "grm.Compute"
	opStandardize = "grm.Standardize"
	opFreqs       = "grm.AlleleFrequencies"
)

// Compute builds the n×n genomic relationship matrix of an n×m genotype
// matrix with the requested method.
//
// Implementation:
//   - Stage 1: validate shape and dosages (NaN = missing, imputed later).
//   - Stage 2: allele frequencies p_k = mean_k / ploidy; center Z = M − ploidy·p.
//   - Stage 3: per-method column weights, then the symmetric product ZWZᵀ.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrInvalidDimensions (shape).
//   - ErrInvalidDosage (±Inf or dosage outside [0, ploidy]).
//   - ErrUnknownMethod.
//
// Numerical failure is impossible by construction: every divisor is floored.
func Compute(genotypes matrix.Matrix, method Method, opts ...Option) (*Result, error) {
	o := gatherOptions(opts...)
	z, divisor, err := standardize(genotypes, method, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCompute, err)
	}
	g, err := symmetricCrossProduct(z, divisor, o.workers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCompute, err)
	}

	return &Result{Matrix: g, Method: method, Individuals: z.Rows(), Markers: z.Cols()}, nil
}

// Standardize runs stages 1 and 2 of Compute and returns the weighted,
// centered n×m matrix Z with its divisor, so that G = ZZᵀ/divisor.
// Alternative product kernels start from here. Errors: as Compute.
func Standardize(genotypes matrix.Matrix, method Method, opts ...Option) (*matrix.Dense, float64, error) {
	z, divisor, err := standardize(genotypes, method, gatherOptions(opts...))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", opStandardize, err)
	}

	return z, divisor, nil
}

func standardize(genotypes matrix.Matrix, method Method, o Options) (*matrix.Dense, float64, error) {
	if !method.valid() {
		return nil, 0, fmt.Errorf("%v: %w", method, ErrUnknownMethod)
	}
	m, err := validateGenotypes(genotypes, o.ploidy)
	if err != nil {
		return nil, 0, err
	}
	markers := m.Cols()

	freqs, err := alleleFrequencies(m, o.ploidy)
	if err != nil {
		return nil, 0, err
	}
	ploidy := float64(o.ploidy)
	centers := make([]float64, markers)
	het := make([]float64, markers)
	for k, p := range freqs {
		centers[k] = ploidy * p
		het[k] = ploidy * p * (1 - p)
	}
	z, err := matrix.CenterColumns(m, centers)
	if err != nil {
		return nil, 0, err
	}

	var divisor float64
	switch method {
	case VanRaden1:
		for _, h := range het {
			divisor += h
		}
		if divisor < o.eps {
			divisor = 1.0
		}
	case VanRaden2, Yang:
		weights := make([]float64, markers)
		for k, h := range het {
			switch {
			case h >= o.eps:
				weights[k] = 1 / math.Sqrt(h)
			case method == VanRaden2:
				weights[k] = 1 / math.Sqrt(o.eps) // floored; the centered column is ~0 anyway
			default:
				weights[k] = 0 // Yang skips monomorphic loci
			}
		}
		if z, err = matrix.ScaleColumns(z, weights); err != nil {
			return nil, 0, err
		}
		divisor = float64(markers)
	}

	return z, divisor, nil
}

// AlleleFrequencies returns p_k = mean(column k)/ploidy over observed calls.
// A marker with no observed call gets frequency 0.
func AlleleFrequencies(genotypes matrix.Matrix, opts ...Option) ([]float64, error) {
	o := gatherOptions(opts...)
	m, err := validateGenotypes(genotypes, o.ploidy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opFreqs, err)
	}
	freqs, err := alleleFrequencies(m, o.ploidy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opFreqs, err)
	}

	return freqs, nil
}

func alleleFrequencies(m *matrix.Dense, ploidy int) ([]float64, error) {
	means, _, err := matrix.ColumnMeans(m)
	if err != nil {
		return nil, err
	}
	for k := range means {
		means[k] /= float64(ploidy)
	}

	return means, nil
}

// validateGenotypes checks shape and dosage range and returns a Dense view.
func validateGenotypes(genotypes matrix.Matrix, ploidy int) (*matrix.Dense, error) {
	m, err := matrix.AsDense(genotypes)
	if err != nil {
		return nil, err
	}
	if m.Rows() <= 0 || m.Cols() <= 0 {
		return nil, matrix.ErrInvalidDimensions
	}
	upper := float64(ploidy)
	for i := 0; i < m.Rows(); i++ {
		row, err := m.RowView(i)
		if err != nil {
			return nil, err
		}
		for k, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if math.IsInf(v, 0) || v < 0 || v > upper {
				return nil, fmt.Errorf("(%d,%d)=%g: %w", i, k, v, ErrInvalidDosage)
			}
		}
	}

	return m, nil
}
