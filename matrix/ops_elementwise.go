// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Element-wise and broadcast kernels used to prepare marker matrices:
//     column centering with missing-value imputation and per-column scaling.
//
// Determinism & Performance:
//   - Fixed loop orders (i→j).
//   - One output allocation per call; inputs are never modified.

package matrix

import (
	"fmt"
	"math"
)

const (
	opCenterColumns = "CenterColumns"
	opScaleColumns  = "ScaleColumns"
)

// CenterColumns computes out[i,j] = X[i,j] - centers[j].
// A NaN cell (missing value) becomes 0, i.e. it is imputed with the column
// center before centering.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(centers) != Cols).
// Time: O(r*c). Space: O(r*c).
func CenterColumns(X Matrix, centers []float64) (*Dense, error) {
	d, err := AsDense(X)
	if err != nil {
		return nil, matrixErrorf(opCenterColumns, err)
	}
	if err = ValidateVecLen(centers, d.c); err != nil {
		return nil, matrixErrorf(opCenterColumns, err)
	}
	out := &Dense{r: d.r, c: d.c, data: make([]float64, len(d.data))}
	var i, j, base int
	var v float64
	for i = 0; i < d.r; i++ {
		base = i * d.c
		for j = 0; j < d.c; j++ {
			v = d.data[base+j]
			if math.IsNaN(v) {
				continue // imputed: stays 0 after centering
			}
			out.data[base+j] = v - centers[j]
		}
	}

	return out, nil
}

// ScaleColumns computes out[i,j] = X[i,j] * scale[j].
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf (non-finite factor).
// Time: O(r*c). Space: O(r*c).
func ScaleColumns(X Matrix, scale []float64) (*Dense, error) {
	d, err := AsDense(X)
	if err != nil {
		return nil, matrixErrorf(opScaleColumns, err)
	}
	if err = ValidateVecLen(scale, d.c); err != nil {
		return nil, matrixErrorf(opScaleColumns, err)
	}
	for j, s := range scale {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, matrixErrorf(opScaleColumns, fmt.Errorf("scale[%d]: %w", j, ErrNaNInf))
		}
	}
	out := &Dense{r: d.r, c: d.c, data: make([]float64, len(d.data))}
	var i, j, base int
	for i = 0; i < d.r; i++ {
		base = i * d.c
		for j = 0; j < d.c; j++ {
			out.data[base+j] = d.data[base+j] * scale[j]
		}
	}

	return out, nil
}
