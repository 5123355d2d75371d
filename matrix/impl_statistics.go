// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Column statistics over matrices that may carry missing values (NaN).
//
// Determinism & Performance:
//   - Fixed i→j traversal; a single pass over the flat buffer.

package matrix

import "math"

const opColumnMeans = "ColumnMeans"

// ColumnMeans returns the per-column mean over non-NaN cells together with
// the number of observed (non-NaN) cells per column. A column with no
// observed cell has mean 0 and count 0.
//
// Errors: ErrNilMatrix.
// Complexity: Time O(r*c), Space O(c).
func ColumnMeans(X Matrix) ([]float64, []int, error) {
	d, err := AsDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opColumnMeans, err)
	}
	sums := make([]float64, d.c)
	counts := make([]int, d.c)
	var i, j, base int
	var v float64
	for i = 0; i < d.r; i++ {
		base = i * d.c
		for j = 0; j < d.c; j++ {
			v = d.data[base+j]
			if math.IsNaN(v) {
				continue
			}
			sums[j] += v
			counts[j]++
		}
	}
	for j = 0; j < d.c; j++ {
		if counts[j] > 0 {
			sums[j] /= float64(counts[j])
		}
	}

	return sums, counts, nil
}

// Mean returns the arithmetic mean of x (0 for an empty slice).
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var s float64
	for _, v := range x {
		s += v
	}

	return s / float64(len(x))
}
