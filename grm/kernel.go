// SPDX-License-Identifier: MIT

package grm

import (
	"github.com/katalvlaran/quantgen/matrix"
	"golang.org/x/sync/errgroup"
)

// minRowsPerWorker keeps tiny problems on the calling goroutine.
const minRowsPerWorker = 16

// symmetricCrossProduct returns ZZᵀ/divisor for an n×m Z.
// Rows are dealt to workers round-robin (row i has n−i cells to fill, so
// striding balances the triangle). Every cell (i,j), i ≤ j, is summed by the
// owner of row i in marker order and mirrored to (j,i) by the same worker,
// so no two goroutines write the same cell and the result is independent
// of the worker count.
func symmetricCrossProduct(z *matrix.Dense, divisor float64, workers int) (*matrix.Dense, error) {
	n := z.Rows()
	g, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, n)
	for i := range rows {
		if rows[i], err = z.RowView(i); err != nil {
			return nil, err
		}
	}
	out := make([][]float64, n)
	for i := range out {
		if out[i], err = g.RowView(i); err != nil {
			return nil, err
		}
	}
	scale := 1 / divisor

	fill := func(start, stride int) {
		var sum float64
		for i := start; i < n; i += stride {
			zi := rows[i]
			for j := i; j < n; j++ {
				zj := rows[j]
				sum = 0
				for k := range zi {
					sum += zi[k] * zj[k]
				}
				sum *= scale
				out[i][j] = sum
				out[j][i] = sum
			}
		}
	}

	if workers > n/minRowsPerWorker {
		workers = n / minRowsPerWorker
	}
	if workers <= 1 {
		fill(0, 1)

		return g, nil
	}

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		start := w
		eg.Go(func() error {
			fill(start, workers)

			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	return g, nil
}
