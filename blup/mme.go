// SPDX-License-Identifier: MIT

package blup

import (
	"math"

	"github.com/katalvlaran/quantgen/matrix"
)

// system is an assembled set of mixed-model equations.
type system struct {
	c   *matrix.Dense // (p+q)×(p+q) coefficient matrix
	rhs []float64     // right-hand side, length p+q
	p   int
	q   int
}

// assemble builds the MME coefficient matrix and right-hand side.
// Inputs are assumed validated and conformant.
func assemble(y []float64, x, z, aInv *matrix.Dense, lambda float64) (*system, error) {
	p, q := x.Cols(), z.Cols()
	xtx, err := matrix.TransMul(x, x)
	if err != nil {
		return nil, err
	}
	xtz, err := matrix.TransMul(x, z)
	if err != nil {
		return nil, err
	}
	ztz, err := matrix.TransMul(z, z)
	if err != nil {
		return nil, err
	}
	xty, err := matrix.TransMatVec(x, y)
	if err != nil {
		return nil, err
	}
	zty, err := matrix.TransMatVec(z, y)
	if err != nil {
		return nil, err
	}

	dim := p + q
	c, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, err
	}
	var i, j int
	var dst, src, ainv []float64
	for i = 0; i < p; i++ { // [XᵀX  XᵀZ]
		if dst, err = c.RowView(i); err != nil {
			return nil, err
		}
		if src, err = xtx.RowView(i); err != nil {
			return nil, err
		}
		copy(dst, src)
		if src, err = xtz.RowView(i); err != nil {
			return nil, err
		}
		copy(dst[p:], src)
	}
	for i = 0; i < q; i++ { // [ZᵀX  ZᵀZ + λA⁻¹]
		if dst, err = c.RowView(p + i); err != nil {
			return nil, err
		}
		for j = 0; j < p; j++ {
			if dst[j], err = xtz.At(j, i); err != nil {
				return nil, err
			}
		}
		if src, err = ztz.RowView(i); err != nil {
			return nil, err
		}
		if ainv, err = aInv.RowView(i); err != nil {
			return nil, err
		}
		for j = range src {
			dst[p+j] = src[j] + lambda*ainv[j]
		}
	}

	rhs := make([]float64, dim)
	copy(rhs, xty)
	copy(rhs[p:], zty)

	return &system{c: c, rhs: rhs, p: p, q: q}, nil
}

// solve runs the pivoted LU solve on the equilibrated system D·C·D, so the
// singularity test does not depend on the units of the fixed effects.
// ok=false means singular or a non-finite solution; the caller then builds
// its fallback result.
// aDiag is diag(A) for the reliability; nil means unit diagonal.
func (s *system) solve(lambda float64, aDiag []float64) (*Result, bool) {
	cs, d, err := matrix.Equilibrate(s.c)
	if err != nil {
		return nil, false
	}
	f, err := matrix.LU(cs)
	if err != nil {
		return nil, false
	}
	rhs := make([]float64, len(s.rhs))
	for i, v := range s.rhs {
		rhs[i] = d[i] * v
	}
	sol, err := f.Solve(rhs)
	if err != nil {
		return nil, false
	}
	for i, v := range sol {
		v *= d[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		sol[i] = v
	}

	res := &Result{
		FixedEffects:   append([]float64(nil), sol[:s.p]...),
		BreedingValues: append([]float64(nil), sol[s.p:]...),
		Reliability:    make([]float64, s.q),
		Converged:      true,
	}

	// PEV_i = C^{uu}_ii·σ²_e, so r²_i = 1 − λ·C^{uu}_ii / A_ii.
	// C⁻¹ = D·(DCD)⁻¹·D.
	diag := f.Inverse().Diagonal()
	for i := 0; i < s.q; i++ {
		aii := 1.0
		if aDiag != nil && aDiag[i] > 0 {
			aii = aDiag[i]
		}
		k := s.p + i
		r := 1 - lambda*d[k]*d[k]*diag[k]/aii
		res.Reliability[i] = clamp01(r)
	}

	return res, true
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// validVariance reports whether v is a usable variance component.
func validVariance(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
