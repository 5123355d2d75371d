//go:build !purego

// SPDX-License-Identifier: MIT

package native

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quantgen/blup"
	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"gonum.org/v1/gonum/mat"
)

// SolveBLUP solves Henderson's mixed-model equations with a gonum LU.
// Errors and failure results are those of blup.Solve.
func (*Backend) SolveBLUP(y []float64, X, Z, Ainv matrix.Matrix, varA, varE float64) (*blup.Result, error) {
	if !positiveFinite(varA) || !positiveFinite(varE) {
		return nil, wrap(opSolveBLUP, fmt.Errorf("varA=%g varE=%g: %w", varA, varE, blup.ErrInvalidVariance))
	}
	if err := matrix.ValidateMixedModel(y, X, Z, Ainv); err != nil {
		return nil, wrap(opSolveBLUP, err)
	}
	x, _ := toGonumMatrix(X) // validated above
	z, _ := toGonumMatrix(Z)
	aInv, _ := toGonumMatrix(Ainv)
	lambda := varE / varA

	var aDiag []float64
	var a mat.Dense
	if err := a.Inverse(aInv); err == nil {
		aDiag = diagonal(&a)
	}

	if res, ok := solveMME(mat.NewVecDense(len(y), append([]float64(nil), y...)), x, z, aInv, lambda, aDiag); ok {
		return res, nil
	}
	_, p := x.Dims()
	_, q := z.Dims()

	return failed(make([]float64, p), q), nil
}

// SolveGBLUP builds the VanRaden1 GRM natively and solves the intercept +
// genomic-effect model. Errors and failure results are those of
// blup.SolveGenomic.
func (b *Backend) SolveGBLUP(genotypes matrix.Matrix, y []float64, h2 float64, opts ...grm.Option) (*blup.Result, error) {
	if math.IsNaN(h2) || h2 <= 0 || h2 >= 1 {
		return nil, wrap(opSolveGBLUP, fmt.Errorf("h2=%g: %w", h2, blup.ErrInvalidHeritability))
	}
	if err := matrix.ValidateNotNil(genotypes); err != nil {
		return nil, wrap(opSolveGBLUP, err)
	}
	if err := matrix.ValidateVecLen(y, genotypes.Rows()); err != nil {
		return nil, wrap(opSolveGBLUP, fmt.Errorf("y: %w", err))
	}
	g, err := b.ComputeGRM(genotypes, grm.VanRaden1, opts...)
	if err != nil {
		return nil, wrap(opSolveGBLUP, err)
	}
	if err = matrix.ValidateFiniteVec(y); err != nil {
		return nil, wrap(opSolveGBLUP, fmt.Errorf("y: %w", err))
	}
	n := len(y)
	fallback := failed([]float64{matrix.Mean(y)}, n)

	gr := toGonum(g.Matrix)
	for i := 0; i < n; i++ {
		gr.Set(i, i, gr.At(i, i)+blup.Ridge)
	}
	gInv := new(mat.Dense)
	if err := gInv.Inverse(gr); err != nil {
		var ok bool
		if gInv, ok = pseudoInverse(gr); !ok {
			return fallback, nil
		}
	}

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	x := mat.NewDense(n, 1, ones)
	z := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		z.Set(i, i, 1)
	}
	lambda := (1 - h2) / h2
	res, ok := solveMME(mat.NewVecDense(n, append([]float64(nil), y...)), x, z, gInv, lambda, diagonal(gr))
	if !ok {
		return fallback, nil
	}

	return res, nil
}

// solveMME assembles and solves the mixed-model equations on the
// equilibrated coefficient matrix; ok=false means singular, ill-conditioned
// or a non-finite solution.
func solveMME(y *mat.VecDense, x, z, aInv *mat.Dense, lambda float64, aDiag []float64) (*blup.Result, bool) {
	_, p := x.Dims()
	_, q := z.Dims()
	dim := p + q

	var xtx, xtz, ztz, la mat.Dense
	xtx.Mul(x.T(), x)
	xtz.Mul(x.T(), z)
	ztz.Mul(z.T(), z)
	la.Scale(lambda, aInv)
	ztz.Add(&ztz, &la)

	c := mat.NewDense(dim, dim, nil)
	c.Slice(0, p, 0, p).(*mat.Dense).Copy(&xtx)
	c.Slice(0, p, p, dim).(*mat.Dense).Copy(&xtz)
	c.Slice(p, dim, 0, p).(*mat.Dense).Copy(xtz.T())
	c.Slice(p, dim, p, dim).(*mat.Dense).Copy(&ztz)

	rhs := mat.NewVecDense(dim, nil)
	rhs.SliceVec(0, p).(*mat.VecDense).MulVec(x.T(), y)
	rhs.SliceVec(p, dim).(*mat.VecDense).MulVec(z.T(), y)

	// Solve (D·C·D)·w = D·rhs, then x = D·w.
	d := equilibration(c)
	scaleDense(c, d)
	for i := 0; i < dim; i++ {
		rhs.SetVec(i, rhs.AtVec(i)*d[i])
	}

	var lu mat.LU
	lu.Factorize(c)
	if cond := lu.Cond(); math.IsNaN(cond) || cond > maxCondition {
		return nil, false
	}
	sol := mat.NewVecDense(dim, nil)
	if err := lu.SolveVecTo(sol, false, rhs); err != nil {
		return nil, false
	}
	for i := 0; i < dim; i++ {
		sol.SetVec(i, sol.AtVec(i)*d[i])
	}
	if !finite(sol) {
		return nil, false
	}
	ones := make([]float64, dim)
	for i := range ones {
		ones[i] = 1
	}
	var cInv mat.Dense
	if err := lu.SolveTo(&cInv, false, mat.NewDiagDense(dim, ones)); err != nil {
		return nil, false
	}

	res := &blup.Result{
		FixedEffects:   make([]float64, p),
		BreedingValues: make([]float64, q),
		Reliability:    make([]float64, q),
		Converged:      true,
	}
	for i := 0; i < p; i++ {
		res.FixedEffects[i] = sol.AtVec(i)
	}
	for i := 0; i < q; i++ {
		res.BreedingValues[i] = sol.AtVec(p + i)
		aii := 1.0
		if aDiag != nil && aDiag[i] > 0 {
			aii = aDiag[i]
		}
		k := p + i
		res.Reliability[i] = clamp01(1 - lambda*d[k]*d[k]*cInv.At(k, k)/aii)
	}

	return res, true
}

// pseudoInverse returns the Moore–Penrose inverse from a thin SVD,
// dropping singular values below the same relative cut-off as
// matrix.PseudoInverse.
func pseudoInverse(a *mat.Dense) (*mat.Dense, bool) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, false
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	n, _ := a.Dims()
	var sMax float64
	for _, sv := range s {
		sMax = math.Max(sMax, sv)
	}
	cut := matrix.DefaultEigenTolerance * sMax * float64(n)
	r, c := v.Dims()
	for j := 0; j < c; j++ {
		inv := 0.0
		if s[j] > cut {
			inv = 1 / s[j]
		}
		for i := 0; i < r; i++ {
			v.Set(i, j, v.At(i, j)*inv)
		}
	}
	var out mat.Dense
	out.Mul(&v, u.T())

	return &out, true
}

func failed(fixed []float64, q int) *blup.Result {
	return &blup.Result{
		FixedEffects:   fixed,
		BreedingValues: make([]float64, q),
		Reliability:    make([]float64, q),
	}
}

func diagonal(m mat.Matrix) []float64 {
	n, _ := m.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = m.At(i, i)
	}

	return out
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

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
