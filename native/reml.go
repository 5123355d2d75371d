//go:build !purego

// SPDX-License-Identifier: MIT

package native

import (
	"math"

	"github.com/katalvlaran/quantgen/matrix"
	"github.com/katalvlaran/quantgen/reml"
	"gonum.org/v1/gonum/mat"
)

var log2Pi = math.Log(2 * math.Pi)

// EstimateVarianceComponents runs the EM-REML iteration of reml.Estimate
// with Cholesky factorizations from gonum. Errors, the update rule and the
// stopping rule are those of reml.Estimate.
func (*Backend) EstimateVarianceComponents(y []float64, X, Z, A matrix.Matrix, params reml.Params) (*reml.Result, error) {
	if err := params.Validate(); err != nil {
		return nil, wrap(opEstimate, err)
	}
	if err := matrix.ValidateMixedModel(y, X, Z, A); err != nil {
		return nil, wrap(opEstimate, err)
	}
	x, _ := toGonumMatrix(X) // validated above
	z, _ := toGonumMatrix(Z)
	a, _ := toGonumMatrix(A)
	n, p := x.Dims()
	_, q := z.Dims()

	var za, k mat.Dense
	za.Mul(z, a)
	k.Mul(&za, z.T())
	m := &remlModel{
		y: mat.NewVecDense(n, append([]float64(nil), y...)),
		x: x,
		k: &k,
		n: n,
		p: p,
	}

	res := &reml.Result{
		VarAdditive:   params.VarAdditive,
		VarResidual:   params.VarResidual,
		Method:        params.Method,
		LogLikelihood: math.NaN(),
	}
	varA, varE := params.VarAdditive, params.VarResidual
	for iter := 0; iter < params.MaxIter; iter++ {
		st, ok := m.evaluate(varA, varE)
		if !ok {
			break
		}
		res.LogLikelihood = st.logLik
		res.Iterations = iter + 1

		nextA := math.Max(varA+varA*varA/float64(q)*(st.yPKPy-st.trPK), reml.VarianceFloor)
		nextE := math.Max(varE+varE*varE/float64(n)*(st.yPPy-st.trP), reml.VarianceFloor)
		if math.IsNaN(nextA) || math.IsNaN(nextE) {
			break
		}
		done := math.Abs(nextA-varA) < params.Tolerance*math.Abs(varA) &&
			math.Abs(nextE-varE) < params.Tolerance*math.Abs(varE)
		varA, varE = nextA, nextE
		res.VarAdditive, res.VarResidual = varA, varE
		if done {
			res.Converged = true
			break
		}
	}

	if st, ok := m.evaluate(res.VarAdditive, res.VarResidual); ok {
		res.LogLikelihood = st.logLik
	}
	res.Heritability = res.VarAdditive / (res.VarAdditive + res.VarResidual)

	return res, nil
}

type remlModel struct {
	y    *mat.VecDense
	x    *mat.Dense
	k    *mat.Dense // ZAZᵀ
	n, p int
}

type remlState struct {
	yPKPy, trPK float64
	yPPy, trP   float64
	logLik      float64
}

// evaluate forms V and P at (varA, varE); ok=false when V or XᵀV⁻¹X is not
// safely positive definite.
func (m *remlModel) evaluate(varA, varE float64) (remlState, bool) {
	var st remlState

	v := mat.NewSymDense(m.n, nil)
	for i := 0; i < m.n; i++ {
		for j := i; j < m.n; j++ {
			val := varA * m.k.At(i, j)
			if i == j {
				val += varE
			}
			v.SetSym(i, j, val)
		}
	}
	var chV mat.Cholesky
	if !chV.Factorize(v) || chV.Cond() > maxCondition {
		return st, false
	}
	var vInv mat.SymDense
	if err := chV.InverseTo(&vInv); err != nil {
		return st, false
	}

	var vInvX, xtvx mat.Dense
	vInvX.Mul(&vInv, m.x)
	xtvx.Mul(m.x.T(), &vInvX)
	// Factor S = D·XᵀV⁻¹X·D; (XᵀV⁻¹X)⁻¹ = D·S⁻¹·D.
	d := equilibration(&xtvx)
	xs := mat.NewSymDense(m.p, nil)
	for i := 0; i < m.p; i++ {
		for j := i; j < m.p; j++ {
			xs.SetSym(i, j, 0.5*(xtvx.At(i, j)+xtvx.At(j, i))*d[i]*d[j])
		}
	}
	var chX mat.Cholesky
	if !chX.Factorize(xs) || chX.Cond() > maxCondition {
		return st, false
	}
	var xsInv mat.SymDense
	if err := chX.InverseTo(&xsInv); err != nil {
		return st, false
	}
	logDetXVX := chX.LogDet()
	for i := 0; i < m.p; i++ {
		logDetXVX -= 2 * math.Log(d[i])
		for j := i; j < m.p; j++ {
			xsInv.SetSym(i, j, xsInv.At(i, j)*d[i]*d[j])
		}
	}

	var t, corr, proj mat.Dense
	t.Mul(&vInvX, &xsInv)
	corr.Mul(&t, vInvX.T())
	proj.Sub(&vInv, &corr)

	var py, kpy mat.VecDense
	py.MulVec(&proj, m.y)
	kpy.MulVec(m.k, &py)
	yPy := mat.Dot(m.y, &py)
	st.yPKPy = mat.Dot(&py, &kpy)
	st.yPPy = mat.Dot(&py, &py)

	// K is symmetric, so tr(PK) = Σ P_ij·K_ij.
	var pk mat.Dense
	pk.MulElem(&proj, m.k)
	st.trPK = mat.Sum(&pk)
	st.trP = mat.Trace(&proj)
	st.logLik = -0.5 * (chV.LogDet() + logDetXVX + yPy + float64(m.n-m.p)*log2Pi)

	return st, true
}
