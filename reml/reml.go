// SPDX-License-Identifier: MIT

package reml

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quantgen/matrix"
)

const opEstimate = "reml.Estimate"

var log2Pi = math.Log(2 * math.Pi)

// Estimate runs EM-REML for y (length n), X (n×p), Z (n×q) and the q×q
// relationship matrix A, starting from params.
//
// Errors (returned before any numeric work):
//   - ErrInvalidParams, ErrUnsupportedMethod.
//   - matrix.ErrNilMatrix, matrix.ErrDimensionMismatch, matrix.ErrNaNInf.
//
// Complexity: O(n³) per round for the factorization of V.
func Estimate(y []float64, X, Z, A matrix.Matrix, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opEstimate, err)
	}
	m, err := newModel(y, X, Z, A)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opEstimate, err)
	}

	res := &Result{
		VarAdditive:   params.VarAdditive,
		VarResidual:   params.VarResidual,
		Method:        params.Method,
		LogLikelihood: math.NaN(),
	}

	varA, varE := params.VarAdditive, params.VarResidual
	for iter := 0; iter < params.MaxIter; iter++ {
		st, ok := m.evaluate(varA, varE)
		if !ok {
			break // keep the last valid estimates
		}
		res.LogLikelihood = st.logLik
		res.Iterations = iter + 1

		nextA := math.Max(varA+varA*varA/float64(m.q)*(st.yPKPy-st.trPK), VarianceFloor)
		nextE := math.Max(varE+varE*varE/float64(m.n)*(st.yPPy-st.trP), VarianceFloor)
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

	// Report the likelihood at the estimates actually returned.
	if st, ok := m.evaluate(res.VarAdditive, res.VarResidual); ok {
		res.LogLikelihood = st.logLik
	}
	res.Heritability = res.VarAdditive / (res.VarAdditive + res.VarResidual)

	return res, nil
}

// model holds the validated inputs and the fixed kernel K = ZAZᵀ.
type model struct {
	y    []float64
	x    *matrix.Dense
	k    *matrix.Dense
	n, p int
	q    int
}

func newModel(y []float64, X, Z, A matrix.Matrix) (*model, error) {
	if err := matrix.ValidateMixedModel(y, X, Z, A); err != nil {
		return nil, err
	}
	n, q := X.Rows(), Z.Cols()
	x, err := matrix.AsDense(X)
	if err != nil {
		return nil, err
	}
	za, err := matrix.Mul(Z, A)
	if err != nil {
		return nil, err
	}
	k, err := matrix.MulTrans(za, Z)
	if err != nil {
		return nil, err
	}

	return &model{y: y, x: x, k: k, n: n, p: x.Cols(), q: q}, nil
}

// state carries the quadratic forms and traces of one round.
type state struct {
	yPKPy, trPK float64
	yPPy, trP   float64
	logLik      float64
}

// evaluate forms V and P at (varA, varE). ok=false when V or XᵀV⁻¹X is
// not positive definite.
func (m *model) evaluate(varA, varE float64) (state, bool) {
	var st state

	v, err := matrix.Scale(m.k, varA)
	if err != nil {
		return st, false
	}
	if v, err = matrix.AddDiagonal(v, varE); err != nil {
		return st, false
	}
	vInv, logDetV, err := matrix.InverseSPD(v)
	if err != nil {
		return st, false
	}
	vInvX, err := matrix.Mul(vInv, m.x)
	if err != nil {
		return st, false
	}
	xtvx, err := matrix.TransMul(m.x, vInvX)
	if err != nil {
		return st, false
	}
	// Equilibrate so covariates in large units are not taken for a singular
	// XᵀV⁻¹X: (XᵀV⁻¹X)⁻¹ = D·S⁻¹·D and log|XᵀV⁻¹X| = log|S| − 2·Σ log d_i.
	xs, d, err := matrix.Equilibrate(xtvx)
	if err != nil {
		return st, false
	}
	sInv, logDetXVX, err := matrix.InverseSPD(xs)
	if err != nil {
		return st, false
	}
	for _, di := range d {
		logDetXVX -= 2 * math.Log(di)
	}
	xtvxInv, err := matrix.ScaleSymmetric(sInv, d)
	if err != nil {
		return st, false
	}
	t, err := matrix.Mul(vInvX, xtvxInv)
	if err != nil {
		return st, false
	}
	corr, err := matrix.MulTrans(t, vInvX)
	if err != nil {
		return st, false
	}
	if corr, err = matrix.Scale(corr, -1); err != nil {
		return st, false
	}
	p, err := matrix.Add(vInv, corr)
	if err != nil {
		return st, false
	}

	py, err := matrix.MatVec(p, m.y)
	if err != nil {
		return st, false
	}
	kpy, err := matrix.MatVec(m.k, py)
	if err != nil {
		return st, false
	}
	yPy, _ := matrix.Dot(m.y, py)
	st.yPKPy, _ = matrix.Dot(py, kpy)
	st.yPPy, _ = matrix.Dot(py, py)
	if st.trPK, err = matrix.TraceOfProduct(p, m.k); err != nil {
		return st, false
	}
	for _, d := range p.Diagonal() {
		st.trP += d
	}
	st.logLik = -0.5 * (logDetV + logDetXVX + yPy + float64(m.n-m.p)*log2Pi)

	return st, true
}
