// SPDX-License-Identifier: MIT

package reml

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidParams is returned for non-positive starting variances,
	// MaxIter < 1 or a non-positive tolerance.
	ErrInvalidParams = errors.New("reml: invalid parameters")

	// ErrUnsupportedMethod is returned for a known but unimplemented method.
	ErrUnsupportedMethod = errors.New("reml: unsupported method")

	// ErrUnknownMethod is returned by ParseMethod for an unrecognized name.
	ErrUnknownMethod = errors.New("reml: unknown method")
)

// VarianceFloor is the lower bound applied to both components after each round.
const VarianceFloor = 1e-6

const (
	// DefaultVarAdditive is the starting additive variance.
	DefaultVarAdditive = 0.5
	// DefaultVarResidual is the starting residual variance.
	DefaultVarResidual = 1.0
	// DefaultMaxIter bounds the number of EM rounds.
	DefaultMaxIter = 100
	// DefaultTolerance is the relative-change convergence threshold.
	DefaultTolerance = 1e-8
)

// Method selects the REML algorithm.
type Method int

const (
	// MethodEM is the expectation-maximization iteration.
	MethodEM Method = iota
	// MethodAI is average-information REML. Recognized, not implemented.
	MethodAI
)

// String returns the canonical method name.
func (m Method) String() string {
	switch m {
	case MethodEM:
		return "em-reml"
	case MethodAI:
		return "ai-reml"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a name to a Method. "ai-reml" parses but is rejected
// with ErrUnsupportedMethod.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "em", "em-reml", "emreml":
		return MethodEM, nil
	case "ai", "ai-reml", "aireml":
		return MethodAI, fmt.Errorf("%q: %w", s, ErrUnsupportedMethod)
	}

	return 0, fmt.Errorf("%q: %w", s, ErrUnknownMethod)
}

// Params configures one estimation run.
type Params struct {
	VarAdditive float64 // starting σ²_a, > 0
	VarResidual float64 // starting σ²_e, > 0
	Method      Method
	MaxIter     int     // ≥ 1
	Tolerance   float64 // relative change, > 0
}

// DefaultParams returns (0.5, 1.0, EM, 100, 1e-8).
func DefaultParams() Params {
	return Params{
		VarAdditive: DefaultVarAdditive,
		VarResidual: DefaultVarResidual,
		Method:      MethodEM,
		MaxIter:     DefaultMaxIter,
		Tolerance:   DefaultTolerance,
	}
}

// Validate reports ErrInvalidParams, ErrUnsupportedMethod or ErrUnknownMethod
// for a configuration Estimate would reject.
func (p Params) Validate() error {
	switch {
	case !positiveFinite(p.VarAdditive):
		return fmt.Errorf("VarAdditive=%g: %w", p.VarAdditive, ErrInvalidParams)
	case !positiveFinite(p.VarResidual):
		return fmt.Errorf("VarResidual=%g: %w", p.VarResidual, ErrInvalidParams)
	case p.MaxIter < 1:
		return fmt.Errorf("MaxIter=%d: %w", p.MaxIter, ErrInvalidParams)
	case !positiveFinite(p.Tolerance):
		return fmt.Errorf("Tolerance=%g: %w", p.Tolerance, ErrInvalidParams)
	}
	switch p.Method {
	case MethodEM:
		return nil
	case MethodAI:
		return fmt.Errorf("%v: %w", p.Method, ErrUnsupportedMethod)
	default:
		return fmt.Errorf("%v: %w", p.Method, ErrUnknownMethod)
	}
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Result holds the estimated variance components.
type Result struct {
	VarAdditive   float64
	VarResidual   float64
	Heritability  float64 // σ²_a / (σ²_a + σ²_e)
	Converged     bool
	Iterations    int     // rounds completed
	LogLikelihood float64 // restricted log-likelihood at the returned estimates
	Method        Method
}
