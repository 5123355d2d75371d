// SPDX-License-Identifier: MIT

package compute

import (
	"time"

	"github.com/katalvlaran/quantgen/blup"
	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"github.com/katalvlaran/quantgen/native"
	"github.com/katalvlaran/quantgen/reml"
	"go.uber.org/zap"
)

// Engine runs the numeric operations on the backend chosen at construction.
// All fields are fixed after NewEngine; methods may be called concurrently.
type Engine struct {
	backend    Backend
	capability Capability
	grmOpts    []grm.Option
	logger     *zap.Logger
}

// NewEngine probes for a native backend once and logs the outcome.
// A nil logger disables logging.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	capability, b := probe(cfg)
	e := &Engine{
		backend:    b,
		capability: capability,
		grmOpts:    cfg.GRMOptions(),
		logger:     logger.Named("compute"),
	}

	fields := []zap.Field{
		zap.String("backend", capability.BackendName),
		zap.String("mode", string(cfg.mode())),
		zap.Strings("cpu_features", capability.CPUFeatures),
	}
	switch {
	case capability.NativeAvailable:
		e.logger.Info("native backend loaded", fields...)
	case cfg.mode() == ModeFallback || cfg.Native.Disabled:
		e.logger.Info("native backend disabled, using portable backend", fields...)
	default:
		e.logger.Error("native backend unavailable, using portable backend",
			append(fields, zap.String("probe_error", capability.ProbeError))...)
	}

	return e
}

// NewEngineWithBackend wraps an explicit backend, skipping the probe.
// Capability().NativeAvailable is true only for the built-in gonum backend;
// any other Backend, test doubles included, is reported as not native.
func NewEngineWithBackend(b Backend, logger *zap.Logger, opts ...grm.Option) *Engine {
	if b == nil {
		b = Fallback()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	_, isNative := b.(*native.Backend)

	return &Engine{
		backend: b,
		capability: Capability{
			NativeAvailable: isNative && native.Available,
			BackendName:     b.Name(),
		},
		grmOpts: opts,
		logger:  logger.Named("compute"),
	}
}

// Capability returns the probe outcome.
func (e *Engine) Capability() Capability {
	c := e.capability
	c.CPUFeatures = c.Features()

	return c
}

// BackendName returns the name of the active backend.
func (e *Engine) BackendName() string { return e.backend.Name() }

// ComputeGRM builds a GRM with the configured ploidy and workers; opts are
// applied after them.
func (e *Engine) ComputeGRM(genotypes matrix.Matrix, method grm.Method, opts ...grm.Option) (*grm.Result, error) {
	start := time.Now()
	res, err := e.backend.ComputeGRM(genotypes, method, e.options(opts)...)
	if err != nil {
		e.logger.Debug("grm failed", zap.Stringer("method", method), zap.Error(err))

		return nil, err
	}
	e.logger.Debug("grm computed",
		zap.Stringer("method", method),
		zap.Int("individuals", res.Individuals),
		zap.Int("markers", res.Markers),
		zap.Duration("elapsed", time.Since(start)))

	return res, nil
}

// SolveBLUP solves the mixed-model equations.
func (e *Engine) SolveBLUP(y []float64, X, Z, Ainv matrix.Matrix, varA, varE float64) (*blup.Result, error) {
	res, err := e.backend.SolveBLUP(y, X, Z, Ainv, varA, varE)
	if err != nil {
		e.logger.Debug("blup failed", zap.Error(err))

		return nil, err
	}
	if !res.Converged {
		e.logger.Warn("blup system singular or ill-conditioned",
			zap.Int("records", len(y)),
			zap.Float64("var_a", varA),
			zap.Float64("var_e", varE))
	}

	return res, nil
}

// SolveGBLUP runs genomic BLUP with the configured GRM options.
func (e *Engine) SolveGBLUP(genotypes matrix.Matrix, y []float64, h2 float64, opts ...grm.Option) (*blup.Result, error) {
	res, err := e.backend.SolveGBLUP(genotypes, y, h2, e.options(opts)...)
	if err != nil {
		e.logger.Debug("gblup failed", zap.Error(err))

		return nil, err
	}
	if !res.Converged {
		e.logger.Warn("gblup system singular, returning phenotypic mean",
			zap.Int("individuals", len(y)),
			zap.Float64("h2", h2))
	}

	return res, nil
}

// EstimateVarianceComponents runs REML.
func (e *Engine) EstimateVarianceComponents(y []float64, X, Z, A matrix.Matrix, params reml.Params) (*reml.Result, error) {
	start := time.Now()
	res, err := e.backend.EstimateVarianceComponents(y, X, Z, A, params)
	if err != nil {
		e.logger.Debug("reml failed", zap.Error(err))

		return nil, err
	}
	if !res.Converged {
		e.logger.Warn("reml did not converge",
			zap.Int("iterations", res.Iterations),
			zap.Int("max_iter", params.MaxIter),
			zap.Float64("var_a", res.VarAdditive),
			zap.Float64("var_e", res.VarResidual))
	} else {
		e.logger.Debug("reml converged",
			zap.Int("iterations", res.Iterations),
			zap.Float64("h2", res.Heritability),
			zap.Duration("elapsed", time.Since(start)))
	}

	return res, nil
}

func (e *Engine) options(extra []grm.Option) []grm.Option {
	if len(extra) == 0 {
		return e.grmOpts
	}
	out := make([]grm.Option, 0, len(e.grmOpts)+len(extra))
	out = append(out, e.grmOpts...)

	return append(out, extra...)
}
