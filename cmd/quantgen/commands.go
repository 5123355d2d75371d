// SPDX-License-Identifier: MIT

package main

import (
	"math"

	"github.com/katalvlaran/quantgen/grm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type statusResponse struct {
	NativeAvailable bool     `json:"native_available"`
	Backend         string   `json:"backend"`
	CPUFeatures     []string `json:"cpu_features"`
	ProbeError      string   `json:"probe_error,omitempty"`
	Mode            string   `json:"mode"`
	GRMWorkers      int      `json:"grm_workers"`
	GRMPloidy       int      `json:"grm_ploidy"`
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report the selected backend and CPU capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.engine.Capability()

			return writeJSON(cmd, statusResponse{
				NativeAvailable: c.NativeAvailable,
				Backend:         c.BackendName,
				CPUFeatures:     c.CPUFeatures,
				ProbeError:      c.ProbeError,
				Mode:            string(a.cfg.Backend),
				GRMWorkers:      a.cfg.GRM.Workers,
				GRMPloidy:       a.cfg.GRM.Ploidy,
			})
		},
	}
}

func (a *app) grmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grm",
		Short: "Build a genomic relationship matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req grmRequest
			if err := a.readRequest(cmd, &req); err != nil {
				return err
			}
			method := grm.VanRaden1
			if req.Method != "" {
				var err error
				if method, err = grm.ParseMethod(req.Method); err != nil {
					return err
				}
			}
			geno, err := genotypeMatrix(req.Genotypes)
			if err != nil {
				return err
			}
			res, err := a.engine.ComputeGRM(geno, method, req.options()...)
			if err != nil {
				return err
			}
			summary, err := grm.Inbreeding(res.Matrix)
			if err != nil {
				return err
			}

			return writeJSON(cmd, grmResponse{
				Method:      res.Method.String(),
				Backend:     a.engine.BackendName(),
				Individuals: res.Individuals,
				Markers:     res.Markers,
				Matrix:      res.Matrix.ToRows(),
				Inbreeding: &inbreedingJSON{
					Coefficients:      summary.Coefficients,
					Mean:              summary.MeanInbreeding,
					Min:               summary.MinInbreeding,
					Max:               summary.MaxInbreeding,
					PopulationKinship: summary.PopulationKinship,
					EffectiveSize:     summary.EffectiveSize,
				},
			})
		},
	}
	a.addInputFlag(cmd)

	return cmd
}

func (a *app) blupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blup",
		Short: "Solve Henderson's mixed-model equations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req blupRequest
			if err := a.readRequest(cmd, &req); err != nil {
				return err
			}
			X, err := denseField("x", req.X)
			if err != nil {
				return err
			}
			Z, err := denseField("z", req.Z)
			if err != nil {
				return err
			}
			AInv, err := denseField("a_inv", req.AInv)
			if err != nil {
				return err
			}
			res, err := a.engine.SolveBLUP(req.Y, X, Z, AInv, req.VarA, req.VarE)
			if err != nil {
				return err
			}

			return writeJSON(cmd, blupResponse{
				Backend:        a.engine.BackendName(),
				FixedEffects:   res.FixedEffects,
				BreedingValues: res.BreedingValues,
				Reliability:    res.Reliability,
				Converged:      res.Converged,
			})
		},
	}
	a.addInputFlag(cmd)

	return cmd
}

func (a *app) gblupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gblup",
		Short: "Genomic BLUP from genotypes and phenotypes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req gblupRequest
			if err := a.readRequest(cmd, &req); err != nil {
				return err
			}
			geno, err := genotypeMatrix(req.Genotypes)
			if err != nil {
				return err
			}
			res, err := a.engine.SolveGBLUP(geno, req.Phenotypes, req.Heritability)
			if err != nil {
				return err
			}

			return writeJSON(cmd, blupResponse{
				Backend:        a.engine.BackendName(),
				FixedEffects:   res.FixedEffects,
				BreedingValues: res.BreedingValues,
				Reliability:    res.Reliability,
				Converged:      res.Converged,
			})
		},
	}
	a.addInputFlag(cmd)

	return cmd
}

func (a *app) remlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reml",
		Short: "Estimate variance components by EM-REML",
		Args:  cobra.NoArgs,
		Long: `Estimate additive and residual variance components by EM-REML.

The request's "method" accepts "em-reml" (the default). "ai-reml" is
accepted for compatibility and runs EM-REML with a warning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req remlRequest
			if err := a.readRequest(cmd, &req); err != nil {
				return err
			}
			params, emulated, err := req.params()
			if err != nil {
				return err
			}
			if emulated {
				a.logger.Warn("ai-reml is not implemented, running em-reml", zap.String("method", req.Method))
			}
			X, err := denseField("x", req.X)
			if err != nil {
				return err
			}
			Z, err := denseField("z", req.Z)
			if err != nil {
				return err
			}
			A, err := denseField("a", req.A)
			if err != nil {
				return err
			}
			res, err := a.engine.EstimateVarianceComponents(req.Y, X, Z, A, params)
			if err != nil {
				return err
			}
			out := remlResponse{
				Backend:      a.engine.BackendName(),
				VarAdditive:  res.VarAdditive,
				VarResidual:  res.VarResidual,
				Heritability: res.Heritability,
				Converged:    res.Converged,
				Iterations:   res.Iterations,
				Method:       res.Method.String(),
			}
			if !math.IsNaN(res.LogLikelihood) {
				ll := res.LogLikelihood
				out.LogLikelihood = &ll
			}

			return writeJSON(cmd, out)
		},
	}
	a.addInputFlag(cmd)

	return cmd
}
