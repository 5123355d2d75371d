// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/quantgen/grm"
	"github.com/katalvlaran/quantgen/matrix"
	"github.com/katalvlaran/quantgen/reml"
)

var errMissingField = errors.New("missing required field")

// grmRequest: genotypes are dosages, null marks a missing call.
type grmRequest struct {
	Genotypes [][]*float64 `json:"genotypes"`
	Method    string       `json:"method"`
	Ploidy    int          `json:"ploidy,omitempty"`
}

type grmResponse struct {
	Method      string          `json:"method"`
	Backend     string          `json:"backend"`
	Individuals int             `json:"individuals"`
	Markers     int             `json:"markers"`
	Matrix      [][]float64     `json:"matrix"`
	Inbreeding  *inbreedingJSON `json:"inbreeding"`
}

type inbreedingJSON struct {
	Coefficients      []float64 `json:"coefficients"`
	Mean              float64   `json:"mean"`
	Min               float64   `json:"min"`
	Max               float64   `json:"max"`
	PopulationKinship float64   `json:"population_kinship"`
	EffectiveSize     float64   `json:"effective_size"`
}

type blupRequest struct {
	Y    []float64   `json:"y"`
	X    [][]float64 `json:"x"`
	Z    [][]float64 `json:"z"`
	AInv [][]float64 `json:"a_inv"`
	VarA float64     `json:"var_a"`
	VarE float64     `json:"var_e"`
}

type gblupRequest struct {
	Genotypes    [][]*float64 `json:"genotypes"`
	Phenotypes   []float64    `json:"phenotypes"`
	Heritability float64      `json:"heritability"`
}

type blupResponse struct {
	Backend        string    `json:"backend"`
	FixedEffects   []float64 `json:"fixed_effects"`
	BreedingValues []float64 `json:"breeding_values"`
	Reliability    []float64 `json:"reliability"`
	Converged      bool      `json:"converged"`
}

// remlRequest: zero-valued tuning fields take reml.DefaultParams values.
type remlRequest struct {
	Y         []float64   `json:"y"`
	X         [][]float64 `json:"x"`
	Z         [][]float64 `json:"z"`
	A         [][]float64 `json:"a"`
	VarA      float64     `json:"var_a,omitempty"`
	VarE      float64     `json:"var_e,omitempty"`
	Method    string      `json:"method,omitempty"`
	MaxIter   int         `json:"max_iter,omitempty"`
	Tolerance float64     `json:"tolerance,omitempty"`
}

type remlResponse struct {
	Backend       string   `json:"backend"`
	VarAdditive   float64  `json:"var_additive"`
	VarResidual   float64  `json:"var_residual"`
	Heritability  float64  `json:"heritability"`
	Converged     bool     `json:"converged"`
	Iterations    int      `json:"iterations"`
	LogLikelihood *float64 `json:"log_likelihood"` // null when never evaluated
	Method        string   `json:"method"`
}

// genotypeMatrix converts JSON dosages to a Dense, null → NaN.
func genotypeMatrix(rows [][]*float64) (*matrix.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("genotypes: %w", errMissingField)
	}
	dense := make([][]float64, len(rows))
	for i, row := range rows {
		dense[i] = make([]float64, len(row))
		for k, v := range row {
			if v == nil {
				dense[i][k] = math.NaN()
			} else {
				dense[i][k] = *v
			}
		}
	}

	return matrix.FromRows(dense)
}

func denseField(name string, rows [][]float64) (*matrix.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", name, errMissingField)
	}
	m, err := matrix.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return m, nil
}

func (r grmRequest) options() []grm.Option {
	if r.Ploidy > 0 {
		return []grm.Option{grm.WithPloidy(r.Ploidy)}
	}

	return nil
}

// params fills reml.DefaultParams from the request. An "ai-reml" method is
// accepted and run as EM-REML; emulated reports that substitution.
func (r remlRequest) params() (p reml.Params, emulated bool, err error) {
	p = reml.DefaultParams()
	if r.VarA != 0 {
		p.VarAdditive = r.VarA
	}
	if r.VarE != 0 {
		p.VarResidual = r.VarE
	}
	if r.MaxIter != 0 {
		p.MaxIter = r.MaxIter
	}
	if r.Tolerance != 0 {
		p.Tolerance = r.Tolerance
	}
	if r.Method != "" {
		m, err := reml.ParseMethod(r.Method)
		switch {
		case m == reml.MethodAI && errors.Is(err, reml.ErrUnsupportedMethod):
			m, emulated = reml.MethodEM, true
		case err != nil:
			return p, false, err
		}
		p.Method = m
	}

	return p, emulated, nil
}
