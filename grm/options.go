// SPDX-License-Identifier: MIT

// Package grm: functional options.
package grm

import (
	"math"
	"runtime"
)

const (
	// DefaultPloidy is the diploid dosage coding {0,1,2}.
	DefaultPloidy = 2

	// Epsilon floors heterozygosity before inversion and guards the
	// VanRaden1 denominator against zero.
	Epsilon = 1e-10
)

const (
	panicPloidyInvalid  = "grm: WithPloidy: ploidy must be > 0"
	panicWorkersInvalid = "grm: WithWorkers: workers must be > 0"
	panicEpsInvalid     = "grm: WithEpsilon: eps must be finite and > 0"
)

// Option mutates internal options.
type Option func(*Options)

// Options holds the effective GRM configuration.
type Options struct {
	ploidy  int
	workers int
	eps     float64
}

// WithPloidy sets the number of chromosome copies; dosages range over [0, ploidy].
func WithPloidy(ploidy int) Option {
	if ploidy <= 0 {
		panic(panicPloidyInvalid)
	}

	return func(o *Options) { o.ploidy = ploidy }
}

// WithWorkers sets how many goroutines share the n×n product.
// The result does not depend on this value.
func WithWorkers(workers int) Option {
	if workers <= 0 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = workers }
}

// WithEpsilon overrides the heterozygosity floor.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps <= 0 {
		panic(panicEpsInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

func gatherOptions(user ...Option) Options {
	o := Options{
		ploidy:  DefaultPloidy,
		workers: runtime.GOMAXPROCS(0),
		eps:     Epsilon,
	}
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
