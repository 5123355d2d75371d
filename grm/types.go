// SPDX-License-Identifier: MIT

// Package grm: methods, results and sentinel errors.
package grm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/quantgen/matrix"
)

var (
	// ErrUnknownMethod is returned for a Method value or name outside
	// VanRaden1, VanRaden2 and Yang.
	ErrUnknownMethod = errors.New("grm: unknown method")

	// ErrInvalidDosage is returned when a genotype cell is ±Inf or outside
	// [0, ploidy]. NaN is not an error: it marks a missing call.
	ErrInvalidDosage = errors.New("grm: invalid genotype dosage")
)

// Method selects the GRM estimator.
type Method int

const (
	// VanRaden1 scales the centered cross-product by the summed heterozygosity.
	VanRaden1 Method = iota

	// VanRaden2 standardizes each locus by its own heterozygosity.
	VanRaden2

	// Yang accumulates per-locus outer products weighted by 1/heterozygosity.
	Yang
)

// String returns the canonical lower-case method name.
func (m Method) String() string {
	switch m {
	case VanRaden1:
		return "vanraden1"
	case VanRaden2:
		return "vanraden2"
	case Yang:
		return "yang"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func (m Method) valid() bool { return m >= VanRaden1 && m <= Yang }

// ParseMethod maps a method name (case-insensitive) to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vanraden1", "vanraden", "vr1":
		return VanRaden1, nil
	case "vanraden2", "vr2":
		return VanRaden2, nil
	case "yang", "gcta":
		return Yang, nil
	}

	return 0, fmt.Errorf("%q: %w", s, ErrUnknownMethod)
}

// Result is a computed genomic relationship matrix.
// Matrix is owned by the caller; the package keeps no reference to it.
type Result struct {
	Matrix      *matrix.Dense // n×n, symmetric
	Method      Method        // estimator used
	Individuals int           // n
	Markers     int           // m
}
