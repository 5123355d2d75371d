// SPDX-License-Identifier: MIT

package grm

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quantgen/matrix"
)

const opInbreeding = "grm.Inbreeding"

// minMeanInbreeding is the |mean F| below which no effective population
// size is reported.
const minMeanInbreeding = 1e-6

// InbreedingSummary describes the inbreeding and relatedness encoded in a GRM.
type InbreedingSummary struct {
	Coefficients   []float64 // F_i = G_ii − 1
	AverageKinship []float64 // mean_{j≠i} G_ij per individual (0 when n == 1)

	MeanInbreeding float64
	MinInbreeding  float64
	MaxInbreeding  float64
	SDInbreeding   float64 // population standard deviation
	Inbred         int     // count of F > 0
	Outcrossed     int     // count of F < 0

	PopulationKinship   float64 // mean of all off-diagonal entries
	PopulationKinshipSD float64

	// EffectiveSize approximates Ne ≈ 1/(2·|mean F|); 0 when |mean F| is
	// too small to give a meaningful estimate.
	EffectiveSize float64
}

// Inbreeding extracts inbreeding coefficients and average relatedness from
// a square relationship matrix.
// Errors: matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrNaNInf.
// Complexity: O(n²).
func Inbreeding(g matrix.Matrix) (*InbreedingSummary, error) {
	if err := matrix.ValidateSquare(g); err != nil {
		return nil, fmt.Errorf("%s: %w", opInbreeding, err)
	}
	if err := matrix.ValidateFinite(g); err != nil {
		return nil, fmt.Errorf("%s: %w", opInbreeding, err)
	}
	d, err := matrix.AsDense(g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opInbreeding, err)
	}

	n := d.Rows()
	s := &InbreedingSummary{
		Coefficients:   d.Diagonal(),
		AverageKinship: make([]float64, n),
		MinInbreeding:  math.Inf(1),
		MaxInbreeding:  math.Inf(-1),
	}
	for i := range s.Coefficients {
		f := s.Coefficients[i] - 1
		s.Coefficients[i] = f
		s.MeanInbreeding += f
		s.MinInbreeding = math.Min(s.MinInbreeding, f)
		s.MaxInbreeding = math.Max(s.MaxInbreeding, f)
		switch {
		case f > 0:
			s.Inbred++
		case f < 0:
			s.Outcrossed++
		}
	}
	s.MeanInbreeding /= float64(n)
	for _, f := range s.Coefficients {
		s.SDInbreeding += (f - s.MeanInbreeding) * (f - s.MeanInbreeding)
	}
	s.SDInbreeding = math.Sqrt(s.SDInbreeding / float64(n))

	if n > 1 {
		var sum, sumSq float64
		for i := 0; i < n; i++ {
			row, _ := d.RowView(i) // i < n
			var rowSum float64
			for j, v := range row {
				if j == i {
					continue
				}
				rowSum += v
				sumSq += v * v
			}
			s.AverageKinship[i] = rowSum / float64(n-1)
			sum += rowSum
		}
		cells := float64(n * (n - 1))
		s.PopulationKinship = sum / cells
		s.PopulationKinshipSD = math.Sqrt(math.Max(sumSq/cells-s.PopulationKinship*s.PopulationKinship, 0))
	}

	if math.Abs(s.MeanInbreeding) > minMeanInbreeding {
		s.EffectiveSize = 1 / (2 * math.Abs(s.MeanInbreeding))
	}

	return s, nil
}
