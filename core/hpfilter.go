package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

// the penalized filter solves a banded system of width two, anything under
// four points leaves the second-difference penalty with nothing to act on
const minDecompositionPoints = 4

// DecompositionResult splits a series into a smooth trend and the residual
// cycle. Both slices have the same length and index alignment as the input,
// and trend[i] + cycle[i] reproduces the input exactly.
type DecompositionResult struct {
	Trend     []float64
	Cycle     []float64
	Smoothing float64
}

// Decompose runs the Hodrick Prescott filter: it picks the trend minimizing
//
//	sum (y_i - t_i)^2 + smoothing * sum (t_{i+1} - 2 t_i + t_{i-1})^2
//
// by solving (I + smoothing * D'D) t = y, with D the second-difference
// operator. Higher smoothing weights give a flatter trend; 100 is the usual
// weight for annual data and 1600 for quarterly.
func Decompose(values []float64, smoothing float64) (*DecompositionResult, error) {
	if smoothing <= 0 || math.IsNaN(smoothing) || math.IsInf(smoothing, 0) {
		return nil, fmt.Errorf("smoothing weight must be a positive real, got %v: %w", smoothing, ErrInvalidInput)
	}

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("value at index %d is %v: %w", i, v, ErrInvalidInput)
		}
	}

	n := len(values)
	if n < minDecompositionPoints {
		return nil, fmt.Errorf("decomposition needs at least %d points, got %d: %w", minDecompositionPoints, n, ErrInsufficientData)
	}

	system := buildPenaltySystem(n, smoothing)

	var chol mat.BandCholesky
	if ok := chol.Factorize(system); !ok {
		return nil, fmt.Errorf("trend system matrix is not positive definite")
	}

	trendVec := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(trendVec, mat.NewVecDense(n, values)); err != nil {
		return nil, fmt.Errorf("error solving trend system: %w", err)
	}

	trend := make([]float64, n)
	cycle := make([]float64, n)
	for i := 0; i < n; i++ {
		trend[i] = trendVec.AtVec(i)
		cycle[i] = values[i] - trend[i]
	}

	return &DecompositionResult{
		Trend:     trend,
		Cycle:     cycle,
		Smoothing: smoothing,
	}, nil
}

// DecomposeSeries validates and filters a dated series. A missing point
// anywhere fails the call, the caller decides whether dropping gaps is
// sound for its data before retrying.
func DecomposeSeries(series *m.TimeSeries, smoothing float64) (*DecompositionResult, error) {
	for _, p := range series.Points {
		if !p.Value.Valid {
			return nil, fmt.Errorf("series %s has a missing value at %s: %w", series.Name, ex.FmtShort(p.Timestamp), ErrInvalidInput)
		}
	}
	return Decompose(series.Values(), smoothing)
}

// buildPenaltySystem assembles I + smoothing * D'D as a symmetric band
// matrix of bandwidth two. D'D is accumulated row by row from the
// second-difference stencil {+1, -2, +1} so the boundary rows come out
// right for any length.
func buildPenaltySystem(n int, smoothing float64) *mat.SymBandDense {
	diag := make([]float64, n)
	off1 := make([]float64, n-1)
	off2 := make([]float64, n-2)

	for r := 0; r+2 < n; r++ {
		diag[r] += 1
		diag[r+1] += 4
		diag[r+2] += 1
		off1[r] -= 2
		off1[r+1] -= 2
		off2[r] += 1
	}

	system := mat.NewSymBandDense(n, 2, nil)
	for i := 0; i < n; i++ {
		system.SetSymBand(i, i, 1+smoothing*diag[i])
		if i+1 < n {
			system.SetSymBand(i, i+1, smoothing*off1[i])
		}
		if i+2 < n {
			system.SetSymBand(i, i+2, smoothing*off2[i])
		}
	}

	return system
}

// DecomposeAll runs the filter over the same values once per smoothing
// weight, in the order given. Results align with the weights slice.
func DecomposeAll(values []float64, smoothings []float64) ([]*DecompositionResult, error) {
	results := make([]*DecompositionResult, 0, len(smoothings))
	for _, smoothing := range smoothings {
		result, err := Decompose(values, smoothing)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// TrendRoughness is the summed squared second difference of a trend, the
// quantity the smoothing weight penalizes. Exposed for diagnostics and for
// comparing fits across weights.
func TrendRoughness(trend []float64) float64 {
	var roughness float64
	for i := 2; i < len(trend); i++ {
		d := trend[i] - 2*trend[i-1] + trend[i-2]
		roughness += d * d
	}
	return roughness
}
