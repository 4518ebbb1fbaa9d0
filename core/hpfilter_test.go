package core

import (
	"errors"
	"math"
	"testing"

	"github.com/guregu/null/v5"

	m "github.com/karaki0910/my-macro-project/models"
)

// generateCyclicalSeries builds a deterministic trending series with a
// superimposed oscillation, the shape the filter exists to split apart.
func generateCyclicalSeries(t *testing.T, n int) []float64 {
	t.Helper()
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + 0.7*float64(i) + 2.5*math.Sin(0.9*float64(i))
	}
	return values
}

func Test_Decompose_ReconstructionIdentity(t *testing.T) {
	values := generateCyclicalSeries(t, 60)

	for _, smoothing := range []float64{10, 100, 1600} {
		res, err := Decompose(values, smoothing)
		if err != nil {
			t.Fatalf("error decomposing series with smoothing %v: %s", smoothing, err)
		}

		if len(res.Trend) != len(values) || len(res.Cycle) != len(values) {
			t.Fatalf("result length mismatch: trend %d, cycle %d, input %d", len(res.Trend), len(res.Cycle), len(values))
		}

		for i := range values {
			reconstructed := res.Trend[i] + res.Cycle[i]
			relative := math.Abs(reconstructed-values[i]) / math.Abs(values[i])
			if relative > 1e-9 {
				t.Errorf("reconstruction mismatch at %d for smoothing %v: %.12f vs %.12f", i, smoothing, reconstructed, values[i])
			}
		}
	}
}

func Test_Decompose_LinearSeriesHasZeroCycle(t *testing.T) {
	values := []float64{100, 200, 300, 400}

	res, err := Decompose(values, 1600)
	if err != nil {
		t.Fatalf("error decomposing linear series: %s", err)
	}

	for i := range values {
		if math.Abs(res.Cycle[i]) > 1e-6 {
			t.Errorf("cycle at %d should vanish for a linear series, got %.10f", i, res.Cycle[i])
		}
		if math.Abs(res.Trend[i]-values[i]) > 1e-6 {
			t.Errorf("trend at %d should match a linear series, got %.10f want %.10f", i, res.Trend[i], values[i])
		}
	}
}

func Test_Decompose_LongerLinearSeriesAnySmoothing(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 50 - 1.25*float64(i)
	}

	for _, smoothing := range []float64{0.5, 10, 100, 1600, 129600} {
		res, err := Decompose(values, smoothing)
		if err != nil {
			t.Fatalf("error decomposing with smoothing %v: %s", smoothing, err)
		}
		for i := range values {
			if math.Abs(res.Cycle[i]) > 1e-6 {
				t.Errorf("smoothing %v: cycle at %d should vanish, got %.10f", smoothing, i, res.Cycle[i])
			}
		}
	}
}

func Test_Decompose_HigherSmoothingGivesFlatterTrend(t *testing.T) {
	values := generateCyclicalSeries(t, 80)

	inputRoughness := TrendRoughness(values)
	previous := math.Inf(1)
	for _, smoothing := range []float64{10, 100, 1600, 129600} {
		res, err := Decompose(values, smoothing)
		if err != nil {
			t.Fatalf("error decomposing with smoothing %v: %s", smoothing, err)
		}

		roughness := TrendRoughness(res.Trend)
		if roughness > inputRoughness {
			t.Errorf("smoothing %v: trend rougher than the input (%.6f > %.6f)", smoothing, roughness, inputRoughness)
		}
		if roughness > previous+1e-9 {
			t.Errorf("smoothing %v: roughness %.10f should not exceed %.10f from the smaller weight", smoothing, roughness, previous)
		}
		previous = roughness
	}
}

func Test_Decompose_ConstantSeriesIsItsOwnTrend(t *testing.T) {
	values := []float64{42, 42, 42, 42, 42, 42}

	res, err := Decompose(values, 100)
	if err != nil {
		t.Fatalf("error decomposing constant series: %s", err)
	}

	for i := range values {
		if math.Abs(res.Trend[i]-42) > 1e-8 {
			t.Errorf("trend at %d: expected 42, got %.10f", i, res.Trend[i])
		}
	}
}

func Test_Decompose_RejectsBadSmoothing(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	for _, smoothing := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := Decompose(values, smoothing); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("smoothing %v: expected invalid input, got %v", smoothing, err)
		}
	}
}

func Test_Decompose_RejectsNonFiniteValues(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(-1)} {
		values := []float64{1, 2, bad, 4, 5}
		if _, err := Decompose(values, 100); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("value %v: expected invalid input, got %v", bad, err)
		}
	}
}

func Test_Decompose_TooFewPoints(t *testing.T) {
	if _, err := Decompose([]float64{1, 2, 3}, 100); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data for three points, got %v", err)
	}
	if _, err := Decompose(nil, 100); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data for an empty series, got %v", err)
	}
}

func Test_DecomposeSeries_MissingValueFails(t *testing.T) {
	series := m.NewAnnualSeries("gdp", 2000, []null.Float{
		null.NewFloat(100, true),
		null.NewFloat(0, false),
		null.NewFloat(120, true),
		null.NewFloat(130, true),
	})

	if _, err := DecomposeSeries(series, 100); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input for a gapped series, got %v", err)
	}

	// dropping the gap leaves three points, which is still too short
	if _, err := DecomposeSeries(series.DropMissing(), 100); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data after dropping to three points, got %v", err)
	}
}

func Test_Decompose_DeterministicAcrossCalls(t *testing.T) {
	values := generateCyclicalSeries(t, 50)

	first, err := Decompose(values, 1600)
	if err != nil {
		t.Fatalf("error decomposing series: %s", err)
	}
	second, err := Decompose(values, 1600)
	if err != nil {
		t.Fatalf("error decomposing series again: %s", err)
	}

	for i := range values {
		if first.Trend[i] != second.Trend[i] {
			t.Fatalf("trend differs across identical calls at %d", i)
		}
	}
}
