package core

import (
	"errors"
	"math"
	"testing"

	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

func Test_Describe(t *testing.T) {
	summary, err := Describe("test", []float64{5, 1, 4, 2, 3})
	if err != nil {
		t.Fatalf("error describing values: %s", err)
	}

	ex.AssertAreEqual(t, "field", "test", summary.Field)
	ex.AssertAreEqual(t, "count", 5, summary.Count)
	ex.AssertAreEqual(t, "mean", 3.0, summary.Mean)
	ex.AssertInDelta(t, "std dev", math.Sqrt(2.5), summary.StdDev, 1e-12)
	ex.AssertAreEqual(t, "min", 1.0, summary.Min)
	ex.AssertAreEqual(t, "first quartile", 2.0, summary.FirstQuartile)
	ex.AssertAreEqual(t, "median", 3.0, summary.Median)
	ex.AssertAreEqual(t, "third quartile", 4.0, summary.ThirdQuartile)
	ex.AssertAreEqual(t, "max", 5.0, summary.Max)
}

func Test_Describe_SingleValue(t *testing.T) {
	summary, err := Describe("solo", []float64{7})
	if err != nil {
		t.Fatalf("error describing single value: %s", err)
	}

	ex.AssertAreEqual(t, "mean", 7.0, summary.Mean)
	ex.AssertAreEqual(t, "min", 7.0, summary.Min)
	ex.AssertAreEqual(t, "median", 7.0, summary.Median)
	ex.AssertAreEqual(t, "max", 7.0, summary.Max)

	// sample standard deviation is undefined for one observation
	if !math.IsNaN(summary.StdDev) {
		t.Errorf("expected NaN std dev for a single value, got %v", summary.StdDev)
	}
}

func Test_Describe_Empty(t *testing.T) {
	if _, err := Describe("empty", nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data, got %v", err)
	}
}

func Test_SummarizePanel(t *testing.T) {
	inputs := []m.GrowthInput{
		growthInput(t, "AUS", 2.8, 3.5, 1.5),
		growthInput(t, "CAN", 2.3, 3.0, 1.2),
		growthInput(t, "USA", 2.5, 3.2, 1.2),
	}
	panel, err := EstimateGrowthPanel(inputs, DefaultAccountingOptions())
	if err != nil {
		t.Fatalf("error estimating panel: %s", err)
	}

	summaries, err := SummarizePanel(panel)
	if err != nil {
		t.Fatalf("error summarizing panel: %s", err)
	}

	expectedFields := []string{
		"Output growth", "Capital growth", "Labor growth",
		"TFP growth", "Capital deepening", "TFP share", "Capital contribution",
	}
	ex.AssertAreEqual(t, "column count", len(expectedFields), len(summaries))
	for i, field := range expectedFields {
		ex.AssertAreEqual(t, "column order", field, summaries[i].Field)
		ex.AssertAreEqual(t, "column sample size", 3, summaries[i].Count)
	}

	ex.AssertInDelta(t, "output growth mean", ex.Mean([]float64{2.8, 2.3, 2.5}), summaries[0].Mean, 1e-12)
	ex.AssertAreEqual(t, "output growth max", 2.8, summaries[0].Max)
}

func Test_SummarizePanel_Empty(t *testing.T) {
	if _, err := SummarizePanel(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data for nil panel, got %v", err)
	}
	if _, err := SummarizePanel(&m.GrowthPanel{}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data for empty panel, got %v", err)
	}
}

func Test_GetPanelCorrelations(t *testing.T) {
	// capital fixed and labor linear in output, so tfp growth rises exactly
	// with output growth and deepening falls exactly with it
	inputs := []m.GrowthInput{
		growthInput(t, "AUS", 2.0, 3.0, 1.0),
		growthInput(t, "CAN", 3.0, 3.0, 1.1),
		growthInput(t, "DEU", 4.0, 3.0, 1.2),
		growthInput(t, "USA", 5.0, 3.0, 1.3),
	}
	panel, err := EstimateGrowthPanel(inputs, AccountingOptions{CapitalShare: 0.35})
	if err != nil {
		t.Fatalf("error estimating panel: %s", err)
	}

	correlations, err := GetPanelCorrelations(panel)
	if err != nil {
		t.Fatalf("error computing correlations: %s", err)
	}

	ex.AssertAreEqual(t, "field count", 3, len(correlations.Fields))
	ex.AssertAreEqual(t, "matrix dimension", 3, correlations.Matrix.SymmetricDim())

	for i := 0; i < 3; i++ {
		ex.AssertInDelta(t, "diagonal", 1.0, correlations.Matrix.At(i, i), 1e-12)
	}

	ex.AssertInDelta(t, "output against tfp", 1.0, correlations.Matrix.At(0, 1), 1e-9)
	ex.AssertInDelta(t, "output against deepening", -1.0, correlations.Matrix.At(0, 2), 1e-9)
	ex.AssertInDelta(t, "tfp against deepening", -1.0, correlations.Matrix.At(1, 2), 1e-9)
	ex.AssertAreEqual(t, "symmetry", correlations.Matrix.At(0, 1), correlations.Matrix.At(1, 0))
}

func Test_GetPanelCorrelations_TooFewCountries(t *testing.T) {
	inputs := []m.GrowthInput{growthInput(t, "AUS", 2.8, 3.5, 1.5)}
	panel, err := EstimateGrowthPanel(inputs, DefaultAccountingOptions())
	if err != nil {
		t.Fatalf("error estimating panel: %s", err)
	}

	if _, err := GetPanelCorrelations(panel); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data, got %v", err)
	}
}

func Test_ColumnsToMatrix(t *testing.T) {
	matrix := columnsToMatrix([][]int{{1, 2}, {3, 4}})

	rows, cols := matrix.Dims()
	ex.AssertAreEqual(t, "observation rows", 2, rows)
	ex.AssertAreEqual(t, "variable columns", 2, cols)
	ex.AssertAreEqual(t, "first variable", 1.0, matrix.At(0, 0))
	ex.AssertAreEqual(t, "second variable", 3.0, matrix.At(0, 1))
	ex.AssertAreEqual(t, "second observation", 2.0, matrix.At(1, 0))
}
