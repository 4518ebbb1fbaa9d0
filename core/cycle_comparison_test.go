package core

import (
	"errors"
	"math"
	"testing"

	"github.com/guregu/null/v5"

	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

func annualLevels(t *testing.T, name string, startYear, count int, level func(i int) float64) *m.TimeSeries {
	t.Helper()
	values := make([]null.Float, count)
	for i := range values {
		values[i] = null.NewFloat(level(i), true)
	}
	return m.NewAnnualSeries(name, startYear, values)
}

func Test_CompareCycles_IdenticalSeries(t *testing.T) {
	level := func(i int) float64 { return 100 * math.Exp(0.03*float64(i)+0.02*math.Sin(0.8*float64(i))) }
	first := annualLevels(t, "united states", 1990, 30, level)
	second := annualLevels(t, "shadow", 1990, 30, level)

	comparison, err := CompareCycles(first, second, m.SmoothingQuarterly)
	if err != nil {
		t.Fatalf("error comparing cycles: %s", err)
	}

	ex.AssertAreEqual(t, "first name", "united states", comparison.FirstName)
	ex.AssertAreEqual(t, "second name", "shadow", comparison.SecondName)
	ex.AssertAreEqual(t, "aligned length", 30, len(comparison.Timestamps))
	ex.AssertInDelta(t, "correlation of identical cycles", 1.0, comparison.Correlation, 1e-9)
	ex.AssertAreEqual(t, "matching volatility", comparison.FirstStdDev, comparison.SecondStdDev)

	for i := range comparison.FirstCycle {
		ex.AssertAreEqual(t, "cycle point", comparison.FirstCycle[i], comparison.SecondCycle[i])
	}
}

func Test_CompareCycles_MirroredCyclesAnticorrelate(t *testing.T) {
	// both logs share a linear trend, the waves are exact opposites
	base := func(i int) float64 { return 500 + 2*float64(i) }
	wave := func(i int) float64 { return 3 * math.Sin(0.8*float64(i)) }

	first := annualLevels(t, "up", 1990, 30, func(i int) float64 { return math.Exp((base(i) + wave(i)) / 100) })
	second := annualLevels(t, "down", 1990, 30, func(i int) float64 { return math.Exp((base(i) - wave(i)) / 100) })

	comparison, err := CompareCycles(first, second, m.SmoothingQuarterly)
	if err != nil {
		t.Fatalf("error comparing cycles: %s", err)
	}

	ex.AssertInDelta(t, "mirrored correlation", -1.0, comparison.Correlation, 1e-6)
	ex.AssertInDelta(t, "mirrored volatility gap", 0, comparison.FirstStdDev-comparison.SecondStdDev, 1e-6)
}

func Test_CompareCycles_AlignsOnOverlap(t *testing.T) {
	// 1990..2010 against 1995..2015, sharing 1995..2010
	level := func(i int) float64 { return 100 * math.Pow(1.03, float64(i)) }
	first := annualLevels(t, "early", 1990, 21, level)
	second := annualLevels(t, "late", 1995, 21, level)

	comparison, err := CompareCycles(first, second, m.SmoothingAnnual)
	if err != nil {
		t.Fatalf("error comparing cycles: %s", err)
	}

	ex.AssertAreEqual(t, "overlap length", 16, len(comparison.Timestamps))
	ex.AssertAreEqual(t, "overlap start", 1995, comparison.Timestamps[0].Year())
	ex.AssertAreEqual(t, "overlap end", 2010, comparison.Timestamps[len(comparison.Timestamps)-1].Year())
	ex.AssertAreEqual(t, "cycle lengths match", len(comparison.FirstCycle), len(comparison.SecondCycle))
}

func Test_CompareCycles_SkipsMissingPointsOnBothSides(t *testing.T) {
	values := make([]null.Float, 20)
	for i := range values {
		values[i] = null.NewFloat(100*math.Pow(1.02, float64(i)), true)
	}
	gapped := make([]null.Float, 20)
	copy(gapped, values)
	gapped[5] = null.Float{}

	first := m.NewAnnualSeries("gapped", 1990, gapped)
	second := m.NewAnnualSeries("complete", 1990, values)

	comparison, err := CompareCycles(first, second, m.SmoothingAnnual)
	if err != nil {
		t.Fatalf("error comparing cycles: %s", err)
	}

	ex.AssertAreEqual(t, "aligned length", 19, len(comparison.Timestamps))
	for _, ts := range comparison.Timestamps {
		if ts.Year() == 1995 {
			t.Errorf("1995 has no observation on one side and should have been dropped")
		}
	}
}

func Test_CompareCycles_InsufficientOverlap(t *testing.T) {
	// early runs 1990..1999, late 2005..2014, clipped 1997..2006
	level := func(i int) float64 { return 100 + float64(i) }
	disjointFirst := annualLevels(t, "early", 1990, 10, level)
	disjointSecond := annualLevels(t, "late", 2005, 10, level)
	shortOverlap := annualLevels(t, "clipped", 1997, 10, level)

	if _, err := CompareCycles(disjointFirst, disjointSecond, m.SmoothingQuarterly); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data for disjoint ranges, got %v", err)
	}
	if _, err := CompareCycles(disjointFirst, shortOverlap, m.SmoothingQuarterly); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data for a 3 point overlap, got %v", err)
	}
}

func Test_CompareCycles_RejectsNonPositiveLevels(t *testing.T) {
	first := annualLevels(t, "bad", 1990, 10, func(i int) float64 { return float64(i) - 2 })
	second := annualLevels(t, "fine", 1990, 10, func(i int) float64 { return 100 + float64(i) })

	if _, err := CompareCycles(first, second, m.SmoothingQuarterly); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input for non-positive levels, got %v", err)
	}
}

func Test_CompareCycles_PropagatesBadSmoothing(t *testing.T) {
	level := func(i int) float64 { return 100 + float64(i) }
	first := annualLevels(t, "a", 1990, 10, level)
	second := annualLevels(t, "b", 1990, 10, level)

	if _, err := CompareCycles(first, second, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input for zero smoothing, got %v", err)
	}
}
