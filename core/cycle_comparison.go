package core

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	m "github.com/karaki0910/my-macro-project/models"
)

// CycleComparison holds the aligned cyclical components of two level series
// and the co-movement statistics between them.
type CycleComparison struct {
	FirstName    string
	SecondName   string
	Timestamps   []time.Time
	FirstCycle   []float64
	SecondCycle  []float64
	FirstStdDev  float64
	SecondStdDev float64
	Correlation  float64
	Smoothing    float64
}

// CompareCycles lines two level series up on their shared timestamps,
// decomposes 100*log of each, and reports the sample standard deviation of
// both cycles along with their Pearson correlation.
func CompareCycles(first, second *m.TimeSeries, smoothing float64) (*CycleComparison, error) {
	alignedFirst, alignedSecond, err := alignOnSharedTimestamps(first, second)
	if err != nil {
		return nil, err
	}

	firstValues, err := scaledLogValues(alignedFirst)
	if err != nil {
		return nil, err
	}
	secondValues, err := scaledLogValues(alignedSecond)
	if err != nil {
		return nil, err
	}

	firstResult, err := Decompose(firstValues, smoothing)
	if err != nil {
		return nil, fmt.Errorf("decomposing %s: %w", alignedFirst.Name, err)
	}
	secondResult, err := Decompose(secondValues, smoothing)
	if err != nil {
		return nil, fmt.Errorf("decomposing %s: %w", alignedSecond.Name, err)
	}

	return &CycleComparison{
		FirstName:    alignedFirst.Name,
		SecondName:   alignedSecond.Name,
		Timestamps:   alignedFirst.Timestamps(),
		FirstCycle:   firstResult.Cycle,
		SecondCycle:  secondResult.Cycle,
		FirstStdDev:  stat.StdDev(firstResult.Cycle, nil),
		SecondStdDev: stat.StdDev(secondResult.Cycle, nil),
		Correlation:  stat.Correlation(firstResult.Cycle, secondResult.Cycle, nil),
		Smoothing:    smoothing,
	}, nil
}

// alignOnSharedTimestamps drops missing points from both series and keeps
// only the timestamps present in each, preserving order.
func alignOnSharedTimestamps(first, second *m.TimeSeries) (*m.TimeSeries, *m.TimeSeries, error) {
	a := first.DropMissing()
	b := second.DropMissing()

	var keptA, keptB []m.SeriesPoint
	i, j := 0, 0
	for i < len(a.Points) && j < len(b.Points) {
		switch {
		case a.Points[i].Timestamp.Before(b.Points[j].Timestamp):
			i++
		case b.Points[j].Timestamp.Before(a.Points[i].Timestamp):
			j++
		default:
			keptA = append(keptA, a.Points[i])
			keptB = append(keptB, b.Points[j])
			i++
			j++
		}
	}

	if len(keptA) < minDecompositionPoints {
		return nil, nil, fmt.Errorf("%w: %s and %s share %d observations, need at least %d",
			ErrInsufficientData, first.Name, second.Name, len(keptA), minDecompositionPoints)
	}

	return &m.TimeSeries{Name: a.Name, Points: keptA},
		&m.TimeSeries{Name: b.Name, Points: keptB},
		nil
}

func scaledLogValues(series *m.TimeSeries) ([]float64, error) {
	logged, err := series.Log()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	values := logged.Values()
	for i := range values {
		values[i] *= 100
	}
	return values, nil
}
