package models

import (
	"fmt"
	"math"
	"time"

	"github.com/guregu/null/v5"
)

// SeriesPoint is one dated observation. Value is invalid when the source
// reported no number for that date.
type SeriesPoint struct {
	Timestamp time.Time
	Value     null.Float
}

// TimeSeries is an ordered run of observations for one named series.
// Constructors copy their input and validate ordering, so a series does not
// change underneath a caller once built.
type TimeSeries struct {
	Name   string
	Points []SeriesPoint
}

func NewTimeSeries(name string, points []SeriesPoint) (*TimeSeries, error) {
	copied := make([]SeriesPoint, len(points))
	copy(copied, points)

	for i := 1; i < len(copied); i++ {
		if !copied[i].Timestamp.After(copied[i-1].Timestamp) {
			return nil, fmt.Errorf("timestamps must be strictly increasing, %s is not after %s",
				copied[i].Timestamp.Format(time.DateOnly), copied[i-1].Timestamp.Format(time.DateOnly))
		}
	}

	return &TimeSeries{Name: name, Points: copied}, nil
}

// NewAnnualSeries builds a series of one point per year, in year order.
func NewAnnualSeries(name string, startYear int, values []null.Float) *TimeSeries {
	points := make([]SeriesPoint, len(values))
	for i, v := range values {
		points[i] = SeriesPoint{
			Timestamp: time.Date(startYear+i, time.January, 1, 0, 0, 0, 0, time.UTC),
			Value:     v,
		}
	}
	return &TimeSeries{Name: name, Points: points}
}

func (ts *TimeSeries) Len() int {
	return len(ts.Points)
}

// HasMissing reports whether any point carries no value.
func (ts *TimeSeries) HasMissing() bool {
	for _, p := range ts.Points {
		if !p.Value.Valid {
			return true
		}
	}
	return false
}

// DropMissing returns a copy of the series without the invalid points.
func (ts *TimeSeries) DropMissing() *TimeSeries {
	points := make([]SeriesPoint, 0, len(ts.Points))
	for _, p := range ts.Points {
		if p.Value.Valid {
			points = append(points, p)
		}
	}
	return &TimeSeries{Name: ts.Name, Points: points}
}

// Values returns the point values in order. Missing points come out as NaN,
// call DropMissing first when a gap-free slice is needed.
func (ts *TimeSeries) Values() []float64 {
	values := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		if p.Value.Valid {
			values[i] = p.Value.Float64
		} else {
			values[i] = math.NaN()
		}
	}
	return values
}

func (ts *TimeSeries) Timestamps() []time.Time {
	timestamps := make([]time.Time, len(ts.Points))
	for i, p := range ts.Points {
		timestamps[i] = p.Timestamp
	}
	return timestamps
}

// Log returns a copy with every valid value replaced by its natural log.
// Non-positive values cannot be logged and fail the whole series.
func (ts *TimeSeries) Log() (*TimeSeries, error) {
	points := make([]SeriesPoint, len(ts.Points))
	for i, p := range ts.Points {
		if p.Value.Valid && p.Value.Float64 <= 0 {
			return nil, fmt.Errorf("log is undefined for %v at %s", p.Value.Float64, p.Timestamp.Format(time.DateOnly))
		}

		points[i] = p
		if p.Value.Valid {
			points[i].Value = null.NewFloat(math.Log(p.Value.Float64), true)
		}
	}
	return &TimeSeries{Name: ts.Name, Points: points}, nil
}

// Window returns a copy holding only points within [start, end] inclusive.
func (ts *TimeSeries) Window(start, end time.Time) *TimeSeries {
	points := make([]SeriesPoint, 0, len(ts.Points))
	for _, p := range ts.Points {
		if p.Timestamp.Before(start) || p.Timestamp.After(end) {
			continue
		}
		points = append(points, p)
	}
	return &TimeSeries{Name: ts.Name, Points: points}
}

// First and Last return the boundary timestamps, zero time for an empty series.
func (ts *TimeSeries) First() time.Time {
	if len(ts.Points) == 0 {
		return time.Time{}
	}
	return ts.Points[0].Timestamp
}

func (ts *TimeSeries) Last() time.Time {
	if len(ts.Points) == 0 {
		return time.Time{}
	}
	return ts.Points[len(ts.Points)-1].Timestamp
}
