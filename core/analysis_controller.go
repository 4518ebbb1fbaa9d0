package core

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	m "github.com/karaki0910/my-macro-project/models"
)

// SeriesDecomposition is one fetched series prepared and split: the points
// that survived gap dropping, their 100×log values, and the fitted trend
// and cycle.
type SeriesDecomposition struct {
	Series *m.TimeSeries
	Scaled []float64
	Result *DecompositionResult
}

// DecomposeLevelSeries prepares a level series the standard way, dropping
// missing points and moving to 100×log scale, then splits trend from cycle.
func DecomposeLevelSeries(series *m.TimeSeries, smoothing float64) (*SeriesDecomposition, error) {
	kept := series.DropMissing()
	scaled, err := scaledLogValues(kept)
	if err != nil {
		return nil, err
	}

	result, err := Decompose(scaled, smoothing)
	if err != nil {
		return nil, fmt.Errorf("decomposing %s: %w", series.Name, err)
	}

	return &SeriesDecomposition{Series: kept, Scaled: scaled, Result: result}, nil
}

// DecomposeRemoteSeries pulls a level series and decomposes it.
func (sc *ServiceContext) DecomposeRemoteSeries(seriesId string, start, end time.Time, smoothing float64) (*SeriesDecomposition, error) {
	series, err := sc.fetchSeries(seriesId, start, end)
	if err != nil {
		return nil, err
	}

	dec, err := DecomposeLevelSeries(series, smoothing)
	if err != nil {
		return nil, err
	}

	sc.Logger.Info("series decomposed",
		zap.String("series", seriesId),
		zap.Int("points", dec.Series.Len()),
		zap.Float64("smoothing", smoothing))

	return dec, nil
}

// CompareRemoteCycles fetches two level series and compares their cyclical
// components over the observations they share.
func (sc *ServiceContext) CompareRemoteCycles(firstId, secondId string, start, end time.Time, smoothing float64) (*CycleComparison, error) {
	first, err := sc.fetchSeries(firstId, start, end)
	if err != nil {
		return nil, err
	}

	second, err := sc.fetchSeries(secondId, start, end)
	if err != nil {
		return nil, err
	}

	comparison, err := CompareCycles(first, second, smoothing)
	if err != nil {
		return nil, err
	}

	sc.Logger.Info("cycles compared",
		zap.String("first", firstId),
		zap.String("second", secondId),
		zap.Int("sharedPoints", len(comparison.Timestamps)),
		zap.Float64("correlation", comparison.Correlation))

	return comparison, nil
}

// BuildGrowthPanel runs the whole accounting pipeline: fetch, aggregate,
// decompose. When the live fetch fails or yields no usable country the
// bundled reference panel stands in, so the caller always gets a panel.
func (sc *ServiceContext) BuildGrowthPanel(countries []string, startYear, endYear int, opts AccountingOptions) (*m.GrowthPanel, error) {
	start := time.Now()
	countries, startYear, endYear = panelDefaults(countries, startYear, endYear)

	inputs, err := sc.FetchPanelInputs(countries, startYear, endYear)
	if err != nil {
		sc.Logger.Warn("live fetch failed, falling back to the reference panel", zap.Error(err))
		inputs = m.SamplePanelInputs()
	}

	panel, err := EstimateGrowthPanel(inputs, opts)
	if errors.Is(err, ErrNoUsableData) {
		sc.Logger.Warn("no usable live data, falling back to the reference panel")
		panel, err = EstimateGrowthPanel(m.SamplePanelInputs(), opts)
	}
	if err != nil {
		return nil, err
	}

	sc.Logger.Info("growth panel ready",
		zap.Int("records", len(panel.Records)),
		zap.Int("startYear", startYear),
		zap.Int("endYear", endYear),
		zap.Duration("elapsed", time.Since(start)))

	return panel, nil
}

// fetchSeries trims a level series to the requested bounds, a zero bound
// means open on that side. When both bounds are set the window travels with
// the request so the provider does the trimming.
func (sc *ServiceContext) fetchSeries(seriesId string, start, end time.Time) (*m.TimeSeries, error) {
	if !start.IsZero() && !end.IsZero() {
		return sc.Series.GetSeriesObservationsBetween(seriesId, start, end)
	}

	series, err := sc.Series.GetSeriesObservations(seriesId)
	if err != nil {
		return nil, err
	}
	if start.IsZero() && end.IsZero() {
		return series, nil
	}

	if start.IsZero() {
		start = series.First()
	}
	if end.IsZero() {
		end = series.Last()
	}
	return series.Window(start, end), nil
}
