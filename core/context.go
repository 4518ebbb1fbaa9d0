package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	cfg "github.com/karaki0910/my-macro-project/config"
	m "github.com/karaki0910/my-macro-project/models"
	r "github.com/karaki0910/my-macro-project/repos"
)

// SeriesSource serves level series by identifier. The production
// implementation is *fred.FredClient.
type SeriesSource interface {
	GetSeriesObservations(seriesId string) (*m.TimeSeries, error)
	GetSeriesObservationsBetween(seriesId string, start, end time.Time) (*m.TimeSeries, error)
}

// IndicatorSource serves per-country panel observations by indicator code.
// The production implementation is *worldbank.WorldBankClient.
type IndicatorSource interface {
	GetIndicator(indicator string, countryCodes []string, startYear, endYear int) (*m.ObservationSet, error)
}

// ServiceContext carries the shared dependencies of the endpoints and the
// CLI commands. Postgres may be nil, in which case the observation cache is
// bypassed and every request fetches live.
type ServiceContext struct {
	Context      context.Context
	Postgres     *r.Postgres
	Series       SeriesSource
	Observations IndicatorSource
	Logger       *zap.Logger
	Config       cfg.Config
}
