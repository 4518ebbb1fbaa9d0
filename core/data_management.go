package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

// panelIndicators are the series feeding the growth panel: output growth,
// capital formation growth, and the two labor-side levels that labor growth
// can be derived from.
var panelIndicators = []string{
	m.IndicatorGDPGrowth,
	m.IndicatorCapitalFormation,
	m.IndicatorEmployment,
	m.IndicatorLaborForce,
}

type panelObservations struct {
	output     *m.ObservationSet
	capital    *m.ObservationSet
	employment *m.ObservationSet
}

// FetchPanelInputs pulls the panel indicators concurrently and rolls them
// up into per-country growth-accounting inputs. Output growth is required
// downstream, so a failed output fetch fails the call. The capital series
// degrades to a missing field, and the employment level falls back to the
// labor force level before degrading, after which the estimator's
// imputation policy takes over.
//
// A nil country list and zero years mean the canonical panel and the
// default window.
func (sc *ServiceContext) FetchPanelInputs(countries []string, startYear, endYear int) ([]m.GrowthInput, error) {
	countries, startYear, endYear = panelDefaults(countries, startYear, endYear)

	sets, err := sc.fetchPanelObservations(countries, startYear, endYear)
	if err != nil {
		return nil, err
	}

	inputs := make([]m.GrowthInput, 0, len(countries))
	for _, code := range countries {
		input := m.GrowthInput{
			CountryCode:  code,
			OutputGrowth: meanGrowthRate(sets.output.ByCountry[code], startYear, endYear),
		}
		if sets.capital != nil {
			input.CapitalGrowth = meanGrowthRate(sets.capital.ByCountry[code], startYear, endYear)
		}
		if sets.employment != nil {
			input.LaborGrowth = laborGrowthRate(sets.employment.ByCountry[code], startYear, endYear)
		}
		inputs = append(inputs, input)
	}

	return inputs, nil
}

func (sc *ServiceContext) fetchPanelObservations(countries []string, startYear, endYear int) (*panelObservations, error) {
	sets := &panelObservations{}
	targets := []struct {
		indicator string
		fallback  string
		dest      **m.ObservationSet
		required  bool
	}{
		{m.IndicatorGDPGrowth, "", &sets.output, true},
		{m.IndicatorCapitalFormation, "", &sets.capital, false},
		{m.IndicatorEmployment, m.IndicatorLaborForce, &sets.employment, false},
	}

	group, ctx := errgroup.WithContext(sc.Context)
	for _, target := range targets {
		target := target
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			set, err := sc.getIndicatorObservations(target.indicator, countries, startYear, endYear)
			if err != nil && target.fallback != "" {
				sc.Logger.Warn("indicator unavailable, trying the fallback series",
					zap.String("indicator", target.indicator),
					zap.String("fallback", target.fallback), zap.Error(err))
				set, err = sc.getIndicatorObservations(target.fallback, countries, startYear, endYear)
			}
			if err != nil {
				if target.required {
					return fmt.Errorf("fetching %v: %w", target.indicator, err)
				}
				sc.Logger.Warn("indicator unavailable, field will be imputed",
					zap.String("indicator", target.indicator), zap.Error(err))
				return nil
			}

			*target.dest = set
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

// getIndicatorObservations serves an indicator from the Postgres cache when
// every requested country is present, fetching the remainder live and
// refilling the cache otherwise. A cache failure never fails the request,
// it just means a live fetch.
func (sc *ServiceContext) getIndicatorObservations(indicator string, countries []string, startYear, endYear int) (*m.ObservationSet, error) {
	if sc.Postgres == nil {
		return sc.Observations.GetIndicator(indicator, countries, startYear, endYear)
	}

	cached, err := sc.Postgres.GetObservationSet(sc.Context, indicator, startYear, endYear)
	if err != nil {
		sc.Logger.Warn("observation cache read failed, fetching live",
			zap.String("indicator", indicator), zap.Error(err))
		return sc.Observations.GetIndicator(indicator, countries, startYear, endYear)
	}

	missing := ex.FilterMultiple(countries, func(code string) bool {
		return len(cached.ByCountry[code]) == 0
	})
	if len(missing) == 0 {
		sc.Logger.Debug("observation cache hit", zap.String("indicator", indicator))
		return cached, nil
	}

	fetched, err := sc.Observations.GetIndicator(indicator, missing, startYear, endYear)
	if err != nil {
		return nil, err
	}

	rows := fetched.All()
	if _, err := sc.Postgres.InsertObservations(sc.Context, rows, nil); err != nil {
		sc.Logger.Warn("observation cache write failed",
			zap.String("indicator", indicator), zap.Error(err))
	}

	return m.NewObservationSet(indicator, append(cached.All(), rows...)), nil
}

// SyncObservations refreshes the cache for the three panel indicators,
// replacing whatever each one had stored.
func (sc *ServiceContext) SyncObservations(countries []string, startYear, endYear int) error {
	if sc.Postgres == nil {
		return fmt.Errorf("observation cache is not configured")
	}

	start := time.Now()
	countries, startYear, endYear = panelDefaults(countries, startYear, endYear)

	for _, indicator := range panelIndicators {
		set, err := sc.Observations.GetIndicator(indicator, countries, startYear, endYear)
		if err != nil {
			return fmt.Errorf("fetching %v: %w", indicator, err)
		}

		stored, err := sc.Postgres.ReplaceObservations(sc.Context, indicator, set.All())
		if err != nil {
			return fmt.Errorf("storing %v: %w", indicator, err)
		}

		sc.Logger.Info("indicator synced",
			zap.String("indicator", indicator),
			zap.Int64("rows", stored),
			zap.Duration("elapsed", time.Since(start)))
	}

	return nil
}

func panelDefaults(countries []string, startYear, endYear int) ([]string, int, int) {
	if len(countries) == 0 {
		countries = m.Countries
	}
	if startYear == 0 {
		startYear = m.DefaultStartYear
	}
	if endYear == 0 {
		endYear = m.DefaultEndYear
	}
	return countries, startYear, endYear
}

// meanGrowthRate averages the valid growth observations inside the window,
// widening once to the full series when the window holds nothing usable.
func meanGrowthRate(observations []*m.Observation, startYear, endYear int) null.Float {
	values := validValues(windowed(observations, startYear, endYear))
	if len(values) == 0 {
		values = validValues(observations)
	}
	if len(values) == 0 {
		return null.Float{}
	}
	return null.FloatFrom(ex.Mean(values))
}

// laborGrowthRate turns an employment level series into a growth rate, the
// mean of year-over-year percent changes inside the window. Same widening
// rule as meanGrowthRate when the window yields no change pairs.
func laborGrowthRate(observations []*m.Observation, startYear, endYear int) null.Float {
	changes := yearOverYearChanges(windowed(observations, startYear, endYear))
	if len(changes) == 0 {
		changes = yearOverYearChanges(observations)
	}
	if len(changes) == 0 {
		return null.Float{}
	}
	return null.FloatFrom(ex.Mean(changes))
}

// yearOverYearChanges computes percent changes between valid observations in
// consecutive calendar years. A gap or a zero level breaks the pair.
func yearOverYearChanges(observations []*m.Observation) []float64 {
	valid := ex.FilterMultiplePtr(observations, func(obs *m.Observation) bool {
		return obs.Value.Valid
	})
	slices.SortFunc(valid, func(a, b *m.Observation) int {
		return a.Year - b.Year
	})

	var changes []float64
	for i := 1; i < len(valid); i++ {
		prev, curr := valid[i-1], valid[i]
		if curr.Year != prev.Year+1 || prev.Value.Float64 == 0 {
			continue
		}
		changes = append(changes, (curr.Value.Float64/prev.Value.Float64-1)*100)
	}
	return changes
}

func windowed(observations []*m.Observation, startYear, endYear int) []*m.Observation {
	return ex.FilterMultiplePtr(observations, func(obs *m.Observation) bool {
		return obs.Year >= startYear && obs.Year <= endYear
	})
}

func validValues(observations []*m.Observation) []float64 {
	var values []float64
	for _, obs := range observations {
		if obs.Value.Valid {
			values = append(values, obs.Value.Float64)
		}
	}
	return values
}
