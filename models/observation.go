package models

import (
	"slices"
	"strings"

	"github.com/guregu/null/v5"
)

// Observation is one country/indicator/year data point as stored and as
// returned by the World Bank client. Value stays null when the source
// reported no number.
type Observation struct {
	Indicator   string     `db:"indicator"`
	CountryCode string     `db:"country_code"`
	CountryName string     `db:"country_name"`
	Year        int        `db:"year"`
	Value       null.Float `db:"value"`
}

// CachedIndicator summarizes what the observation cache holds for one
// indicator.
type CachedIndicator struct {
	Indicator string `db:"indicator" json:"indicator"`
	Countries int    `db:"countries" json:"countries"`
	FirstYear int    `db:"first_year" json:"firstYear"`
	LastYear  int    `db:"last_year" json:"lastYear"`
	TotalRows int    `db:"total_rows" json:"totalRows"`
}

// ObservationSet groups fetched observations by country for one indicator.
type ObservationSet struct {
	Indicator string
	ByCountry map[string][]*Observation
}

// All flattens the per-country groups back into one slice, ordered by
// country code then year.
func (s *ObservationSet) All() []*Observation {
	var all []*Observation
	for _, group := range s.ByCountry {
		all = append(all, group...)
	}
	slices.SortFunc(all, func(a, b *Observation) int {
		if a.CountryCode != b.CountryCode {
			return strings.Compare(a.CountryCode, b.CountryCode)
		}
		return a.Year - b.Year
	})
	return all
}

func NewObservationSet(indicator string, observations []*Observation) *ObservationSet {
	set := &ObservationSet{
		Indicator: indicator,
		ByCountry: make(map[string][]*Observation),
	}
	for _, obs := range observations {
		set.ByCountry[obs.CountryCode] = append(set.ByCountry[obs.CountryCode], obs)
	}
	return set
}
