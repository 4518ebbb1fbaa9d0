package models

import (
	"github.com/guregu/null/v5"
)

// sampleGrowthRates holds OECD-typical average growth rates used when live
// data cannot be fetched at all, in percentage points per year.
var sampleGrowthRates = map[string]struct{ gdp, capital, labor float64 }{
	"AUS": {2.8, 3.5, 1.5},
	"AUT": {2.1, 2.8, 0.8},
	"BEL": {2.0, 2.5, 0.7},
	"CAN": {2.3, 3.0, 1.2},
	"DNK": {1.9, 2.3, 0.5},
	"FIN": {2.5, 2.8, 0.3},
	"FRA": {1.8, 2.4, 0.7},
	"DEU": {1.4, 1.8, 0.2},
	"GRC": {1.2, 2.5, 0.5},
	"ISL": {2.8, 4.0, 1.8},
	"IRL": {5.2, 6.8, 2.1},
	"ITA": {1.1, 2.0, 0.4},
	"JPN": {1.2, 1.5, -0.2},
	"NLD": {2.4, 2.8, 1.0},
	"NZL": {2.8, 3.5, 1.5},
	"NOR": {2.9, 3.8, 1.2},
	"PRT": {2.8, 4.2, 0.8},
	"ESP": {2.7, 4.5, 2.0},
	"SWE": {2.4, 2.9, 0.5},
	"CHE": {1.8, 2.2, 0.8},
	"GBR": {2.5, 2.8, 0.8},
	"USA": {2.5, 3.2, 1.2},
}

// SamplePanelInputs returns the reference panel in canonical country order.
func SamplePanelInputs() []GrowthInput {
	inputs := make([]GrowthInput, 0, len(Countries))
	for _, code := range Countries {
		rates, ok := sampleGrowthRates[code]
		if !ok {
			continue
		}
		inputs = append(inputs, GrowthInput{
			CountryCode:   code,
			OutputGrowth:  null.NewFloat(rates.gdp, true),
			CapitalGrowth: null.NewFloat(rates.capital, true),
			LaborGrowth:   null.NewFloat(rates.labor, true),
		})
	}
	return inputs
}
