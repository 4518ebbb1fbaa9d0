package models

import (
	"github.com/guregu/null/v5"

	ex "github.com/karaki0910/my-macro-project/extensions"
)

// AverageCode is the country code of the synthetic panel-wide mean record.
const AverageCode = "Average"

// GrowthInput is the raw per-country material for growth accounting:
// multi-year average growth rates in percentage points per year. Output
// growth is required, the other two may be missing and are then imputed.
type GrowthInput struct {
	CountryCode   string
	OutputGrowth  null.Float
	CapitalGrowth null.Float
	LaborGrowth   null.Float
}

// CountryGrowthRecord is one decomposed row of the growth panel. The derived
// fields are recomputed from the inputs on every estimate, never patched.
type CountryGrowthRecord struct {
	CountryCode   string  `json:"countryCode"`
	OutputGrowth  float64 `json:"outputGrowth"`
	CapitalGrowth float64 `json:"capitalGrowth"`
	LaborGrowth   float64 `json:"laborGrowth"`

	// the fallback policy marks which inputs were filled in
	CapitalImputed bool `json:"capitalImputed"`
	LaborImputed   bool `json:"laborImputed"`

	TFPGrowth           float64 `json:"tfpGrowth"`
	CapitalDeepening    float64 `json:"capitalDeepening"`
	TFPShare            float64 `json:"tfpShare"`
	CapitalContribution float64 `json:"capitalContribution"`
}

// GrowthPanel is the result of one growth-accounting run: records in
// canonical country order plus the unweighted Average row. Panels are
// replaced wholesale when inputs change.
type GrowthPanel struct {
	Records      []*CountryGrowthRecord `json:"records"`
	Average      *CountryGrowthRecord   `json:"average"`
	CapitalShare float64                `json:"capitalShare"`
	LaborShare   float64                `json:"laborShare"`
}

// Record returns the row for a country code, nil when the country was
// excluded or never supplied. The Average row is reachable by AverageCode.
func (p *GrowthPanel) Record(code string) *CountryGrowthRecord {
	if code == AverageCode {
		return p.Average
	}
	return ex.FilterFirstPtr(p.Records, func(r *CountryGrowthRecord) bool {
		return r.CountryCode == code
	})
}

// CountryCodes lists the included countries in panel order.
func (p *GrowthPanel) CountryCodes() []string {
	codes := make([]string, len(p.Records))
	for i, r := range p.Records {
		codes[i] = r.CountryCode
	}
	return codes
}
