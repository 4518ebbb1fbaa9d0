package core

import (
	"fmt"

	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

const (
	// DefaultCapitalShare is the Cobb-Douglas output elasticity of capital
	// assumed when the caller does not override it.
	DefaultCapitalShare = 0.35

	// shares outside this band are estimation noise and get capped
	shareFloor = -0.5
	shareCeil  = 1.5

	// domain-typical constants used when a field is missing for every
	// country, in percentage points per year
	fallbackCapitalGrowth = 3.0
	fallbackLaborGrowth   = 1.0
)

// AccountingOptions parameterizes one growth-accounting run.
type AccountingOptions struct {
	// CapitalShare must lie strictly between 0 and 1. Zero means "use the
	// default".
	CapitalShare float64

	// CountryOrder fixes the iteration order of the output panel. Inputs
	// for countries outside the list are appended afterwards in the order
	// supplied. Defaults to the canonical panel order.
	CountryOrder []string
}

func DefaultAccountingOptions() AccountingOptions {
	return AccountingOptions{
		CapitalShare: DefaultCapitalShare,
		CountryOrder: m.Countries,
	}
}

// EstimateGrowthPanel decomposes each country's output growth into capital,
// labor, and residual productivity contributions.
//
// Countries without output growth are excluded. A missing capital or labor
// rate is imputed with the cross-country mean of the countries that do have
// it, or with a domain constant when nobody does. Contribution shares are
// clamped to [-0.5, 1.5] and the synthetic Average row is the unweighted
// mean of the clamped per-country values, so it is computed last.
func EstimateGrowthPanel(inputs []m.GrowthInput, opts AccountingOptions) (*m.GrowthPanel, error) {
	if opts.CapitalShare == 0 {
		opts.CapitalShare = DefaultCapitalShare
	}
	if opts.CountryOrder == nil {
		opts.CountryOrder = m.Countries
	}

	alpha := opts.CapitalShare
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("capital share must lie in (0, 1), got %v: %w", alpha, ErrInvalidInput)
	}

	included := orderInputs(inputs, opts.CountryOrder)
	if len(included) == 0 {
		return nil, fmt.Errorf("no country has usable output growth: %w", ErrNoUsableData)
	}

	capitalMean, capitalAvailable := fieldMean(included, func(in m.GrowthInput) (float64, bool) {
		return in.CapitalGrowth.Float64, in.CapitalGrowth.Valid
	})
	laborMean, laborAvailable := fieldMean(included, func(in m.GrowthInput) (float64, bool) {
		return in.LaborGrowth.Float64, in.LaborGrowth.Valid
	})

	records := make([]*m.CountryGrowthRecord, 0, len(included))
	for _, in := range included {
		record := &m.CountryGrowthRecord{
			CountryCode:  in.CountryCode,
			OutputGrowth: in.OutputGrowth.Float64,
		}

		switch {
		case in.CapitalGrowth.Valid:
			record.CapitalGrowth = in.CapitalGrowth.Float64
		case capitalAvailable:
			record.CapitalGrowth = capitalMean
			record.CapitalImputed = true
		default:
			record.CapitalGrowth = fallbackCapitalGrowth
			record.CapitalImputed = true
		}

		switch {
		case in.LaborGrowth.Valid:
			record.LaborGrowth = in.LaborGrowth.Float64
		case laborAvailable:
			record.LaborGrowth = laborMean
			record.LaborImputed = true
		default:
			record.LaborGrowth = fallbackLaborGrowth
			record.LaborImputed = true
		}

		record.TFPGrowth = record.OutputGrowth - alpha*record.CapitalGrowth - (1-alpha)*record.LaborGrowth
		record.CapitalDeepening = record.CapitalGrowth - record.LaborGrowth
		record.TFPShare = ex.Clamp(guardedShare(record.TFPGrowth, record.OutputGrowth), shareFloor, shareCeil)
		record.CapitalContribution = ex.Clamp(guardedShare(record.CapitalDeepening, record.OutputGrowth), shareFloor, shareCeil)

		records = append(records, record)
	}

	return &m.GrowthPanel{
		Records:      records,
		Average:      averageRecord(records),
		CapitalShare: alpha,
		LaborShare:   1 - alpha,
	}, nil
}

// orderInputs filters out countries without output growth and sorts the
// remainder into the fixed order: listed countries first, then any extras
// in the order they were supplied.
func orderInputs(inputs []m.GrowthInput, order []string) []m.GrowthInput {
	usable := ex.FilterMultiple(inputs, func(in m.GrowthInput) bool {
		return in.OutputGrowth.Valid
	})

	byCode := make(map[string]m.GrowthInput, len(usable))
	for _, in := range usable {
		byCode[in.CountryCode] = in
	}

	listed := make(map[string]bool, len(order))
	result := make([]m.GrowthInput, 0, len(usable))
	for _, code := range order {
		listed[code] = true
		if in, ok := byCode[code]; ok {
			result = append(result, in)
		}
	}
	for _, in := range usable {
		if !listed[in.CountryCode] {
			result = append(result, in)
		}
	}

	return result
}

func fieldMean(inputs []m.GrowthInput, field func(m.GrowthInput) (float64, bool)) (float64, bool) {
	var values []float64
	for _, in := range inputs {
		if v, ok := field(in); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return ex.Mean(values), true
}

// guardedShare divides contribution by total growth, defined as zero when
// there was no growth to attribute.
func guardedShare(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}

func averageRecord(records []*m.CountryGrowthRecord) *m.CountryGrowthRecord {
	avg := &m.CountryGrowthRecord{CountryCode: m.AverageCode}
	for _, r := range records {
		avg.OutputGrowth += r.OutputGrowth
		avg.CapitalGrowth += r.CapitalGrowth
		avg.LaborGrowth += r.LaborGrowth
		avg.TFPGrowth += r.TFPGrowth
		avg.CapitalDeepening += r.CapitalDeepening
		avg.TFPShare += r.TFPShare
		avg.CapitalContribution += r.CapitalContribution
	}

	n := float64(len(records))
	avg.OutputGrowth /= n
	avg.CapitalGrowth /= n
	avg.LaborGrowth /= n
	avg.TFPGrowth /= n
	avg.CapitalDeepening /= n
	avg.TFPShare /= n
	avg.CapitalContribution /= n
	return avg
}
