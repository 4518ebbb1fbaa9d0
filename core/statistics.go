package core

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

// SummaryStatistics describes the distribution of one panel column across
// countries. Quartiles follow the empirical distribution of the sample.
type SummaryStatistics struct {
	Field         string
	Count         int
	Mean          float64
	StdDev        float64
	Min           float64
	FirstQuartile float64
	Median        float64
	ThirdQuartile float64
	Max           float64
}

// PanelCorrelations is the correlation matrix across panel countries for the
// columns named in Fields, in matrix order.
type PanelCorrelations struct {
	Fields []string
	Matrix *mat.SymDense
}

// panelColumns lists every reported column with its extractor, in display order.
var panelColumns = []struct {
	field string
	pick  func(*m.CountryGrowthRecord) float64
}{
	{"Output growth", func(r *m.CountryGrowthRecord) float64 { return r.OutputGrowth }},
	{"Capital growth", func(r *m.CountryGrowthRecord) float64 { return r.CapitalGrowth }},
	{"Labor growth", func(r *m.CountryGrowthRecord) float64 { return r.LaborGrowth }},
	{"TFP growth", func(r *m.CountryGrowthRecord) float64 { return r.TFPGrowth }},
	{"Capital deepening", func(r *m.CountryGrowthRecord) float64 { return r.CapitalDeepening }},
	{"TFP share", func(r *m.CountryGrowthRecord) float64 { return r.TFPShare }},
	{"Capital contribution", func(r *m.CountryGrowthRecord) float64 { return r.CapitalContribution }},
}

func Describe(field string, values []float64) (SummaryStatistics, error) {
	if len(values) == 0 {
		return SummaryStatistics{}, fmt.Errorf("%w: no values for %s", ErrInsufficientData, field)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return SummaryStatistics{
		Field:         field,
		Count:         len(values),
		Mean:          stat.Mean(values, nil),
		StdDev:        stat.StdDev(values, nil),
		Min:           sorted[0],
		FirstQuartile: stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median:        stat.Quantile(0.5, stat.Empirical, sorted, nil),
		ThirdQuartile: stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:           sorted[len(sorted)-1],
	}, nil
}

// SummarizePanel describes every derived column across the panel countries.
// The synthetic Average record stays out of the sample.
func SummarizePanel(panel *m.GrowthPanel) ([]SummaryStatistics, error) {
	if panel == nil || len(panel.Records) == 0 {
		return nil, fmt.Errorf("%w: empty growth panel", ErrInsufficientData)
	}

	summaries := make([]SummaryStatistics, 0, len(panelColumns))
	for _, column := range panelColumns {
		summary, err := Describe(column.field, panelColumn(panel, column.pick))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// GetPanelCorrelations computes the cross-country correlation matrix of
// output growth, TFP growth, and capital deepening.
func GetPanelCorrelations(panel *m.GrowthPanel) (*PanelCorrelations, error) {
	if panel == nil || len(panel.Records) < 2 {
		return nil, fmt.Errorf("%w: correlations need at least two countries", ErrInsufficientData)
	}

	fields := []string{"Output growth", "TFP growth", "Capital deepening"}
	columns := [][]float64{
		panelColumn(panel, func(r *m.CountryGrowthRecord) float64 { return r.OutputGrowth }),
		panelColumn(panel, func(r *m.CountryGrowthRecord) float64 { return r.TFPGrowth }),
		panelColumn(panel, func(r *m.CountryGrowthRecord) float64 { return r.CapitalDeepening }),
	}

	corr := mat.NewSymDense(len(columns), nil)
	stat.CorrelationMatrix(corr, columnsToMatrix(columns), nil)

	return &PanelCorrelations{Fields: fields, Matrix: corr}, nil
}

func panelColumn(panel *m.GrowthPanel, pick func(*m.CountryGrowthRecord) float64) []float64 {
	column := make([]float64, 0, len(panel.Records))
	for _, record := range panel.Records {
		column = append(column, pick(record))
	}
	return column
}

// columnsToMatrix lays column slices out as an observations-by-variables matrix.
func columnsToMatrix[T ex.Number](columns [][]T) *mat.Dense {
	nVariables := len(columns)
	nObservations := len(columns[0])
	res := mat.NewDense(nObservations, nVariables, nil)
	for j, column := range columns {
		for i, value := range column {
			res.Set(i, j, float64(value))
		}
	}
	return res
}
