package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/karaki0910/my-macro-project/core"
	m "github.com/karaki0910/my-macro-project/models"
)

// SaveDecompositionCSV writes one row per observation: the date, the 100×log
// level the filter ran on, and the fitted trend and cycle.
func SaveDecompositionCSV(dec *core.SeriesDecomposition, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating decomposition file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "observed", "trend", "cycle"}); err != nil {
		return err
	}

	timestamps := dec.Series.Timestamps()
	for i := range dec.Scaled {
		record := []string{
			timestamps[i].Format(time.DateOnly),
			formatFloat(dec.Scaled[i]),
			formatFloat(dec.Result.Trend[i]),
			formatFloat(dec.Result.Cycle[i]),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// SavePanelCSV writes the growth panel, one row per country plus the Average
// row, with the imputation flags as their own columns.
func SavePanelCSV(panel *m.GrowthPanel, names map[string]string, filename string) error {
	if err := checkPanel(panel); err != nil {
		return err
	}
	names = resolveNames(names)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating panel file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"country_code", "country", "output_growth", "capital_growth", "labor_growth",
		"tfp_growth", "capital_deepening", "tfp_share", "capital_contribution",
		"capital_imputed", "labor_imputed",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, record := range panel.Records {
		if err := writer.Write(panelRow(record, m.CountryName(names, record.CountryCode))); err != nil {
			return err
		}
	}
	if panel.Average != nil {
		if err := writer.Write(panelRow(panel.Average, panel.Average.CountryCode)); err != nil {
			return err
		}
	}

	return nil
}

func panelRow(record *m.CountryGrowthRecord, name string) []string {
	return []string{
		record.CountryCode,
		name,
		formatFloat(record.OutputGrowth),
		formatFloat(record.CapitalGrowth),
		formatFloat(record.LaborGrowth),
		formatFloat(record.TFPGrowth),
		formatFloat(record.CapitalDeepening),
		formatFloat(record.TFPShare),
		formatFloat(record.CapitalContribution),
		strconv.FormatBool(record.CapitalImputed),
		strconv.FormatBool(record.LaborImputed),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
