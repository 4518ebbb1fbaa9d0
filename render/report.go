package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/karaki0910/my-macro-project/core"
	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

// WriteGrowthTable writes the panel as an aligned text table, countries in
// panel order with the Average row set apart. Imputed inputs carry a * mark.
func WriteGrowthTable(w io.Writer, panel *m.GrowthPanel, names map[string]string) error {
	if err := checkPanel(panel); err != nil {
		return err
	}
	names = resolveNames(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Growth accounting, capital share %.2f, labor share %.2f\n\n",
		panel.CapitalShare, panel.LaborShare)
	fmt.Fprintf(&b, "%-22s %10s %10s %10s %10s %10s %10s\n",
		"Country", "Output", "Capital", "Labor", "TFP", "Deepening", "TFP share")

	for _, record := range panel.Records {
		writeTableRow(&b, m.CountryName(names, record.CountryCode), record)
	}
	if panel.Average != nil {
		b.WriteString("\n")
		writeTableRow(&b, panel.Average.CountryCode, panel.Average)
	}

	if hasImputedInputs(panel) {
		b.WriteString("\n* imputed input\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteGrowthReport writes the full markdown report: the decomposition table
// plus, when supplied, summary statistics and the correlation matrix.
func WriteGrowthReport(w io.Writer, panel *m.GrowthPanel, summaries []core.SummaryStatistics, correlations *core.PanelCorrelations, names map[string]string) error {
	if err := checkPanel(panel); err != nil {
		return err
	}
	names = resolveNames(names)

	var b strings.Builder
	b.WriteString("# Growth accounting report\n\n")
	fmt.Fprintf(&b, "Capital share %.2f, labor share %.2f. ", panel.CapitalShare, panel.LaborShare)
	fmt.Fprintf(&b, "%d countries in the panel.\n\n", len(panel.Records))

	b.WriteString("| Country | Output | Capital | Labor | TFP | Deepening | TFP share | Capital contribution |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, record := range panel.Records {
		writeMarkdownRow(&b, m.CountryName(names, record.CountryCode), record)
	}
	if panel.Average != nil {
		writeMarkdownRow(&b, fmt.Sprintf("**%s**", panel.Average.CountryCode), panel.Average)
	}
	b.WriteString("\n")

	if hasImputedInputs(panel) {
		b.WriteString("Entries marked with `*` were imputed from the cross-country mean.\n\n")
	}

	if len(summaries) > 0 {
		b.WriteString("## Summary statistics\n\n")
		b.WriteString("| Column | Count | Mean | Std dev | Min | 25% | Median | 75% | Max |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, s := range summaries {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				s.Field, s.Count, s.Mean, s.StdDev, s.Min, s.FirstQuartile, s.Median, s.ThirdQuartile, s.Max)
		}
		b.WriteString("\n")
	}

	if correlations != nil {
		b.WriteString("## Correlations\n\n")
		b.WriteString("| |")
		for _, field := range correlations.Fields {
			fmt.Fprintf(&b, " %s |", field)
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", len(correlations.Fields)))
		b.WriteString("\n")
		for i, field := range correlations.Fields {
			fmt.Fprintf(&b, "| %s |", field)
			for j := range correlations.Fields {
				fmt.Fprintf(&b, " %.2f |", correlations.Matrix.At(i, j))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveGrowthReport writes the markdown report to a file.
func SaveGrowthReport(filename string, panel *m.GrowthPanel, summaries []core.SummaryStatistics, correlations *core.PanelCorrelations, names map[string]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	defer file.Close()

	return WriteGrowthReport(file, panel, summaries, correlations, names)
}

// WriteDecompositionSummary writes the short console summary the filter
// pipeline prints: window, cycle dispersion, trend roughness.
func WriteDecompositionSummary(w io.Writer, dec *core.SeriesDecomposition) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Series %s: %d points from %s to %s\n",
		dec.Series.Name, dec.Series.Len(), ex.FmtShort(dec.Series.First()), ex.FmtShort(dec.Series.Last()))
	fmt.Fprintf(&b, "Smoothing %v: cycle std dev %.3f, trend roughness %.5f\n",
		dec.Result.Smoothing, stat.StdDev(dec.Result.Cycle, nil), core.TrendRoughness(dec.Result.Trend))

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComparisonSummary writes the console summary of a two-country cycle
// comparison.
func WriteComparisonSummary(w io.Writer, comparison *core.CycleComparison, firstLabel, secondLabel string) error {
	if firstLabel == "" {
		firstLabel = comparison.FirstName
	}
	if secondLabel == "" {
		secondLabel = comparison.SecondName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s over %d shared observations, smoothing %v\n",
		firstLabel, secondLabel, len(comparison.Timestamps), comparison.Smoothing)
	fmt.Fprintf(&b, "cycle std dev: %s %.3f, %s %.3f\n",
		firstLabel, comparison.FirstStdDev, secondLabel, comparison.SecondStdDev)
	fmt.Fprintf(&b, "cycle correlation: %.3f\n", comparison.Correlation)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTableRow(b *strings.Builder, name string, record *m.CountryGrowthRecord) {
	fmt.Fprintf(b, "%-22s %10.2f %10s %10s %10.2f %10.2f %10.2f\n",
		name,
		record.OutputGrowth,
		markedValue(record.CapitalGrowth, record.CapitalImputed),
		markedValue(record.LaborGrowth, record.LaborImputed),
		record.TFPGrowth,
		record.CapitalDeepening,
		record.TFPShare)
}

func writeMarkdownRow(b *strings.Builder, name string, record *m.CountryGrowthRecord) {
	fmt.Fprintf(b, "| %s | %.2f | %s | %s | %.2f | %.2f | %.2f | %.2f |\n",
		name,
		record.OutputGrowth,
		markedValue(record.CapitalGrowth, record.CapitalImputed),
		markedValue(record.LaborGrowth, record.LaborImputed),
		record.TFPGrowth,
		record.CapitalDeepening,
		record.TFPShare,
		record.CapitalContribution)
}

// markedValue renders a growth rate, starring values the fallback policy
// filled in.
func markedValue(value float64, imputed bool) string {
	if imputed {
		return fmt.Sprintf("%.2f*", value)
	}
	return fmt.Sprintf("%.2f", value)
}

func hasImputedInputs(panel *m.GrowthPanel) bool {
	for _, record := range panel.Records {
		if record.CapitalImputed || record.LaborImputed {
			return true
		}
	}
	return false
}
