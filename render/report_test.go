package render

import (
	"os"
	"strings"
	"testing"

	"github.com/karaki0910/my-macro-project/core"
)

func assertContains(t *testing.T, name, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected %s to contain %q, got:\n%s", name, want, output)
	}
}

func Test_WriteGrowthTable_ListsEveryCountry(t *testing.T) {
	var b strings.Builder
	if err := WriteGrowthTable(&b, testPanel(t), nil); err != nil {
		t.Fatalf("expected table to write, got %v", err)
	}

	output := b.String()
	assertContains(t, "table", output, "capital share 0.35")
	assertContains(t, "table", output, "Country")
	assertContains(t, "table", output, "TFP share")
	assertContains(t, "table", output, "Australia")
	assertContains(t, "table", output, "United States")
	assertContains(t, "table", output, "Average")

	if strings.Contains(output, "* imputed input") {
		t.Fatal("expected no imputation footnote for a fully observed panel")
	}
}

func Test_WriteGrowthTable_MarksImputedInputs(t *testing.T) {
	var b strings.Builder
	if err := WriteGrowthTable(&b, imputedPanel(t), nil); err != nil {
		t.Fatalf("expected table to write, got %v", err)
	}

	output := b.String()
	assertContains(t, "table", output, "3.00*")
	assertContains(t, "table", output, "* imputed input")
}

func Test_WriteGrowthTable_UsesInjectedNames(t *testing.T) {
	var b strings.Builder
	names := map[string]string{"AUS": "Oz"}
	if err := WriteGrowthTable(&b, imputedPanel(t), names); err != nil {
		t.Fatalf("expected table to write, got %v", err)
	}

	output := b.String()
	assertContains(t, "table", output, "Oz")

	// codes outside the mapping fall back to themselves
	assertContains(t, "table", output, "CAN")
}

func Test_WriteGrowthReport_IncludesAllSections(t *testing.T) {
	panel := testPanel(t)
	summaries, err := core.SummarizePanel(panel)
	if err != nil {
		t.Fatalf("expected panel summary to succeed, got %v", err)
	}
	correlations, err := core.GetPanelCorrelations(panel)
	if err != nil {
		t.Fatalf("expected panel correlations to succeed, got %v", err)
	}

	var b strings.Builder
	if err := WriteGrowthReport(&b, panel, summaries, correlations, nil); err != nil {
		t.Fatalf("expected report to write, got %v", err)
	}

	output := b.String()
	assertContains(t, "report", output, "# Growth accounting report")
	assertContains(t, "report", output, "| Australia |")
	assertContains(t, "report", output, "**Average**")
	assertContains(t, "report", output, "## Summary statistics")
	assertContains(t, "report", output, "| Output growth |")
	assertContains(t, "report", output, "## Correlations")
	assertContains(t, "report", output, "1.00")
}

func Test_WriteGrowthReport_SkipsAbsentSections(t *testing.T) {
	var b strings.Builder
	if err := WriteGrowthReport(&b, testPanel(t), nil, nil, nil); err != nil {
		t.Fatalf("expected report to write, got %v", err)
	}

	output := b.String()
	if strings.Contains(output, "## Summary statistics") {
		t.Fatal("expected no summary section without summaries")
	}
	if strings.Contains(output, "## Correlations") {
		t.Fatal("expected no correlation section without a matrix")
	}
}

func Test_SaveGrowthReport_WritesFile(t *testing.T) {
	filename := chartPath(t, "report.md")
	if err := SaveGrowthReport(filename, testPanel(t), nil, nil, nil); err != nil {
		t.Fatalf("expected report to save, got %v", err)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("expected a report file, got %v", err)
	}
	assertContains(t, "report file", string(content), "# Growth accounting report")
}

func Test_WriteDecompositionSummary_DescribesTheRun(t *testing.T) {
	var b strings.Builder
	if err := WriteDecompositionSummary(&b, testDecomposition(t)); err != nil {
		t.Fatalf("expected summary to write, got %v", err)
	}

	output := b.String()
	assertContains(t, "summary", output, "Series GDPC1: 30 points")
	assertContains(t, "summary", output, "1990-01-01")
	assertContains(t, "summary", output, "2019-01-01")
	assertContains(t, "summary", output, "Smoothing 100")
	assertContains(t, "summary", output, "cycle std dev")
}

func Test_WriteComparisonSummary_DescribesBothCycles(t *testing.T) {
	var b strings.Builder
	if err := WriteComparisonSummary(&b, testComparison(t), "China", "Japan"); err != nil {
		t.Fatalf("expected summary to write, got %v", err)
	}

	output := b.String()
	assertContains(t, "summary", output, "China vs Japan over 30 shared observations")
	assertContains(t, "summary", output, "smoothing 1600")
	assertContains(t, "summary", output, "cycle correlation")
}

func Test_WriteComparisonSummary_FallsBackToSeriesNames(t *testing.T) {
	var b strings.Builder
	if err := WriteComparisonSummary(&b, testComparison(t), "", ""); err != nil {
		t.Fatalf("expected summary to write, got %v", err)
	}

	output := b.String()
	assertContains(t, "summary", output, "CHN vs JPN")
}
