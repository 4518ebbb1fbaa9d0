// Package render draws the charts and writes the tables and exports for the
// analysis pipelines. Country display names are injected by the caller and
// default to the bundled set, nothing here hardcodes a name.
package render

import (
	"cmp"
	"fmt"
	"image/color"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/karaki0910/my-macro-project/core"
	m "github.com/karaki0910/my-macro-project/models"
)

// bars past this rank fall off the TFP share chart
const shareBarLimit = 10

// shared chart palette
var (
	observedColor  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	contrastColor  = color.RGBA{R: 139, G: 0, B: 0, A: 255}
	deepeningColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	fitColor       = color.RGBA{R: 0, G: 0, B: 0, A: 255}

	smoothingColors = []color.RGBA{
		{R: 139, G: 0, B: 0, A: 255},
		{R: 0, G: 100, B: 0, A: 255},
		{R: 255, G: 165, B: 0, A: 255},
		{R: 148, G: 103, B: 189, A: 255},
	}
)

// SaveTrendChart draws the observed 100×log series with one fitted trend per
// decomposition result, labeled by smoothing weight. Every result must come
// from decomposing the same points the series holds.
func SaveTrendChart(dec *core.SeriesDecomposition, results []*core.DecompositionResult, filename string) error {
	if len(results) == 0 {
		results = []*core.DecompositionResult{dec.Result}
	}

	p := newChart(fmt.Sprintf("%s trend extraction", dec.Series.Name), "Year", "100 × log level")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Legend.Top = true

	timestamps := dec.Series.Timestamps()

	observed, err := seriesLine(timestamps, dec.Scaled, observedColor)
	if err != nil {
		return fmt.Errorf("error building observed line: %w", err)
	}
	p.Add(observed)
	p.Legend.Add("observed", observed)

	for i, result := range results {
		if len(result.Trend) != len(timestamps) {
			return fmt.Errorf("trend for λ=%v has %d points, series has %d", result.Smoothing, len(result.Trend), len(timestamps))
		}

		trend, err := seriesLine(timestamps, result.Trend, smoothingColors[i%len(smoothingColors)])
		if err != nil {
			return fmt.Errorf("error building trend line: %w", err)
		}
		trend.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(trend)
		p.Legend.Add(fmt.Sprintf("trend λ=%v", result.Smoothing), trend)
	}

	p.Add(plotter.NewGrid())

	if err := p.Save(16*vg.Inch, 8*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving trend chart: %w", err)
	}
	return nil
}

// SaveCycleChart draws the cyclical component per smoothing weight around a
// dashed zero reference line.
func SaveCycleChart(dec *core.SeriesDecomposition, results []*core.DecompositionResult, filename string) error {
	if len(results) == 0 {
		results = []*core.DecompositionResult{dec.Result}
	}

	p := newChart(fmt.Sprintf("%s cyclical component", dec.Series.Name), "Year", "Deviation from trend")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Legend.Top = true

	timestamps := dec.Series.Timestamps()

	for i, result := range results {
		if len(result.Cycle) != len(timestamps) {
			return fmt.Errorf("cycle for λ=%v has %d points, series has %d", result.Smoothing, len(result.Cycle), len(timestamps))
		}

		cycle, err := seriesLine(timestamps, result.Cycle, smoothingColors[i%len(smoothingColors)])
		if err != nil {
			return fmt.Errorf("error building cycle line: %w", err)
		}
		p.Add(cycle)
		p.Legend.Add(fmt.Sprintf("cycle λ=%v", result.Smoothing), cycle)
	}

	p.Add(zeroLine())
	p.Add(plotter.NewGrid())

	if err := p.Save(16*vg.Inch, 8*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving cycle chart: %w", err)
	}
	return nil
}

// SaveCycleOverlayChart draws two economies' cycles over their shared window
// so the co-movement reported by the comparison is visible. Empty labels fall
// back to the series names.
func SaveCycleOverlayChart(comparison *core.CycleComparison, firstLabel, secondLabel string, filename string) error {
	if firstLabel == "" {
		firstLabel = comparison.FirstName
	}
	if secondLabel == "" {
		secondLabel = comparison.SecondName
	}

	title := fmt.Sprintf("%s vs %s cycles (correlation %.2f)", firstLabel, secondLabel, comparison.Correlation)
	p := newChart(title, "Year", "Deviation from trend")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Legend.Top = true

	first, err := seriesLine(comparison.Timestamps, comparison.FirstCycle, observedColor)
	if err != nil {
		return fmt.Errorf("error building first cycle line: %w", err)
	}
	second, err := seriesLine(comparison.Timestamps, comparison.SecondCycle, contrastColor)
	if err != nil {
		return fmt.Errorf("error building second cycle line: %w", err)
	}

	p.Add(first, second)
	p.Legend.Add(firstLabel, first)
	p.Legend.Add(secondLabel, second)

	p.Add(zeroLine())
	p.Add(plotter.NewGrid())

	if err := p.Save(16*vg.Inch, 8*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving cycle overlay chart: %w", err)
	}
	return nil
}

// SaveTFPScatterChart plots output growth against TFP growth with a fitted
// least-squares line, one labeled point per country.
func SaveTFPScatterChart(panel *m.GrowthPanel, names map[string]string, filename string) error {
	if err := checkPanel(panel); err != nil {
		return err
	}
	names = resolveNames(names)

	points := make(plotter.XYs, len(panel.Records))
	labels := make([]string, len(panel.Records))
	xs := make([]float64, len(panel.Records))
	ys := make([]float64, len(panel.Records))
	for i, record := range panel.Records {
		points[i].X = record.OutputGrowth
		points[i].Y = record.TFPGrowth
		xs[i] = record.OutputGrowth
		ys[i] = record.TFPGrowth
		labels[i] = m.CountryName(names, record.CountryCode)
	}

	p := newChart("Output growth vs TFP growth", "Output growth (% per year)", "TFP growth (% per year)")
	p.Legend.Top = true

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("error building scatter: %w", err)
	}
	scatter.GlyphStyle.Color = contrastColor
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)

	if len(panel.Records) >= 2 {
		intercept, slope := stat.LinearRegression(xs, ys, nil, false)
		fit := plotter.NewFunction(func(x float64) float64 { return intercept + slope*x })
		fit.Color = fitColor
		fit.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(fit)
		p.Legend.Add(fmt.Sprintf("fit slope %.2f", slope), fit)
	}

	if err := addPointLabels(p, points, labels); err != nil {
		return err
	}
	p.Add(plotter.NewGrid())

	if err := p.Save(14*vg.Inch, 10*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving TFP scatter chart: %w", err)
	}
	return nil
}

// SaveDeepeningScatterChart plots TFP growth against capital deepening, one
// labeled point per country.
func SaveDeepeningScatterChart(panel *m.GrowthPanel, names map[string]string, filename string) error {
	if err := checkPanel(panel); err != nil {
		return err
	}
	names = resolveNames(names)

	points := make(plotter.XYs, len(panel.Records))
	labels := make([]string, len(panel.Records))
	for i, record := range panel.Records {
		points[i].X = record.TFPGrowth
		points[i].Y = record.CapitalDeepening
		labels[i] = m.CountryName(names, record.CountryCode)
	}

	p := newChart("TFP growth vs capital deepening", "TFP growth (% per year)", "Capital deepening (% per year)")

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("error building scatter: %w", err)
	}
	scatter.GlyphStyle.Color = observedColor
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)

	if err := addPointLabels(p, points, labels); err != nil {
		return err
	}
	p.Add(plotter.NewGrid())

	if err := p.Save(14*vg.Inch, 10*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving deepening scatter chart: %w", err)
	}
	return nil
}

// SaveTFPShareBarChart ranks countries by the TFP share of output growth and
// draws the top of the ranking.
func SaveTFPShareBarChart(panel *m.GrowthPanel, names map[string]string, filename string) error {
	if err := checkPanel(panel); err != nil {
		return err
	}
	names = resolveNames(names)

	ranked := slices.Clone(panel.Records)
	slices.SortFunc(ranked, func(a, b *m.CountryGrowthRecord) int {
		return cmp.Compare(b.TFPShare, a.TFPShare)
	})
	if len(ranked) > shareBarLimit {
		ranked = ranked[:shareBarLimit]
	}

	values := make(plotter.Values, len(ranked))
	labels := make([]string, len(ranked))
	for i, record := range ranked {
		values[i] = record.TFPShare
		labels[i] = m.CountryName(names, record.CountryCode)
	}

	p := newChart("TFP share of output growth", "", "Share of growth")

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("error building bar chart: %w", err)
	}
	bars.Color = observedColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XCenter

	maxShare := slices.Max(values)
	for i, val := range values {
		if val <= 0 {
			continue
		}
		label, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: float64(i), Y: val + maxShare*0.02}},
			Labels: []string{fmt.Sprintf("%.2f", val)},
		})
		if err != nil {
			return fmt.Errorf("error labeling bars: %w", err)
		}
		p.Add(label)
	}

	if err := p.Save(12*vg.Inch, 8*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving TFP share chart: %w", err)
	}
	return nil
}

// SaveContributionBarChart draws TFP growth and capital deepening side by
// side for a subset of economies. A nil subset defaults to the majors.
func SaveContributionBarChart(panel *m.GrowthPanel, countries []string, names map[string]string, filename string) error {
	if err := checkPanel(panel); err != nil {
		return err
	}
	if countries == nil {
		countries = m.MajorEconomies
	}
	names = resolveNames(names)

	var tfp, deepening plotter.Values
	var labels []string
	for _, code := range countries {
		record := panel.Record(code)
		if record == nil {
			continue
		}
		tfp = append(tfp, record.TFPGrowth)
		deepening = append(deepening, record.CapitalDeepening)
		labels = append(labels, m.CountryName(names, code))
	}
	if len(labels) == 0 {
		return fmt.Errorf("none of the requested countries are in the panel")
	}

	p := newChart("Sources of growth", "", "% per year")
	p.Legend.Top = true

	width := vg.Points(20)

	tfpBars, err := plotter.NewBarChart(tfp, width)
	if err != nil {
		return fmt.Errorf("error building TFP bars: %w", err)
	}
	tfpBars.Color = observedColor
	tfpBars.LineStyle.Width = vg.Length(0)
	tfpBars.Offset = -width / 2

	deepeningBars, err := plotter.NewBarChart(deepening, width)
	if err != nil {
		return fmt.Errorf("error building deepening bars: %w", err)
	}
	deepeningBars.Color = deepeningColor
	deepeningBars.LineStyle.Width = vg.Length(0)
	deepeningBars.Offset = width / 2

	p.Add(tfpBars, deepeningBars)
	p.Legend.Add("TFP growth", tfpBars)
	p.Legend.Add("capital deepening", deepeningBars)

	p.NominalX(labels...)
	p.Add(zeroLine())

	if err := p.Save(12*vg.Inch, 8*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving contribution chart: %w", err)
	}
	return nil
}

// newChart applies the frame styling every chart shares.
func newChart(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func seriesLine(timestamps []time.Time, values []float64, c color.RGBA) (*plotter.Line, error) {
	points := make(plotter.XYs, len(values))
	for i, v := range values {
		points[i].X = float64(timestamps[i].Unix())
		points[i].Y = v
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = vg.Points(2)
	return line, nil
}

// zeroLine is the dashed reference the cycle and contribution charts sit on.
func zeroLine() *plotter.Function {
	line := plotter.NewFunction(func(float64) float64 { return 0 })
	line.Color = fitColor
	line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	return line
}

func addPointLabels(p *plot.Plot, points plotter.XYs, labels []string) error {
	pointLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
	if err != nil {
		return fmt.Errorf("error labeling points: %w", err)
	}
	p.Add(pointLabels)
	return nil
}

func checkPanel(panel *m.GrowthPanel) error {
	if panel == nil || len(panel.Records) == 0 {
		return fmt.Errorf("growth panel has no records")
	}
	return nil
}

func resolveNames(names map[string]string) map[string]string {
	if names == nil {
		return m.CountryNames
	}
	return names
}
