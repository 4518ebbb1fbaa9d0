package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/karaki0910/my-macro-project/api/fred"
	"github.com/karaki0910/my-macro-project/api/worldbank"
	cfg "github.com/karaki0910/my-macro-project/config"
	"github.com/karaki0910/my-macro-project/core"
	m "github.com/karaki0910/my-macro-project/models"
	"github.com/karaki0910/my-macro-project/render"
	r "github.com/karaki0910/my-macro-project/repos"
)

var (
	verbose      bool
	smoothing    float64
	startDate    string
	endDate      string
	csvPath      string
	outputDir    string
	capitalShare float64
	startYear    int
	endYear      int
	useSample    bool
	port         int

	logger *zap.Logger
	config cfg.Config
	sc     *core.ServiceContext
)

// display labels for the bundled series ids, anything else shows as itself
var seriesLabels = map[string]string{
	m.SeriesUSRealGDP:    "United States",
	m.SeriesJapanRealGDP: "Japan",
	m.SeriesChinaGDP:     "China",
}

var rootCmd = &cobra.Command{
	Use:   "macro",
	Short: "Macroeconomic trend, cycle, and growth accounting toolkit",
	Long: `macro pulls GDP level series from FRED and growth indicators from the
World Bank, splits levels into trend and cycle with the Hodrick Prescott
filter, and decomposes output growth into capital, labor, and TFP
contributions.

Results land as charts, CSV exports, and markdown reports. When DATABASE_URL
is configured, fetched observations are cached in Postgres so repeated runs
stay off the public APIs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

var filterCmd = &cobra.Command{
	Use:   "filter [series]",
	Short: "Decompose a GDP level series into trend and cycle",
	Long: `Fetches a level series by FRED id (or loads it from a local CSV), moves
it to 100×log scale, and runs the Hodrick Prescott filter. Prints a summary
and writes trend and cycle charts plus a CSV of the decomposition.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilter,
}

var compareCmd = &cobra.Command{
	Use:   "compare [first] [second]",
	Short: "Compare the business cycles of two economies",
	Long: `Fetches two GDP level series, aligns them on their shared observations,
and compares the cyclical components. Defaults to China against Japan.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCompare,
}

var growthCmd = &cobra.Command{
	Use:   "growth",
	Short: "Run the growth accounting decomposition",
	Long: `Fetches output, capital, and employment indicators from the World Bank,
averages them over the observation window, and decomposes output growth into
capital, labor, and TFP contributions. Falls back to the bundled reference
panel when live data cannot be fetched. Writes the table, a markdown report,
a CSV export, and the accounting charts.`,
	RunE: runGrowth,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch panel indicators into the Postgres cache",
	RunE:  runFetch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	filterCmd.Flags().Float64Var(&smoothing, "lambda", 0, "smoothing weight, 0 means the configured default")
	filterCmd.Flags().StringVar(&startDate, "start", "", "window start, YYYY-MM-DD")
	filterCmd.Flags().StringVar(&endDate, "end", "", "window end, YYYY-MM-DD")
	filterCmd.Flags().StringVar(&csvPath, "csv", "", "load the series from a local CSV instead of FRED")
	filterCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for charts and exports")

	compareCmd.Flags().Float64Var(&smoothing, "lambda", 0, "smoothing weight, 0 means the quarterly default")
	compareCmd.Flags().StringVar(&startDate, "start", "", "window start, YYYY-MM-DD")
	compareCmd.Flags().StringVar(&endDate, "end", "", "window end, YYYY-MM-DD")
	compareCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for charts and exports")

	growthCmd.Flags().Float64Var(&capitalShare, "capital-share", 0, "capital share of output, 0 means the configured default")
	growthCmd.Flags().IntVar(&startYear, "start-year", 0, "first year of the observation window")
	growthCmd.Flags().IntVar(&endYear, "end-year", 0, "last year of the observation window")
	growthCmd.Flags().BoolVar(&useSample, "sample", false, "use the bundled reference panel instead of fetching")
	growthCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for charts and exports")

	fetchCmd.Flags().IntVar(&startYear, "start-year", 0, "first year of the observation window")
	fetchCmd.Flags().IntVar(&endYear, "end-year", 0, "last year of the observation window")

	serveCmd.Flags().IntVar(&port, "port", 0, "listen port, 0 means the configured port")

	rootCmd.AddCommand(filterCmd, compareCmd, growthCmd, fetchCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	zapConfig := zap.NewProductionConfig()
	if verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	var err error
	logger, err = zapConfig.Build()
	if err != nil {
		return fmt.Errorf("error building logger: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug(".env not loaded", zap.Error(err))
	}

	config, err = cfg.Load()
	if err != nil {
		return err
	}

	sc, err = buildServiceContext(cmd.Context())
	return err
}

func teardown(*cobra.Command, []string) {
	if sc != nil && sc.Postgres != nil {
		sc.Postgres.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// buildServiceContext assembles the shared dependencies. A configured but
// unreachable database degrades to running without the cache, only the fetch
// command insists on one.
func buildServiceContext(ctx context.Context) (*core.ServiceContext, error) {
	fredClient := fred.GetClientWithTimeout(config.FredApiKey, config.RequestTimeout)
	worldBankClient := worldbank.GetClientWithTimeout(config.RequestTimeout)

	serviceContext := &core.ServiceContext{
		Context:      ctx,
		Series:       &fredClient,
		Observations: &worldBankClient,
		Logger:       logger,
		Config:       config,
	}

	if config.DatabaseUrl == "" {
		return serviceContext, nil
	}

	postgres, err := r.GetPostgresConnection(ctx, config.DatabaseUrl)
	if err != nil {
		logger.Warn("observation cache unavailable, running without it", zap.Error(err))
		return serviceContext, nil
	}
	if err := postgres.EnsureSchema(ctx); err != nil {
		postgres.Close()
		logger.Warn("observation cache schema not ready, running without it", zap.Error(err))
		return serviceContext, nil
	}

	serviceContext.Postgres = postgres
	return serviceContext, nil
}

func runFilter(_ *cobra.Command, args []string) error {
	seriesId := m.SeriesUSRealGDP
	if len(args) > 0 {
		seriesId = args[0]
	}

	lambda := smoothing
	if lambda == 0 {
		lambda = config.Smoothing
	}
	if lambda == 0 {
		lambda = m.SmoothingAnnual
	}

	start, end, err := parseWindow(startDate, endDate)
	if err != nil {
		return err
	}

	var dec *core.SeriesDecomposition
	if csvPath != "" {
		dec, err = decomposeLocalSeries(csvPath, start, end, lambda)
	} else {
		dec, err = sc.DecomposeRemoteSeries(seriesId, start, end, lambda)
	}
	if err != nil {
		return err
	}

	if err := render.WriteDecompositionSummary(os.Stdout, dec); err != nil {
		return err
	}

	results, err := core.DecomposeAll(dec.Scaled, []float64{m.SmoothingLight, m.SmoothingAnnual, m.SmoothingQuarterly})
	if err != nil {
		return err
	}

	dir, err := resolveOutputDir()
	if err != nil {
		return err
	}

	name := dec.Series.Name
	if err := render.SaveTrendChart(dec, results, filepath.Join(dir, name+"_trend.png")); err != nil {
		return err
	}
	if err := render.SaveCycleChart(dec, results, filepath.Join(dir, name+"_cycle.png")); err != nil {
		return err
	}
	if err := render.SaveDecompositionCSV(dec, filepath.Join(dir, name+"_decomposition.csv")); err != nil {
		return err
	}

	fmt.Printf("charts and decomposition written to %s\n", dir)
	return nil
}

func runCompare(_ *cobra.Command, args []string) error {
	firstId, secondId := m.SeriesChinaGDP, m.SeriesJapanRealGDP
	if len(args) > 0 {
		firstId = args[0]
	}
	if len(args) > 1 {
		secondId = args[1]
	}

	lambda := smoothing
	if lambda == 0 {
		lambda = m.SmoothingQuarterly
	}

	start, end, err := parseWindow(startDate, endDate)
	if err != nil {
		return err
	}

	comparison, err := sc.CompareRemoteCycles(firstId, secondId, start, end, lambda)
	if err != nil {
		return err
	}

	firstLabel, secondLabel := seriesLabel(firstId), seriesLabel(secondId)
	if err := render.WriteComparisonSummary(os.Stdout, comparison, firstLabel, secondLabel); err != nil {
		return err
	}

	dir, err := resolveOutputDir()
	if err != nil {
		return err
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s_vs_%s_cycles.png", firstId, secondId))
	if err := render.SaveCycleOverlayChart(comparison, firstLabel, secondLabel, filename); err != nil {
		return err
	}

	fmt.Printf("overlay chart written to %s\n", dir)
	return nil
}

func runGrowth(_ *cobra.Command, _ []string) error {
	share := capitalShare
	if share == 0 {
		share = config.CapitalShare
	}
	opts := core.AccountingOptions{CapitalShare: share}

	firstYear := startYear
	if firstYear == 0 {
		firstYear = config.StartYear
	}
	lastYear := endYear
	if lastYear == 0 {
		lastYear = config.EndYear
	}

	var panel *m.GrowthPanel
	var err error
	if useSample {
		panel, err = core.EstimateGrowthPanel(m.SamplePanelInputs(), opts)
	} else {
		panel, err = sc.BuildGrowthPanel(nil, firstYear, lastYear, opts)
	}
	if err != nil {
		return err
	}

	summaries, err := core.SummarizePanel(panel)
	if err != nil {
		logger.Warn("panel summary unavailable", zap.Error(err))
	}
	correlations, err := core.GetPanelCorrelations(panel)
	if err != nil {
		logger.Warn("panel correlations unavailable", zap.Error(err))
	}

	if err := render.WriteGrowthTable(os.Stdout, panel, nil); err != nil {
		return err
	}

	dir, err := resolveOutputDir()
	if err != nil {
		return err
	}

	if err := render.SaveGrowthReport(filepath.Join(dir, "growth_report.md"), panel, summaries, correlations, nil); err != nil {
		return err
	}
	if err := render.SavePanelCSV(panel, nil, filepath.Join(dir, "growth_panel.csv")); err != nil {
		return err
	}
	if err := render.SaveTFPScatterChart(panel, nil, filepath.Join(dir, "output_vs_tfp.png")); err != nil {
		return err
	}
	if err := render.SaveDeepeningScatterChart(panel, nil, filepath.Join(dir, "tfp_vs_deepening.png")); err != nil {
		return err
	}
	if err := render.SaveTFPShareBarChart(panel, nil, filepath.Join(dir, "tfp_share.png")); err != nil {
		return err
	}
	if err := render.SaveContributionBarChart(panel, nil, nil, filepath.Join(dir, "contributions.png")); err != nil {
		return err
	}

	fmt.Printf("\nreport, panel export, and charts written to %s\n", dir)
	return nil
}

func runFetch(_ *cobra.Command, _ []string) error {
	if sc.Postgres == nil {
		return fmt.Errorf("fetch needs the observation cache, set DATABASE_URL or database_url in config")
	}

	firstYear := startYear
	if firstYear == 0 {
		firstYear = config.StartYear
	}
	lastYear := endYear
	if lastYear == 0 {
		lastYear = config.EndYear
	}

	return sc.SyncObservations(nil, firstYear, lastYear)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if port != 0 {
		sc.Config.Port = port
	}

	server := core.GetHttpServer(sc)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-cmd.Context().Done():
	}
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// decomposeLocalSeries runs the filter over a CSV file, trimming to the
// window when one is given.
func decomposeLocalSeries(filename string, start, end time.Time, lambda float64) (*core.SeriesDecomposition, error) {
	series, err := m.LoadTimeSeriesCSV(filename, nil)
	if err != nil {
		return nil, err
	}

	if !start.IsZero() || !end.IsZero() {
		if start.IsZero() {
			start = series.First()
		}
		if end.IsZero() {
			end = series.Last()
		}
		series = series.Window(start, end)
	}

	return core.DecomposeLevelSeries(series, lambda)
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if startRaw != "" {
		start, err = time.Parse(time.DateOnly, startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad start date %q, want YYYY-MM-DD", startRaw)
		}
	}
	if endRaw != "" {
		end, err = time.Parse(time.DateOnly, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad end date %q, want YYYY-MM-DD", endRaw)
		}
	}

	return start, end, nil
}

func resolveOutputDir() (string, error) {
	dir := outputDir
	if dir == "" {
		dir = config.OutputDir
	}
	if dir == "" {
		dir = "output"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	return dir, nil
}

func seriesLabel(seriesId string) string {
	if label, ok := seriesLabels[seriesId]; ok {
		return label
	}
	return seriesId
}
