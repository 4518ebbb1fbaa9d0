package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	c "github.com/karaki0910/my-macro-project/api"
	ex "github.com/karaki0910/my-macro-project/extensions"
	m "github.com/karaki0910/my-macro-project/models"
)

const DefaultAddr = ":8080"

// HealthStatus reports service liveness and the state of the observation
// cache behind it.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// DecompositionResponse is the wire shape of one trend-cycle split. Observed
// carries the 100×log values the filter ran on, aligned with Dates.
type DecompositionResponse struct {
	Series    string    `json:"series"`
	Smoothing float64   `json:"smoothing"`
	Dates     []string  `json:"dates"`
	Observed  []float64 `json:"observed"`
	Trend     []float64 `json:"trend"`
	Cycle     []float64 `json:"cycle"`
}

// CycleComparisonResponse is the wire shape of a two-series cycle
// comparison over their shared dates.
type CycleComparisonResponse struct {
	First        string    `json:"first"`
	Second       string    `json:"second"`
	Smoothing    float64   `json:"smoothing"`
	Dates        []string  `json:"dates"`
	FirstCycle   []float64 `json:"firstCycle"`
	SecondCycle  []float64 `json:"secondCycle"`
	FirstStdDev  float64   `json:"firstStdDev"`
	SecondStdDev float64   `json:"secondStdDev"`
	Correlation  float64   `json:"correlation"`
}

// Router wires the analysis endpoints onto a chi mux.
func (sc *ServiceContext) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(sc.logRequests)

	router.Get("/health", sc.getHealth)
	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/decompose", sc.getDecomposition)
		api.Get("/growth", sc.getGrowthPanel)
		api.Get("/cycles/compare", sc.getCycleComparison)
		api.Get("/indicators", sc.getCachedIndicators)
	})

	return router
}

// GetHttpServer builds the service around the router. WriteTimeout leaves
// room for the outbound provider fetches the handlers make.
func GetHttpServer(sc *ServiceContext) *http.Server {
	addr := DefaultAddr
	if sc.Config.Port > 0 {
		addr = fmt.Sprintf(":%d", sc.Config.Port)
	}

	return &http.Server{
		Addr:           addr,
		Handler:        sc.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

func (sc *ServiceContext) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		sc.Logger.Info("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (sc *ServiceContext) getHealth(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{Status: "ok", Database: "disabled"}

	if sc.Postgres != nil {
		health.Database = "ok"
		if err := sc.Postgres.Ping(sc.Context); err != nil {
			health.Status = "degraded"
			health.Database = "unreachable"
			writeJson(w, http.StatusServiceUnavailable, m.GetServiceResponseOk(health))
			return
		}
	}

	writeJson(w, http.StatusOK, m.GetServiceResponseOk(health))
}

func (sc *ServiceContext) getDecomposition(w http.ResponseWriter, r *http.Request) {
	seriesId := queryString(r, "series", m.SeriesUSRealGDP)

	smoothing, err := queryFloat(r, "lambda", sc.defaultSmoothing())
	if err != nil {
		sc.writeError(w, err)
		return
	}
	start, err := queryDate(r, "start")
	if err != nil {
		sc.writeError(w, err)
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		sc.writeError(w, err)
		return
	}

	decomposition, err := sc.DecomposeRemoteSeries(seriesId, start, end, smoothing)
	if err != nil {
		sc.writeError(w, err)
		return
	}

	response := buildDecompositionResponse(decomposition)
	writeJson(w, http.StatusOK, m.GetServiceResponseOk(response))
}

func (sc *ServiceContext) getGrowthPanel(w http.ResponseWriter, r *http.Request) {
	share, err := queryFloat(r, "capital_share", sc.Config.CapitalShare)
	if err != nil {
		sc.writeError(w, err)
		return
	}
	startYear, err := queryInt(r, "start_year", sc.Config.StartYear)
	if err != nil {
		sc.writeError(w, err)
		return
	}
	endYear, err := queryInt(r, "end_year", sc.Config.EndYear)
	if err != nil {
		sc.writeError(w, err)
		return
	}

	panel, err := sc.BuildGrowthPanel(nil, startYear, endYear, AccountingOptions{CapitalShare: share})
	if err != nil {
		sc.writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, m.GetServiceResponseOk(panel))
}

func (sc *ServiceContext) getCycleComparison(w http.ResponseWriter, r *http.Request) {
	firstId := queryString(r, "first", m.SeriesChinaGDP)
	secondId := queryString(r, "second", m.SeriesJapanRealGDP)

	smoothing, err := queryFloat(r, "lambda", m.SmoothingQuarterly)
	if err != nil {
		sc.writeError(w, err)
		return
	}
	start, err := queryDate(r, "start")
	if err != nil {
		sc.writeError(w, err)
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		sc.writeError(w, err)
		return
	}

	comparison, err := sc.CompareRemoteCycles(firstId, secondId, start, end, smoothing)
	if err != nil {
		sc.writeError(w, err)
		return
	}

	response := buildCycleComparisonResponse(comparison)
	writeJson(w, http.StatusOK, m.GetServiceResponseOk(response))
}

func (sc *ServiceContext) getCachedIndicators(w http.ResponseWriter, r *http.Request) {
	if sc.Postgres == nil {
		writeJson(w, http.StatusServiceUnavailable, m.GetServiceResponseError("observation cache is not configured"))
		return
	}

	indicators, err := sc.Postgres.GetCachedIndicators(sc.Context)
	if err != nil {
		sc.writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, m.GetServiceResponseOk(&indicators))
}

func buildDecompositionResponse(decomposition *SeriesDecomposition) *DecompositionResponse {
	return &DecompositionResponse{
		Series:    decomposition.Series.Name,
		Smoothing: decomposition.Result.Smoothing,
		Dates:     shortDates(decomposition.Series.Timestamps()),
		Observed:  decomposition.Scaled,
		Trend:     decomposition.Result.Trend,
		Cycle:     decomposition.Result.Cycle,
	}
}

func buildCycleComparisonResponse(comparison *CycleComparison) *CycleComparisonResponse {
	return &CycleComparisonResponse{
		First:        comparison.FirstName,
		Second:       comparison.SecondName,
		Smoothing:    comparison.Smoothing,
		Dates:        shortDates(comparison.Timestamps),
		FirstCycle:   comparison.FirstCycle,
		SecondCycle:  comparison.SecondCycle,
		FirstStdDev:  comparison.FirstStdDev,
		SecondStdDev: comparison.SecondStdDev,
		Correlation:  comparison.Correlation,
	}
}

func shortDates(timestamps []time.Time) []string {
	dates := make([]string, len(timestamps))
	for i, ts := range timestamps {
		dates[i] = ex.FmtShort(ts)
	}
	return dates
}

func (sc *ServiceContext) defaultSmoothing() float64 {
	if sc.Config.Smoothing > 0 {
		return sc.Config.Smoothing
	}
	return m.SmoothingAnnual
}

func (sc *ServiceContext) writeError(w http.ResponseWriter, err error) {
	writeJson(w, statusForError(err), m.GetServiceResponseError(err.Error()))
}

// statusForError maps the failure taxonomy onto response codes: bad
// parameters are the caller's fault, thin or empty data reads as not found,
// and a provider failure is a bad gateway.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrNoUsableData):
		return http.StatusNotFound
	case errors.Is(err, c.ErrSeriesUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJson(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func queryString(r *http.Request, name, fallback string) string {
	if raw := r.URL.Query().Get(name); raw != "" {
		return raw
	}
	return fallback
}

func queryFloat(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s must be a number, got %q: %w", name, raw, ErrInvalidInput)
	}
	return value, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %s must be an integer, got %q: %w", name, raw, ErrInvalidInput)
	}
	return value, nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}

	value, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parameter %s must be a %s date, got %q: %w", name, time.DateOnly, raw, ErrInvalidInput)
	}
	return value, nil
}
