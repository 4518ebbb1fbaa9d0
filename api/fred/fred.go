package fred

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/guregu/null/v5"

	c "github.com/karaki0910/my-macro-project/api"
	m "github.com/karaki0910/my-macro-project/models"
)

// public
const (
	HostDefault = "api.stlouisfed.org"
)

// private
const (
	defaultTimeout  = time.Second * 30
	observationPath = "fred/series/observations"

	// FRED reports a gap as a bare period
	missingMarker = "."
	dateFormat    = "2006-01-02"
)

type FredClient struct {
	*c.Client
}

func GetClient(apiKey string) FredClient {
	return GetClientWithTimeout(apiKey, defaultTimeout)
}

// GetClientWithTimeout overrides the request timeout, zero keeps the default.
func GetClientWithTimeout(apiKey string, timeout time.Duration) FredClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return FredClient{
		c.ClientFactory(HostDefault, apiKey, timeout),
	}
}

// https://fred.stlouisfed.org/docs/api/fred/series_observations.html
func (fc *FredClient) GetSeriesObservations(seriesId string) (*m.TimeSeries, error) {
	return fc.getObservations(seriesId, map[string]string{
		"series_id": seriesId,
	})
}

// GetSeriesObservationsBetween narrows the request to [start, end] inclusive.
func (fc *FredClient) GetSeriesObservationsBetween(seriesId string, start, end time.Time) (*m.TimeSeries, error) {
	return fc.getObservations(seriesId, map[string]string{
		"series_id":         seriesId,
		"observation_start": start.Format(dateFormat),
		"observation_end":   end.Format(dateFormat),
	})
}

func (fc *FredClient) getObservations(seriesId string, params map[string]string) (*m.TimeSeries, error) {
	if fc.Client.ApiKey == "" {
		return nil, fmt.Errorf("%w: fred api key is not set", c.ErrSeriesUnavailable)
	}

	endpoint := fc.buildRequestPath(params)

	response, err := fc.Client.Connection.Request(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting %s: %s", c.ErrSeriesUnavailable, seriesId, err)
	}
	defer response.Body.Close()

	if err := c.EnsureOk(response, "fred"); err != nil {
		return nil, fmt.Errorf("%s: %w", seriesId, err)
	}

	return parseObservations(seriesId, response.Body)
}

func (fc *FredClient) buildRequestPath(params map[string]string) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = observationPath

	query := endpoint.Query()
	query.Set("api_key", fc.Client.ApiKey)
	query.Set("file_type", "json")

	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

type observationsPayload struct {
	ErrorMessage string `json:"error_message"`
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

func parseObservations(seriesId string, reader io.Reader) (*m.TimeSeries, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var payload observationsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: fred rejected %s: %s", c.ErrSeriesUnavailable, seriesId, payload.ErrorMessage)
	}
	if len(payload.Observations) == 0 {
		return nil, fmt.Errorf("%w: fred returned no observations for %s", c.ErrSeriesUnavailable, seriesId)
	}

	points := make([]m.SeriesPoint, 0, len(payload.Observations))
	for _, obs := range payload.Observations {
		timestamp, err := time.Parse(dateFormat, obs.Date)
		if err != nil {
			return nil, fmt.Errorf("error converting date %s to time.Time: %w", obs.Date, err)
		}

		points = append(points, m.SeriesPoint{
			Timestamp: timestamp,
			Value:     parseValue(obs.Value),
		})
	}

	return m.NewTimeSeries(seriesId, points)
}

func parseValue(val string) null.Float {
	if val == "" || val == missingMarker {
		return null.Float{}
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return null.Float{}
	}
	return null.NewFloat(f, true)
}
