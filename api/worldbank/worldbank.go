package worldbank

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	c "github.com/karaki0910/my-macro-project/api"
	m "github.com/karaki0910/my-macro-project/models"
)

// public
const (
	HostDefault = "api.worldbank.org"
)

// private
const (
	defaultTimeout = time.Second * 30
	defaultPerPage = "10000"
)

type WorldBankClient struct {
	*c.Client
}

// GetClient returns a client for the open data API, which needs no key.
func GetClient() WorldBankClient {
	return GetClientWithTimeout(defaultTimeout)
}

// GetClientWithTimeout overrides the request timeout, zero keeps the default.
func GetClientWithTimeout(timeout time.Duration) WorldBankClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return WorldBankClient{
		c.ClientFactory(HostDefault, "", timeout),
	}
}

// GetIndicator fetches one indicator for a set of ISO3 country codes over an
// inclusive year range, following pagination until every row has arrived.
// Rows come back grouped by country in ascending year order.
//
// https://datahelpdesk.worldbank.org/knowledgebase/articles/898581-api-basic-call-structures
func (wbc *WorldBankClient) GetIndicator(indicator string, countryCodes []string, startYear, endYear int) (*m.ObservationSet, error) {
	var observations []*m.Observation

	page := 1
	for {
		endpoint := wbc.buildRequestPath(indicator, countryCodes, map[string]string{
			"date": fmt.Sprintf("%d:%d", startYear, endYear),
			"page": strconv.Itoa(page),
		})

		response, err := wbc.Client.Connection.Request(endpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: requesting %s: %s", c.ErrSeriesUnavailable, indicator, err)
		}

		info, rows, err := parsePage(indicator, response)
		if err != nil {
			return nil, err
		}

		observations = append(observations, rows...)

		if page >= int(info.Pages) {
			break
		}
		page++
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: world bank returned no rows for %s", c.ErrSeriesUnavailable, indicator)
	}

	slices.SortFunc(observations, func(a, b *m.Observation) int {
		if a.CountryCode != b.CountryCode {
			return strings.Compare(a.CountryCode, b.CountryCode)
		}
		return a.Year - b.Year
	})

	return m.NewObservationSet(indicator, observations), nil
}

func (wbc *WorldBankClient) buildRequestPath(indicator string, countryCodes []string, params map[string]string) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = fmt.Sprintf("v2/country/%s/indicator/%s", strings.Join(countryCodes, ";"), indicator)

	query := endpoint.Query()
	query.Set("format", "json")
	query.Set("per_page", defaultPerPage)

	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

// pageInfo is the first element of every indicator response.
type pageInfo struct {
	Page    tolerantInt `json:"page"`
	Pages   tolerantInt `json:"pages"`
	PerPage tolerantInt `json:"per_page"`
	Total   tolerantInt `json:"total"`
}

// tolerantInt accepts both the numeric and quoted-string forms the API uses
// for its paging fields.
type tolerantInt int

func (ti *tolerantInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*ti = 0
		return nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("error parsing %q as an integer", s)
	}

	*ti = tolerantInt(v)
	return nil
}

// indicatorRow keys on countryiso3code. The country.id field holds the
// two-letter code and does not match the ISO3 codes requests are made with.
type indicatorRow struct {
	CountryISO3 string     `json:"countryiso3code"`
	Date        string     `json:"date"`
	Value       null.Float `json:"value"`
	Country     struct {
		Id    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
}

func parsePage(indicator string, response *http.Response) (*pageInfo, []*m.Observation, error) {
	defer response.Body.Close()

	if err := c.EnsureOk(response, "world bank"); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", indicator, err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading response body: %w", err)
	}

	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(envelope) < 2 {
		return nil, nil, fmt.Errorf("%w: world bank rejected %s: %s", c.ErrSeriesUnavailable, indicator, apiMessage(envelope))
	}

	var info pageInfo
	if err := json.Unmarshal(envelope[0], &info); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling page info: %w", err)
	}

	var rows []indicatorRow
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling indicator rows: %w", err)
	}

	observations := make([]*m.Observation, 0, len(rows))
	for _, row := range rows {
		// aggregate rows carry no iso3 code
		if row.CountryISO3 == "" {
			continue
		}

		year, err := strconv.Atoi(row.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("error converting date %s to a year: %w", row.Date, err)
		}

		observations = append(observations, &m.Observation{
			Indicator:   indicator,
			CountryCode: row.CountryISO3,
			CountryName: row.Country.Value,
			Year:        year,
			Value:       row.Value,
		})
	}

	return &info, observations, nil
}

// apiMessage digs the human readable message out of an error envelope.
func apiMessage(envelope []json.RawMessage) string {
	if len(envelope) == 0 {
		return "empty response"
	}

	var failure struct {
		Message []struct {
			Value string `json:"value"`
		} `json:"message"`
	}
	if err := json.Unmarshal(envelope[0], &failure); err == nil && len(failure.Message) > 0 {
		return failure.Message[0].Value
	}

	return "unexpected response shape"
}
