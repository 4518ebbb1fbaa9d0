package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrSeriesUnavailable reports that a data provider could not supply the
// requested series. Fetch failures surface through this sentinel and are not
// retried here, the caller decides whether to fall back.
var ErrSeriesUnavailable = errors.New("series unavailable")

type Connection interface {
	Request(endpoint *url.URL) (*http.Response, error)
}

type ClientHost struct {
	client *http.Client
	host   string
}

// Client carries the connection and credential shared by the provider
// packages. Fields are exported so provider clients can embed and reach them.
type Client struct {
	Connection Connection
	ApiKey     string
}

func (conn *ClientHost) Request(endpoint *url.URL) (*http.Response, error) {
	endpoint.Scheme = "https"
	endpoint.Host = conn.host
	targetUrl := endpoint.String()
	return conn.client.Get(targetUrl)
}

func ClientFactory(host string, apiKey string, timeout time.Duration) *Client {
	client := &http.Client{
		Timeout: timeout,
	}

	clientHost := &ClientHost{
		client: client,
		host:   host,
	}

	return &Client{
		Connection: clientHost,
		ApiKey:     apiKey,
	}
}

// EnsureOk converts a non-200 response status into a wrapped
// ErrSeriesUnavailable so every provider shares one status policy.
func EnsureOk(response *http.Response, provider string) error {
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %s", ErrSeriesUnavailable, provider, response.Status)
	}
	return nil
}
