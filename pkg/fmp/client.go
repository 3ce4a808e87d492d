// Package fmp provides a client for the Financial Modeling Prep endpoints
// used by the mover scan: biggest gainers, biggest losers, and shares float.
package fmp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/morningdispatch/marketintel/internal/resilience"
)

// Mover is a single record from the gainers or losers feed.
type Mover struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
	Exchange          string  `json:"exchange"`
}

// Client defines the FMP operations.
type Client interface {
	// BiggestGainers fetches today's biggest gaining securities.
	BiggestGainers(ctx context.Context) ([]Mover, error)
	// BiggestLosers fetches today's biggest losing securities.
	BiggestLosers(ctx context.Context) ([]Mover, error)
	// SharesFloat returns the outstanding share count for a symbol.
	SharesFloat(ctx context.Context, symbol string) (float64, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithFetcher sets the retrying fetcher used for requests.
func WithFetcher(f *resilience.Fetcher) Option {
	return func(c *httpClient) { c.fetcher = f }
}

type httpClient struct {
	apiKey  string
	baseURL string
	fetcher *resilience.Fetcher
}

// NewClient creates an FMP client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://financialmodelingprep.com",
		fetcher: resilience.NewFetcher(nil, resilience.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fmp: create request")
	}

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "fmp: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fmp: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.HTTPError{URL: reqURL, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func (c *httpClient) movers(ctx context.Context, path string) ([]Mover, error) {
	body, err := c.get(ctx, path, url.Values{})
	if err != nil {
		return nil, err
	}

	// The feed is a bare JSON array; anything else (error objects, HTML)
	// is a shape violation the scanner degrades to an empty side.
	var movers []Mover
	if err := json.Unmarshal(body, &movers); err != nil {
		return nil, &resilience.DataShapeError{Provider: "fmp", Detail: "expected array at " + path}
	}
	return movers, nil
}

func (c *httpClient) BiggestGainers(ctx context.Context) ([]Mover, error) {
	return c.movers(ctx, "/stable/biggest-gainers")
}

func (c *httpClient) BiggestLosers(ctx context.Context) ([]Mover, error) {
	return c.movers(ctx, "/stable/biggest-losers")
}

func (c *httpClient) SharesFloat(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "/stable/shares-float", params)
	if err != nil {
		return 0, err
	}

	var records []struct {
		Symbol            string  `json:"symbol"`
		OutstandingShares float64 `json:"outstandingShares"`
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return 0, &resilience.DataShapeError{Provider: "fmp", Detail: "expected array at /stable/shares-float"}
	}
	if len(records) == 0 || records[0].OutstandingShares <= 0 {
		return 0, &resilience.DataShapeError{Provider: "fmp", Detail: "no shares data for " + symbol}
	}
	return records[0].OutstandingShares, nil
}
