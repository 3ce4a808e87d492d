// Package alphavantage provides a client for the Alpha Vantage time-series
// APIs used by the indicator collector: daily equity/ETF series, daily
// digital-currency series, commodity series, and treasury yields.
package alphavantage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/morningdispatch/marketintel/internal/resilience"
)

// Point is a single dated closing value from a series. Date uses the
// provider's YYYY-MM-DD form, so lexical order is chronological order.
type Point struct {
	Date  string
	Close float64
}

// Client defines the Alpha Vantage operations.
type Client interface {
	// DailySeries fetches the TIME_SERIES_DAILY closes for a symbol.
	DailySeries(ctx context.Context, symbol string) ([]Point, error)
	// CryptoDaily fetches DIGITAL_CURRENCY_DAILY closes for a pair.
	CryptoDaily(ctx context.Context, symbol, market string) ([]Point, error)
	// Commodity fetches a commodity series (e.g. function "WTI").
	Commodity(ctx context.Context, function string) ([]Point, error)
	// TreasuryYield fetches the TREASURY_YIELD series for a maturity.
	TreasuryYield(ctx context.Context, maturity string) ([]Point, error)
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

// NewClient creates an Alpha Vantage client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://www.alphavantage.co",
		fetcher: resilience.NewFetcher(nil, resilience.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) query(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: create request")
	}

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.HTTPError{URL: reqURL, StatusCode: resp.StatusCode}
	}
	return body, nil
}

// apiNotice covers the fields Alpha Vantage uses to deliver errors and
// throttle notices inside HTTP 200 responses.
type apiNotice struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (n apiNotice) reject() (string, bool) {
	switch {
	case n.ErrorMessage != "":
		return n.ErrorMessage, true
	case n.Note != "":
		return n.Note, true
	case n.Information != "":
		return n.Information, true
	}
	return "", false
}

func (c *httpClient) DailySeries(ctx context.Context, symbol string) ([]Point, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)

	body, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseSeriesMap(body, "Time Series (Daily)")
}

func (c *httpClient) CryptoDaily(ctx context.Context, symbol, market string) ([]Point, error) {
	params := url.Values{}
	params.Set("function", "DIGITAL_CURRENCY_DAILY")
	params.Set("symbol", symbol)
	params.Set("market", market)

	body, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseSeriesMap(body, "Time Series (Digital Currency Daily)")
}

func (c *httpClient) Commodity(ctx context.Context, function string) ([]Point, error) {
	params := url.Values{}
	params.Set("function", function)
	params.Set("interval", "daily")

	body, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseValueList(body)
}

func (c *httpClient) TreasuryYield(ctx context.Context, maturity string) ([]Point, error) {
	params := url.Values{}
	params.Set("function", "TREASURY_YIELD")
	params.Set("interval", "daily")
	params.Set("maturity", maturity)

	body, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseValueList(body)
}

// parseSeriesMap decodes the map-keyed time series shape, e.g.
// {"Time Series (Daily)": {"2025-08-29": {"4. close": "621.72"}, ...}}.
func parseSeriesMap(body []byte, seriesKey string) ([]Point, error) {
	var notice apiNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: "not a JSON object"}
	}
	if msg, bad := notice.reject(); bad {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: msg}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: "not a JSON object"}
	}
	raw, ok := payload[seriesKey]
	if !ok {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: "missing series " + strconv.Quote(seriesKey)}
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: "malformed series " + strconv.Quote(seriesKey)}
	}

	points := make([]Point, 0, len(series))
	for date, fields := range series {
		closeStr, ok := fields["4. close"]
		if !ok {
			continue
		}
		closeVal, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			continue
		}
		points = append(points, Point{Date: date, Close: closeVal})
	}
	return points, nil
}

// parseValueList decodes the list shape used by commodity and treasury
// endpoints: {"data": [{"date": "2025-08-29", "value": "64.01"}, ...]}.
// Placeholder values ("." marks missing observations) are skipped.
func parseValueList(body []byte) ([]Point, error) {
	var notice apiNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: "not a JSON object"}
	}
	if msg, bad := notice.reject(); bad {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: msg}
	}

	var payload struct {
		Data []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: "malformed data list"}
	}
	if payload.Data == nil {
		return nil, &resilience.DataShapeError{Provider: "alphavantage", Detail: "missing data list"}
	}

	points := make([]Point, 0, len(payload.Data))
	for _, d := range payload.Data {
		v, err := strconv.ParseFloat(d.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, Point{Date: d.Date, Close: v})
	}
	return points, nil
}
