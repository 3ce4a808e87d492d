// Package polygon provides a client for the Polygon reference news API,
// used to fetch recent press coverage for a ticker.
package polygon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/morningdispatch/marketintel/internal/resilience"
)

// Publisher identifies the outlet behind a news item.
type Publisher struct {
	Name        string `json:"name"`
	HomepageURL string `json:"homepage_url"`
	LogoURL     string `json:"logo_url"`
	FaviconURL  string `json:"favicon_url"`
}

// NewsItem is a single article reference returned by the news search.
type NewsItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Publisher    Publisher `json:"publisher"`
	PublishedUTC time.Time `json:"published_utc"`
	ArticleURL   string    `json:"article_url"`
	ImageURL     string    `json:"image_url"`
	Description  string    `json:"description"`
	Tickers      []string  `json:"tickers"`
	Keywords     []string  `json:"keywords"`
}

// Client defines the Polygon operations.
type Client interface {
	// TickerNews fetches the most recent news items for a ticker,
	// newest first, capped at limit.
	TickerNews(ctx context.Context, ticker string, limit int) ([]NewsItem, error)
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

// NewClient creates a Polygon client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.polygon.io",
		fetcher: resilience.NewFetcher(nil, resilience.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) TickerNews(ctx context.Context, ticker string, limit int) ([]NewsItem, error) {
	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("order", "desc")
	params.Set("sort", "published_utc")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("apiKey", c.apiKey)

	reqURL := c.baseURL + "/v2/reference/news?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "polygon: create request")
	}

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "polygon: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "polygon: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.HTTPError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	var payload struct {
		Results []NewsItem `json:"results"`
		Status  string     `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &resilience.DataShapeError{Provider: "polygon", Detail: "malformed news response"}
	}
	return payload.Results, nil
}
