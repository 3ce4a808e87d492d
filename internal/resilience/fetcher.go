package resilience

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Config controls retry behavior for rate-limited calls.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Default: 3.
	MaxRetries int

	// BaseBackoff seeds the exponential backoff; the delay doubles after
	// each retry (base, 2*base, 4*base, ...). Default: 500ms.
	BaseBackoff time.Duration
}

// DefaultConfig returns the retry configuration used for provider calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BaseBackoff: 500 * time.Millisecond,
	}
}

// Fetcher wraps an *http.Client with bounded exponential-backoff retries on
// HTTP 429. Transport errors and every other status are returned to the
// caller untouched on the first attempt; only rate limiting is retried.
type Fetcher struct {
	client *http.Client
	cfg    Config

	// sleep is swapped out in tests to observe computed delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher. A nil client falls back to a 30s-timeout
// default.
func NewFetcher(client *http.Client, cfg Config) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	return &Fetcher{
		client: client,
		cfg:    cfg,
		sleep:  sleepCtx,
	}
}

// Do executes the request. On HTTP 429 it backs off and retries up to
// MaxRetries times, then returns a RateLimitError. Responses with any other
// status are returned unchanged; the caller owns the body.
func (f *Fetcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	attempts := f.cfg.MaxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, eris.Wrap(err, "fetch")
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt == attempts-1 {
			break
		}

		delay := f.cfg.BaseBackoff << attempt
		zap.L().Warn("rate limited, backing off",
			zap.String("url", req.URL.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &RateLimitError{URL: req.URL.String(), Attempts: attempts}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
