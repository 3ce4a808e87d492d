package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), DefaultConfig())
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := f.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_RateLimitExhaustsRetriesWithDoublingDelays(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	base := 10 * time.Millisecond
	f := NewFetcher(srv.Client(), Config{MaxRetries: 3, BaseBackoff: base})

	var delays []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = f.Do(context.Background(), req)
	require.Error(t, err)

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 4, rle.Attempts)

	// Initial attempt plus exactly 3 retries.
	assert.EqualValues(t, 4, requests.Load())
	assert.Equal(t, []time.Duration{base, 2 * base, 4 * base}, delays)
}

func TestDo_StopsRetryingOnRecovery(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), Config{MaxRetries: 3, BaseBackoff: time.Millisecond})
	f.sleep = func(context.Context, time.Duration) error { return nil }

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := f.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, requests.Load())
}

func TestDo_ServerErrorNotRetried(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), DefaultConfig())
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := f.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// 5xx is handed back to the caller untouched, no retry.
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.EqualValues(t, 1, requests.Load())
}

func TestDo_TransportErrorNotRetried(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	f := NewFetcher(&http.Client{Timeout: time.Second}, DefaultConfig())
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = f.Do(context.Background(), req)
	require.Error(t, err)
	assert.False(t, IsRateLimit(err))
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(srv.Client(), Config{MaxRetries: 3, BaseBackoff: time.Hour})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = f.Do(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
}

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	rle := &RateLimitError{URL: "https://api.example.com", Attempts: 4}
	assert.True(t, IsRateLimit(rle))
	assert.Contains(t, rle.Error(), "4 attempts")

	dse := &DataShapeError{Provider: "fmp", Detail: "expected array"}
	assert.True(t, IsDataShape(dse))
	assert.False(t, IsDataShape(rle))
	assert.Contains(t, dse.Error(), "fmp")

	he := &HTTPError{URL: "https://api.example.com", StatusCode: 503}
	assert.Contains(t, he.Error(), "503")
	assert.False(t, IsRateLimit(he))
}
