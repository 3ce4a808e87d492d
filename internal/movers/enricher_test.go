package movers

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morningdispatch/marketintel/internal/model"
)

type fakeSharesSource struct {
	shares map[string]float64
	calls  []string
}

func (f *fakeSharesSource) SharesFloat(_ context.Context, symbol string) (float64, error) {
	f.calls = append(f.calls, symbol)
	s, ok := f.shares[symbol]
	if !ok {
		return 0, eris.Errorf("no shares data for %s", symbol)
	}
	return s, nil
}

func TestEnrich_DerivesMarketCap(t *testing.T) {
	t.Parallel()

	src := &fakeSharesSource{shares: map[string]float64{"AAA": 1_000_000}}
	e := NewEnricher(src, time.Millisecond)

	pool := []model.MoverCandidate{{Symbol: "AAA", Price: 25, ChangePercent: -8.5}}
	got := e.Enrich(context.Background(), pool)

	require.Len(t, got, 1)
	assert.InDelta(t, 1_000_000.0, got[0].OutstandingShares, 0.1)
	assert.InDelta(t, 25_000_000.0, got[0].MarketCap, 0.1)
	assert.InDelta(t, 8.5, got[0].AbsChange, 0.001)
}

func TestEnrich_FailedLookupKeepsZeroCapCandidate(t *testing.T) {
	t.Parallel()

	src := &fakeSharesSource{shares: map[string]float64{"AAA": 2_000_000}}
	e := NewEnricher(src, time.Millisecond)

	pool := []model.MoverCandidate{
		{Symbol: "AAA", Price: 10, ChangePercent: 12},
		{Symbol: "GONE", Price: 5, ChangePercent: 40},
		{Symbol: "AAA2"}, // also missing, zero price
	}
	got := e.Enrich(context.Background(), pool)

	// One bad symbol never shrinks the pool.
	require.Len(t, got, 3)
	assert.Greater(t, got[0].MarketCap, 0.0)
	assert.Zero(t, got[1].MarketCap)
	assert.Zero(t, got[1].OutstandingShares)
	assert.InDelta(t, 40.0, got[1].AbsChange, 0.001)
}

func TestEnrich_SequentialInPoolOrder(t *testing.T) {
	t.Parallel()

	src := &fakeSharesSource{shares: map[string]float64{}}
	e := NewEnricher(src, time.Millisecond)

	pool := []model.MoverCandidate{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}}
	_ = e.Enrich(context.Background(), pool)

	assert.Equal(t, []string{"A", "B", "C"}, src.calls)
}

func TestEnrich_EmptyPool(t *testing.T) {
	t.Parallel()

	e := NewEnricher(&fakeSharesSource{}, time.Millisecond)
	got := e.Enrich(context.Background(), nil)
	assert.Empty(t, got)
}
