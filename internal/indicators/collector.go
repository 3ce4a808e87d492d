// Package indicators reduces provider time series to one-day delta records
// for the fixed set of tracked market series.
package indicators

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/morningdispatch/marketintel/internal/model"
	"github.com/morningdispatch/marketintel/pkg/alphavantage"
)

// SeriesSource provides the time series the collector reduces. Satisfied by
// alphavantage.Client.
type SeriesSource interface {
	DailySeries(ctx context.Context, symbol string) ([]alphavantage.Point, error)
	CryptoDaily(ctx context.Context, symbol, market string) ([]alphavantage.Point, error)
	Commodity(ctx context.Context, function string) ([]alphavantage.Point, error)
	TreasuryYield(ctx context.Context, maturity string) ([]alphavantage.Point, error)
}

// Collector fetches every tracked series in parallel and computes an
// IndicatorPoint from the two most recent observations of each. A failed or
// too-short series drops only that indicator.
type Collector struct {
	source SeriesSource
}

// NewCollector creates a Collector backed by the given series source.
func NewCollector(source SeriesSource) *Collector {
	return &Collector{source: source}
}

type seriesSpec struct {
	symbol string
	name   string
	fetch  func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error)
}

// trackedSeries is the fixed indicator set: four equity/commodity ETF
// proxies, one crypto pair, one commodity series, one yield series.
var trackedSeries = []seriesSpec{
	{"SPY", "S&P 500", func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error) {
		return s.DailySeries(ctx, "SPY")
	}},
	{"DIA", "Dow Jones", func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error) {
		return s.DailySeries(ctx, "DIA")
	}},
	{"QQQ", "NASDAQ", func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error) {
		return s.DailySeries(ctx, "QQQ")
	}},
	{"GLD", "Gold", func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error) {
		return s.DailySeries(ctx, "GLD")
	}},
	{"BTC-USD", "Bitcoin", func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error) {
		return s.CryptoDaily(ctx, "BTC", "USD")
	}},
	{"CL=F", "Crude Oil (WTI)", func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error) {
		return s.Commodity(ctx, "WTI")
	}},
	{"^TNX", "10-Year Treasury Yield", func(ctx context.Context, s SeriesSource) ([]alphavantage.Point, error) {
		return s.TreasuryYield(ctx, "10year")
	}},
}

// Collect fetches all tracked series with full parallelism and returns the
// indicators that succeeded, in tracked order. It never fails as a whole.
func (c *Collector) Collect(ctx context.Context) []model.IndicatorPoint {
	results := make([]*model.IndicatorPoint, len(trackedSeries))

	g, gCtx := errgroup.WithContext(ctx)
	for i, spec := range trackedSeries {
		i, spec := i, spec
		g.Go(func() error {
			points, err := spec.fetch(gCtx, c.source)
			if err != nil {
				zap.L().Warn("indicators: series fetch failed, dropping",
					zap.String("symbol", spec.symbol),
					zap.Error(err),
				)
				return nil
			}
			point, ok := reduce(spec, points)
			if !ok {
				zap.L().Warn("indicators: insufficient series data, dropping",
					zap.String("symbol", spec.symbol),
					zap.Int("points", len(points)),
				)
				return nil
			}
			results[i] = &point
			return nil
		})
	}
	_ = g.Wait()

	collected := make([]model.IndicatorPoint, 0, len(results))
	for _, r := range results {
		if r != nil {
			collected = append(collected, *r)
		}
	}

	zap.L().Info("indicators: collection complete",
		zap.Int("requested", len(trackedSeries)),
		zap.Int("collected", len(collected)),
	)
	return collected
}

// reduce sorts observations newest-first and derives the one-day delta from
// the two most recent points.
func reduce(spec seriesSpec, points []alphavantage.Point) (model.IndicatorPoint, bool) {
	if len(points) < 2 {
		return model.IndicatorPoint{}, false
	}

	sorted := make([]alphavantage.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	latest, previous := sorted[0], sorted[1]
	if previous.Close == 0 {
		return model.IndicatorPoint{}, false
	}

	change := latest.Close - previous.Close
	return model.IndicatorPoint{
		Symbol:        spec.symbol,
		Name:          spec.name,
		Price:         latest.Close,
		Change:        change,
		ChangePercent: change / previous.Close * 100,
	}, true
}
