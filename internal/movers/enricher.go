package movers

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/morningdispatch/marketintel/internal/model"
)

// SharesSource provides outstanding share counts. Satisfied by fmp.Client.
type SharesSource interface {
	SharesFloat(ctx context.Context, symbol string) (float64, error)
}

// Enricher derives market capitalization for each candidate via sequential
// shares-outstanding lookups. The walk is deliberately serialized with a
// pacing limiter between lookups: the downstream provider rate-limits per
// key, and parallel lookups would only turn into 429 retries.
type Enricher struct {
	source  SharesSource
	limiter *rate.Limiter
}

// NewEnricher creates an Enricher that spaces lookups at least delay apart.
func NewEnricher(source SharesSource, delay time.Duration) *Enricher {
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &Enricher{
		source:  source,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Enrich walks the pool in order, setting OutstandingShares, MarketCap, and
// AbsChange on each candidate. A failed lookup keeps the candidate with a
// zero market cap so one bad symbol never affects its siblings; zero-cap
// entries are filtered out at scoring time, not here.
func (e *Enricher) Enrich(ctx context.Context, pool []model.MoverCandidate) []model.MoverCandidate {
	enriched := make([]model.MoverCandidate, 0, len(pool))

	for _, candidate := range pool {
		if err := e.limiter.Wait(ctx); err != nil {
			// Context cancelled: keep the remainder un-enriched.
			candidate.AbsChange = math.Abs(candidate.ChangePercent)
			enriched = append(enriched, candidate)
			continue
		}

		shares, err := e.source.SharesFloat(ctx, candidate.Symbol)
		if err != nil {
			zap.L().Debug("movers: shares lookup failed, keeping zero-cap candidate",
				zap.String("symbol", candidate.Symbol),
				zap.Error(err),
			)
			shares = 0
		}

		candidate.OutstandingShares = shares
		if shares > 0 && candidate.Price > 0 {
			candidate.MarketCap = shares * candidate.Price
		}
		candidate.AbsChange = math.Abs(candidate.ChangePercent)
		enriched = append(enriched, candidate)
	}

	return enriched
}
