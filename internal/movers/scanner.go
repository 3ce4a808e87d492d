// Package movers builds the spotlight candidate pool: it scans the day's
// biggest gainers and losers into one merged list and enriches each entry
// with a derived market capitalization.
package movers

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/morningdispatch/marketintel/internal/model"
	"github.com/morningdispatch/marketintel/pkg/fmp"
)

// MoverSource provides the gainers/losers feeds. Satisfied by fmp.Client.
type MoverSource interface {
	BiggestGainers(ctx context.Context) ([]fmp.Mover, error)
	BiggestLosers(ctx context.Context) ([]fmp.Mover, error)
}

// Scanner merges the top movers from both feeds into one candidate pool.
type Scanner struct {
	source  MoverSource
	perSide int
}

// NewScanner creates a Scanner taking perSide movers from each feed.
func NewScanner(source MoverSource, perSide int) *Scanner {
	if perSide <= 0 {
		perSide = 6
	}
	return &Scanner{source: source, perSide: perSide}
}

// Scan fetches both feeds, truncates each to perSide entries, and returns
// the merged pool sorted descending by absolute percent change. A failed or
// malformed feed degrades to an empty side; the scan itself never fails.
func (s *Scanner) Scan(ctx context.Context) []model.MoverCandidate {
	gainers := s.fetchSide(ctx, "gainers", s.source.BiggestGainers)
	losers := s.fetchSide(ctx, "losers", s.source.BiggestLosers)

	pool := make([]model.MoverCandidate, 0, len(gainers)+len(losers))
	pool = append(pool, gainers...)
	pool = append(pool, losers...)

	sort.SliceStable(pool, func(i, j int) bool {
		return math.Abs(pool[i].ChangePercent) > math.Abs(pool[j].ChangePercent)
	})

	zap.L().Info("movers: scan complete",
		zap.Int("gainers", len(gainers)),
		zap.Int("losers", len(losers)),
	)
	return pool
}

func (s *Scanner) fetchSide(ctx context.Context, side string, fetch func(context.Context) ([]fmp.Mover, error)) []model.MoverCandidate {
	movers, err := fetch(ctx)
	if err != nil {
		zap.L().Warn("movers: feed degraded to empty",
			zap.String("side", side),
			zap.Error(err),
		)
		return nil
	}
	if len(movers) > s.perSide {
		movers = movers[:s.perSide]
	}

	candidates := make([]model.MoverCandidate, 0, len(movers))
	for _, m := range movers {
		if math.IsNaN(m.ChangesPercentage) || math.IsInf(m.ChangesPercentage, 0) {
			continue
		}
		candidates = append(candidates, model.MoverCandidate{
			Symbol:        m.Symbol,
			Name:          m.Name,
			Price:         m.Price,
			ChangePercent: m.ChangesPercentage,
			Exchange:      m.Exchange,
		})
	}
	return candidates
}
