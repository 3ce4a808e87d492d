// Package aggregate assembles a market brief from the indicator and
// spotlight pipelines, running the two branches concurrently.
package aggregate

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/morningdispatch/marketintel/internal/model"
	"github.com/morningdispatch/marketintel/internal/spotlight"
)

// IndicatorCollector yields the tracked market indicator snapshot.
type IndicatorCollector interface {
	Collect(ctx context.Context) []model.IndicatorPoint
}

// MoverScanner yields the merged gainer/loser candidate pool.
type MoverScanner interface {
	Scan(ctx context.Context) []model.MoverCandidate
}

// Enricher attaches shares-outstanding and market-cap data to candidates.
type Enricher interface {
	Enrich(ctx context.Context, pool []model.MoverCandidate) []model.MoverCandidate
}

// Ranker scores an enriched pool and keeps the top candidates.
type Ranker interface {
	Rank(pool []model.MoverCandidate) spotlight.Ranking
}

// CoverageResolver picks the spotlight candidate with usable press coverage.
type CoverageResolver interface {
	Resolve(ctx context.Context, ranking spotlight.Ranking) model.SpotlightResult
}

// Aggregator runs the full brief pipeline. Each stage degrades
// independently, so Run always produces a result.
type Aggregator struct {
	indicators IndicatorCollector
	scanner    MoverScanner
	enricher   Enricher
	ranker     Ranker
	resolver   CoverageResolver
	log        *zap.Logger
}

func New(ind IndicatorCollector, sc MoverScanner, en Enricher, rk Ranker, rs CoverageResolver) *Aggregator {
	return &Aggregator{
		indicators: ind,
		scanner:    sc,
		enricher:   en,
		ranker:     rk,
		resolver:   rs,
		log:        zap.L().Named("aggregate"),
	}
}

// Run executes the indicator branch and the spotlight branch in
// parallel and merges their output. Only Run writes to the returned
// brief; the branches hand their results back through locals.
func (a *Aggregator) Run(ctx context.Context) *model.BriefData {
	start := time.Now()

	var (
		points    []model.IndicatorPoint
		spotlight model.SpotlightResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		points = a.indicators.Collect(gctx)
		return nil
	})
	g.Go(func() error {
		pool := a.scanner.Scan(gctx)
		pool = a.enricher.Enrich(gctx, pool)
		ranking := a.ranker.Rank(pool)
		spotlight = a.resolver.Resolve(gctx, ranking)
		return nil
	})
	_ = g.Wait()

	brief := &model.BriefData{
		Indicators:  points,
		Spotlight:   spotlight,
		GeneratedAt: time.Now().UTC(),
	}

	a.log.Info("brief assembled",
		zap.Int("indicators", len(brief.Indicators)),
		zap.Bool("spotlight", brief.Spotlight.Candidate != nil),
		zap.Int("coverage", len(brief.Spotlight.Coverage)),
		zap.Duration("elapsed", time.Since(start)))
	return brief
}
