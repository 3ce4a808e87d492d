// Package spotlight selects the security to feature: it ranks the enriched
// mover pool by a weighted newsworthiness score and resolves which ranked
// candidate has real, recent press coverage.
package spotlight

import (
	"sort"

	"go.uber.org/zap"

	"github.com/morningdispatch/marketintel/internal/model"
)

// Ranking is the scorer output: the full ranked list, the leading candidates
// handed to coverage resolution, and the pre-score biggest raw mover, which
// is informational telemetry only and never influences selection.
type Ranking struct {
	Scored        []model.ScoredCandidate
	TopCandidates []model.ScoredCandidate
	BiggestMover  *model.MoverCandidate
}

// Scorer computes the weighted blend of normalized change magnitude and
// market capitalization. The default 60/40 split favors newsworthy moves
// while still preferring companies large enough to matter.
type Scorer struct {
	changeWeight    float64
	marketCapWeight float64
	topN            int
}

// ScorerOption customizes a Scorer.
type ScorerOption func(*Scorer)

// WithTopCandidates overrides how many leading candidates the ranking keeps.
func WithTopCandidates(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.topN = n
		}
	}
}

// NewScorer creates a Scorer with the standard 0.6/0.4 weights and a top-3
// candidate list.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{changeWeight: 0.6, marketCapWeight: 0.4, topN: 3}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank filters the pool to candidates with a known market cap, min-max
// normalizes both criteria over that valid set, and sorts descending by
// combined score. Ties on combined score break toward the higher raw
// absolute change, then original pool order. An all-invalid pool yields an
// empty ranking.
func (s *Scorer) Rank(pool []model.MoverCandidate) Ranking {
	var ranking Ranking

	if biggest := biggestRawMover(pool); biggest != nil {
		ranking.BiggestMover = biggest
		zap.L().Info("spotlight: biggest raw mover",
			zap.String("symbol", biggest.Symbol),
			zap.Float64("abs_change", biggest.AbsChange),
		)
	}

	valid := make([]model.MoverCandidate, 0, len(pool))
	for _, c := range pool {
		if c.MarketCap > 0 {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		zap.L().Warn("spotlight: no candidates with valid market cap")
		return ranking
	}

	minChange, maxChange := bounds(valid, func(c model.MoverCandidate) float64 { return c.AbsChange })
	minCap, maxCap := bounds(valid, func(c model.MoverCandidate) float64 { return c.MarketCap })

	scored := make([]model.ScoredCandidate, 0, len(valid))
	for _, c := range valid {
		sc := model.ScoredCandidate{
			MoverCandidate: c,
			ChangeScore:    normalize(c.AbsChange, minChange, maxChange),
			MarketCapScore: normalize(c.MarketCap, minCap, maxCap),
		}
		sc.CombinedScore = s.changeWeight*sc.ChangeScore + s.marketCapWeight*sc.MarketCapScore
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CombinedScore != scored[j].CombinedScore {
			return scored[i].CombinedScore > scored[j].CombinedScore
		}
		return scored[i].AbsChange > scored[j].AbsChange
	})

	ranking.Scored = scored
	top := s.topN
	if top > len(scored) {
		top = len(scored)
	}
	ranking.TopCandidates = scored[:top]

	return ranking
}

// normalize maps v into [0, 1] over [min, max]. A degenerate range scores
// every candidate 1 rather than dividing by zero.
func normalize(v, min, max float64) float64 {
	if max <= min {
		return 1
	}
	return (v - min) / (max - min)
}

func bounds(pool []model.MoverCandidate, key func(model.MoverCandidate) float64) (min, max float64) {
	min, max = key(pool[0]), key(pool[0])
	for _, c := range pool[1:] {
		v := key(c)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func biggestRawMover(pool []model.MoverCandidate) *model.MoverCandidate {
	var biggest *model.MoverCandidate
	for i := range pool {
		if biggest == nil || pool[i].AbsChange > biggest.AbsChange {
			biggest = &pool[i]
		}
	}
	if biggest == nil {
		return nil
	}
	b := *biggest
	return &b
}
