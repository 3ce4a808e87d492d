// Package model defines the data types that flow through the market
// intelligence pipeline. All entities are created fresh per run and discarded
// after the payload is handed off; nothing here persists.
package model

import "time"

// IndicatorPoint is a one-day delta record for a single tracked series
// (index ETF proxy, crypto pair, commodity, or yield).
type IndicatorPoint struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// MoverCandidate is a security from the gainers/losers scan, enriched in
// place with valuation data. MarketCap and OutstandingShares stay zero when
// the shares lookup fails; such candidates are excluded at scoring time,
// never dropped during enrichment.
type MoverCandidate struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ChangePercent     float64 `json:"change_percent"`
	Exchange          string  `json:"exchange,omitempty"`
	OutstandingShares float64 `json:"outstanding_shares"`
	MarketCap         float64 `json:"market_cap"`
	AbsChange         float64 `json:"abs_change"`
}

// ScoredCandidate is a MoverCandidate with normalized component scores and
// the weighted blend used for ranking. Component scores lie in [0, 1].
type ScoredCandidate struct {
	MoverCandidate
	ChangeScore    float64 `json:"change_score"`
	MarketCapScore float64 `json:"market_cap_score"`
	CombinedScore  float64 `json:"combined_score"`
}

// CoverageArticle is one piece of recent, scraped press coverage supporting
// a spotlight candidate.
type CoverageArticle struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Publisher   string    `json:"publisher"`
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Body        string    `json:"body"`
}

// SpotlightResult is the outcome of spotlight selection. Candidate is nil
// when no mover could be ranked; Coverage may be empty when no ranked
// candidate produced qualifying articles.
type SpotlightResult struct {
	Candidate *ScoredCandidate  `json:"candidate"`
	Coverage  []CoverageArticle `json:"coverage"`
}

// BriefData is the assembled engine output handed to content generation.
type BriefData struct {
	Indicators  []IndicatorPoint `json:"indicators"`
	Spotlight   SpotlightResult  `json:"spotlight"`
	GeneratedAt time.Time        `json:"generated_at"`
}
