package spotlight

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/morningdispatch/marketintel/internal/model"
	"github.com/morningdispatch/marketintel/pkg/polygon"
)

// NewsSource provides ticker-scoped news search. Satisfied by polygon.Client.
type NewsSource interface {
	TickerNews(ctx context.Context, ticker string, limit int) ([]polygon.NewsItem, error)
}

// ArticleScraper extracts body text from an article URL. An empty body with
// a nil error means the page was reachable but yielded nothing usable.
type ArticleScraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// BodyValidator judges scraped text quality. A non-nil error rejects the
// body.
type BodyValidator interface {
	Validate(text string) error
}

// Resolver walks the ranked candidates strictly in order, looking for the
// first one with at least one recent, quality-validated article. Candidate
// order is a hard guarantee: a later candidate must never win because its
// network calls happened to finish first, so the walk is sequential by
// construction.
type Resolver struct {
	news      NewsSource
	scraper   ArticleScraper
	validator BodyValidator
	limiter   *rate.Limiter

	maxArticles   int
	recencyMonths int
	now           func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxArticles caps how many news items are requested per candidate.
func WithMaxArticles(n int) ResolverOption {
	return func(r *Resolver) { r.maxArticles = n }
}

// WithRecencyMonths sets the trailing window an article must fall in.
func WithRecencyMonths(n int) ResolverOption {
	return func(r *Resolver) { r.recencyMonths = n }
}

// WithScrapeDelay sets the pacing between scrape calls.
func WithScrapeDelay(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithNow fixes the clock, for tests.
func WithNow(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a Resolver with the standard windows: 5 news items per
// candidate, a 2-month recency window, and 1s between scrapes.
func NewResolver(news NewsSource, scraper ArticleScraper, validator BodyValidator, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		news:          news,
		scraper:       scraper,
		validator:     validator,
		limiter:       rate.NewLimiter(rate.Every(time.Second), 1),
		maxArticles:   5,
		recencyMonths: 2,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the spotlight selection for a ranking. The first ranked
// candidate with qualifying coverage wins and later candidates are never
// inspected. When every candidate comes up empty, the top-ranked candidate
// is still reported, with no coverage. An empty ranking yields a nil
// candidate.
func (r *Resolver) Resolve(ctx context.Context, ranking Ranking) model.SpotlightResult {
	if len(ranking.TopCandidates) == 0 {
		zap.L().Warn("spotlight: no candidates to resolve coverage for")
		return model.SpotlightResult{}
	}

	cutoff := r.now().AddDate(0, -r.recencyMonths, 0)

	for i := range ranking.TopCandidates {
		candidate := ranking.TopCandidates[i]
		articles := r.coverageFor(ctx, candidate, cutoff)
		if len(articles) > 0 {
			zap.L().Info("spotlight: candidate selected",
				zap.String("symbol", candidate.Symbol),
				zap.Int("rank", i+1),
				zap.Int("articles", len(articles)),
			)
			return model.SpotlightResult{Candidate: &candidate, Coverage: articles}
		}
		zap.L().Info("spotlight: no qualifying coverage, trying next candidate",
			zap.String("symbol", candidate.Symbol),
			zap.Int("rank", i+1),
		)
	}

	// Nothing qualified: report the statistically best candidate anyway.
	fallback := ranking.TopCandidates[0]
	zap.L().Warn("spotlight: falling back to top candidate without coverage",
		zap.String("symbol", fallback.Symbol),
	)
	return model.SpotlightResult{Candidate: &fallback, Coverage: []model.CoverageArticle{}}
}

// coverageFor fetches and scrapes recent articles for one candidate. Any
// failure is contained here and reads as "no qualifying articles".
func (r *Resolver) coverageFor(ctx context.Context, candidate model.ScoredCandidate, cutoff time.Time) []model.CoverageArticle {
	items, err := r.news.TickerNews(ctx, candidate.Symbol, r.maxArticles)
	if err != nil {
		zap.L().Warn("spotlight: news fetch failed for candidate",
			zap.String("symbol", candidate.Symbol),
			zap.Error(err),
		)
		return nil
	}

	var articles []model.CoverageArticle
	for _, item := range items {
		if item.PublishedUTC.Before(cutoff) {
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return articles
		}

		body, err := r.scraper.Scrape(ctx, item.ArticleURL)
		if err != nil {
			zap.L().Debug("spotlight: scrape failed, skipping article",
				zap.String("url", item.ArticleURL),
				zap.Error(err),
			)
			continue
		}
		if body == "" {
			continue
		}
		if err := r.validator.Validate(body); err != nil {
			zap.L().Debug("spotlight: body failed quality validation, skipping",
				zap.String("url", item.ArticleURL),
				zap.Error(err),
			)
			continue
		}

		articles = append(articles, model.CoverageArticle{
			URL:         item.ArticleURL,
			Title:       item.Title,
			Author:      item.Author,
			Publisher:   item.Publisher.Name,
			ImageURL:    item.ImageURL,
			Description: item.Description,
			PublishedAt: item.PublishedUTC,
			Body:        body,
		})
	}
	return articles
}
