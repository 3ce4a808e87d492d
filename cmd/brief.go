package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/morningdispatch/marketintel/internal/aggregate"
	"github.com/morningdispatch/marketintel/internal/indicators"
	"github.com/morningdispatch/marketintel/internal/movers"
	"github.com/morningdispatch/marketintel/internal/resilience"
	"github.com/morningdispatch/marketintel/internal/scrape"
	"github.com/morningdispatch/marketintel/internal/spotlight"
	"github.com/morningdispatch/marketintel/pkg/alphavantage"
	"github.com/morningdispatch/marketintel/pkg/fmp"
	"github.com/morningdispatch/marketintel/pkg/polygon"
)

var briefPretty bool

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Generate a full market brief",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		fetcher := resilience.NewFetcher(http.DefaultClient, resilience.Config{
			MaxRetries:  cfg.Retry.MaxRetries,
			BaseBackoff: cfg.Retry.BaseBackoff(),
		})

		// Provider clients
		avClient := alphavantage.NewClient(cfg.AlphaVantage.Key,
			alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
			alphavantage.WithFetcher(fetcher))
		fmpClient := fmp.NewClient(cfg.FMP.Key,
			fmp.WithBaseURL(cfg.FMP.BaseURL),
			fmp.WithFetcher(fetcher))
		polygonClient := polygon.NewClient(cfg.Polygon.Key,
			polygon.WithBaseURL(cfg.Polygon.BaseURL),
			polygon.WithFetcher(fetcher))

		// Pipeline stages
		collector := indicators.NewCollector(avClient)
		scanner := movers.NewScanner(fmpClient, cfg.Engine.MoversPerSide)
		enricher := movers.NewEnricher(fmpClient, cfg.Engine.EnrichDelay())
		scorer := spotlight.NewScorer(spotlight.WithTopCandidates(cfg.Engine.TopCandidates))
		resolver := spotlight.NewResolver(
			polygonClient,
			scrape.NewScraper(),
			scrape.NewQualityValidator(),
			spotlight.WithMaxArticles(cfg.Engine.MaxArticles),
			spotlight.WithRecencyMonths(cfg.Engine.RecencyMonths),
			spotlight.WithScrapeDelay(cfg.Engine.ScrapeDelay()),
		)

		brief := aggregate.New(collector, scanner, enricher, scorer, resolver).Run(ctx)
		if brief == nil {
			return eris.New("brief: pipeline produced no result")
		}

		zap.L().Info("brief generated",
			zap.Int("indicators", len(brief.Indicators)),
			zap.Bool("spotlight", brief.Spotlight.Candidate != nil),
		)

		enc := json.NewEncoder(os.Stdout)
		if briefPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(brief)
	},
}

func init() {
	briefCmd.Flags().BoolVar(&briefPretty, "pretty", false, "indent the JSON output")
	rootCmd.AddCommand(briefCmd)
}
