package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/morningdispatch/marketintel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "marketintel",
	Short: "Market intelligence aggregation engine",
	Long:  "Collects tracked market indicators, scans gainers and losers, scores a spotlight candidate, and resolves its press coverage into a single brief.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
