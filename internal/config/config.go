package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage" mapstructure:"alphavantage"`
	FMP          FMPConfig          `yaml:"fmp" mapstructure:"fmp"`
	Polygon      PolygonConfig      `yaml:"polygon" mapstructure:"polygon"`
	Engine       EngineConfig       `yaml:"engine" mapstructure:"engine"`
	Retry        RetryConfig        `yaml:"retry" mapstructure:"retry"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// AlphaVantageConfig holds Alpha Vantage API settings.
type AlphaVantageConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FMPConfig holds Financial Modeling Prep API settings.
type FMPConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PolygonConfig holds Polygon.io API settings.
type PolygonConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EngineConfig tunes the aggregation pipeline.
type EngineConfig struct {
	EnrichDelayMs int `yaml:"enrich_delay_ms" mapstructure:"enrich_delay_ms"`
	ScrapeDelayMs int `yaml:"scrape_delay_ms" mapstructure:"scrape_delay_ms"`
	RecencyMonths int `yaml:"recency_months" mapstructure:"recency_months"`
	MaxArticles   int `yaml:"max_articles" mapstructure:"max_articles"`
	TopCandidates int `yaml:"top_candidates" mapstructure:"top_candidates"`
	MoversPerSide int `yaml:"movers_per_side" mapstructure:"movers_per_side"`
}

// EnrichDelay converts the millisecond knob to a duration.
func (c EngineConfig) EnrichDelay() time.Duration {
	return time.Duration(c.EnrichDelayMs) * time.Millisecond
}

// ScrapeDelay converts the millisecond knob to a duration.
func (c EngineConfig) ScrapeDelay() time.Duration {
	return time.Duration(c.ScrapeDelayMs) * time.Millisecond
}

// RetryConfig tunes the rate-limit retry policy.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries" mapstructure:"max_retries"`
	BaseBackoffMs int `yaml:"base_backoff_ms" mapstructure:"base_backoff_ms"`
}

// BaseBackoff converts the millisecond knob to a duration.
func (c RetryConfig) BaseBackoff() time.Duration {
	return time.Duration(c.BaseBackoffMs) * time.Millisecond
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("fmp.base_url", "https://financialmodelingprep.com")
	v.SetDefault("polygon.base_url", "https://api.polygon.io")
	v.SetDefault("engine.enrich_delay_ms", 200)
	v.SetDefault("engine.scrape_delay_ms", 1000)
	v.SetDefault("engine.recency_months", 2)
	v.SetDefault("engine.max_articles", 5)
	v.SetDefault("engine.top_candidates", 3)
	v.SetDefault("engine.movers_per_side", 6)
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_backoff_ms", 500)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that every provider credential is present. The
// pipeline degrades per stage at runtime, but a missing key means a
// whole branch can never succeed, so it is rejected up front.
func (c *Config) Validate() error {
	var missing []string
	if c.AlphaVantage.Key == "" {
		missing = append(missing, "alphavantage.key")
	}
	if c.FMP.Key == "" {
		missing = append(missing, "fmp.key")
	}
	if c.Polygon.Key == "" {
		missing = append(missing, "polygon.key")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
