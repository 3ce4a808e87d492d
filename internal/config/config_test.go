package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://www.alphavantage.co", cfg.AlphaVantage.BaseURL)
	assert.Equal(t, "https://financialmodelingprep.com", cfg.FMP.BaseURL)
	assert.Equal(t, "https://api.polygon.io", cfg.Polygon.BaseURL)
	assert.Equal(t, 200, cfg.Engine.EnrichDelayMs)
	assert.Equal(t, 1000, cfg.Engine.ScrapeDelayMs)
	assert.Equal(t, 2, cfg.Engine.RecencyMonths)
	assert.Equal(t, 5, cfg.Engine.MaxArticles)
	assert.Equal(t, 3, cfg.Engine.TopCandidates)
	assert.Equal(t, 6, cfg.Engine.MoversPerSide)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 500, cfg.Retry.BaseBackoffMs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
alphavantage:
  key: av-test-key
log:
  level: debug
  format: console
engine:
  movers_per_side: 10
retry:
  base_backoff_ms: 250
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "av-test-key", cfg.AlphaVantage.Key)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Engine.MoversPerSide)
	assert.Equal(t, 250, cfg.Retry.BaseBackoffMs)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Engine.MaxArticles)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
fmp:
  key: file-key
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("MARKETINTEL_LOG_LEVEL", "warn")
	t.Setenv("MARKETINTEL_FMP_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "env-key", cfg.FMP.Key)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("MARKETINTEL_ENGINE_SCRAPE_DELAY_MS", "2000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Engine.ScrapeDelayMs)
}

func TestDurationKnobs(t *testing.T) {
	eng := EngineConfig{EnrichDelayMs: 200, ScrapeDelayMs: 1000}
	assert.Equal(t, 200*time.Millisecond, eng.EnrichDelay())
	assert.Equal(t, time.Second, eng.ScrapeDelay())

	retry := RetryConfig{BaseBackoffMs: 500}
	assert.Equal(t, 500*time.Millisecond, retry.BaseBackoff())
}

func TestValidate_AllKeysPresent(t *testing.T) {
	cfg := &Config{}
	cfg.AlphaVantage.Key = "av"
	cfg.FMP.Key = "fmp"
	cfg.Polygon.Key = "poly"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingKeys(t *testing.T) {
	cfg := &Config{}
	cfg.FMP.Key = "fmp"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alphavantage.key")
	assert.Contains(t, err.Error(), "polygon.key")
	assert.NotContains(t, err.Error(), "fmp.key")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
