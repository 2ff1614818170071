package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults tests loading with no config file at all
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Trading.Symbols)
	assert.Equal(t, "1h", cfg.Trading.Timeframe)
	assert.Equal(t, 5, cfg.Trading.MaxConcurrentTrades)
	assert.Equal(t, 0.02, cfg.Risk.MaxRiskPerTrade)
	assert.Equal(t, 0.06, cfg.Risk.MaxTotalRisk)
	assert.Equal(t, 0.15, cfg.Risk.CorrelatedExposureCap)
	assert.True(t, cfg.Exchange.DryRun)
	assert.Equal(t, "journal", cfg.Journal.OutputDir)
}

// TestLoad_FileOverridesDefaults tests JSON overrides merged over defaults
func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"trading": {
			"symbols": ["SOLUSDT"],
			"timeframe": "15m",
			"max_concurrent_trades": 2,
			"poll_interval_seconds": 30,
			"call_timeout_seconds": 10,
			"cache_ttl_seconds": 60,
			"kline_window": 200,
			"initial_portfolio": 50000
		},
		"risk": {
			"max_risk_per_trade": 0.01,
			"max_total_risk": 0.03,
			"max_position_size": 0.1,
			"stop_loss_pct": 0.015,
			"take_profit_pct": 0.03,
			"correlated_exposure_cap": 0.1
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"SOLUSDT"}, cfg.Trading.Symbols)
	assert.Equal(t, "15m", cfg.Trading.Timeframe)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.CallTimeout())
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())
	assert.Equal(t, 0.01, cfg.Risk.MaxRiskPerTrade)

	// Sections absent from the file keep their defaults
	assert.Equal(t, "bybit", cfg.Exchange.Name)
	assert.Equal(t, 8080, cfg.Monitoring.MetricsPort)
}

// TestLoad_MissingFile tests the explicit-path-not-found error
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

// TestLoad_MalformedJSON tests the parse error path
func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

// TestLoad_EnvOverrides tests environment variables taking precedence
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENGINE_DEBUG", "true")
	t.Setenv("ENGINE_PORTFOLIO", "25000")
	t.Setenv("BYBIT_TESTNET", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 25000.0, cfg.Trading.InitialPortfolio)
	assert.False(t, cfg.Exchange.Testnet)
}

// TestValidate tests each rejection the engine cannot run with
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Trading.Symbols = nil }},
		{"empty timeframe", func(c *Config) { c.Trading.Timeframe = "" }},
		{"zero concurrent trades", func(c *Config) { c.Trading.MaxConcurrentTrades = 0 }},
		{"zero poll interval", func(c *Config) { c.Trading.PollIntervalSeconds = 0 }},
		{"zero call timeout", func(c *Config) { c.Trading.CallTimeoutSeconds = 0 }},
		{"zero portfolio", func(c *Config) { c.Trading.InitialPortfolio = 0 }},
		{"risk per trade too high", func(c *Config) { c.Risk.MaxRiskPerTrade = 1.0 }},
		{"total below per-trade", func(c *Config) { c.Risk.MaxTotalRisk = 0.01 }},
		{"position size above one", func(c *Config) { c.Risk.MaxPositionSize = 1.5 }},
		{"zero stop loss", func(c *Config) { c.Risk.StopLossPct = 0 }},
		{"live without credentials", func(c *Config) { c.Exchange.DryRun = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, defaults().Validate())
}
