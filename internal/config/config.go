package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the complete engine configuration. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	Trading    TradingConfig    `json:"trading"`
	Risk       RiskConfig       `json:"risk"`
	Exchange   ExchangeConfig   `json:"exchange"`
	Monitoring MonitoringConfig `json:"monitoring"`
	Journal    JournalConfig    `json:"journal"`

	Debug bool `json:"debug"`
}

// TradingConfig holds the trading surface of the engine
type TradingConfig struct {
	Symbols             []string `json:"symbols"`               // Trading pairs (e.g., BTCUSDT)
	Timeframe           string   `json:"timeframe"`             // Kline timeframe (1h, 15m, ...)
	MaxConcurrentTrades int      `json:"max_concurrent_trades"` // Cap on simultaneously open positions
	PollIntervalSeconds int      `json:"poll_interval_seconds"` // Trading cycle interval
	CallTimeoutSeconds  int      `json:"call_timeout_seconds"`  // Per external call timeout
	CacheTTLSeconds     int      `json:"cache_ttl_seconds"`     // Market data cache TTL
	KlineWindow         int      `json:"kline_window"`          // Bars fetched per analysis
	InitialPortfolio    float64  `json:"initial_portfolio"`     // Starting portfolio value in quote currency
}

// RiskConfig holds the risk limits; all fractions of portfolio value
type RiskConfig struct {
	MaxRiskPerTrade       float64 `json:"max_risk_per_trade"`      // Capital fraction risked per trade
	MaxTotalRisk          float64 `json:"max_total_risk"`          // Aggregate portfolio risk ceiling
	MaxPositionSize       float64 `json:"max_position_size"`       // Per-position capital fraction cap
	StopLossPct           float64 `json:"stop_loss_pct"`           // Base stop-loss distance
	TakeProfitPct         float64 `json:"take_profit_pct"`         // Base take-profit distance
	CorrelatedExposureCap float64 `json:"correlated_exposure_cap"` // Same-base-asset exposure ceiling
}

// ExchangeConfig holds exchange connectivity settings. Credentials come
// from the environment, never from the config file.
type ExchangeConfig struct {
	Name     string `json:"name"`     // Exchange name (bybit)
	Category string `json:"category"` // Market category (spot, linear)
	Testnet  bool   `json:"testnet"`
	DryRun   bool   `json:"dry_run"` // Paper gateway instead of live orders

	APIKey    string `json:"-"`
	APISecret string `json:"-"`
}

// MonitoringConfig holds the HTTP monitoring surface settings
type MonitoringConfig struct {
	MetricsPort int `json:"metrics_port"`
	HealthPort  int `json:"health_port"`
}

// JournalConfig holds trade journal settings
type JournalConfig struct {
	OutputDir string `json:"output_dir"` // Directory for xlsx exports
}

// Load reads the JSON config file, loads .env if present, and applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	// Missing .env is fine; real deployments export vars directly
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Trading: TradingConfig{
			Symbols:             []string{"BTCUSDT", "ETHUSDT"},
			Timeframe:           "1h",
			MaxConcurrentTrades: 5,
			PollIntervalSeconds: 60,
			CallTimeoutSeconds:  15,
			CacheTTLSeconds:     300,
			KlineWindow:         100,
			InitialPortfolio:    100000,
		},
		Risk: RiskConfig{
			MaxRiskPerTrade:       0.02,
			MaxTotalRisk:          0.06,
			MaxPositionSize:       0.2,
			StopLossPct:           0.02,
			TakeProfitPct:         0.04,
			CorrelatedExposureCap: 0.15,
		},
		Exchange: ExchangeConfig{
			Name:     "bybit",
			Category: "spot",
			Testnet:  true,
			DryRun:   true,
		},
		Monitoring: MonitoringConfig{
			MetricsPort: 8080,
			HealthPort:  8081,
		},
		Journal: JournalConfig{
			OutputDir: "journal",
		},
	}
}

func (c *Config) applyEnv() {
	c.Exchange.APIKey = getEnv("BYBIT_API_KEY", c.Exchange.APIKey)
	c.Exchange.APISecret = getEnv("BYBIT_API_SECRET", c.Exchange.APISecret)
	c.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", c.Exchange.Testnet)
	c.Exchange.DryRun = getEnvBool("ENGINE_DRY_RUN", c.Exchange.DryRun)
	c.Debug = getEnvBool("ENGINE_DEBUG", c.Debug)
	c.Trading.InitialPortfolio = getEnvFloat("ENGINE_PORTFOLIO", c.Trading.InitialPortfolio)
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("at least one trading symbol is required")
	}
	if c.Trading.Timeframe == "" {
		return fmt.Errorf("timeframe is required")
	}
	if c.Trading.MaxConcurrentTrades <= 0 {
		return fmt.Errorf("max_concurrent_trades must be positive, got %d", c.Trading.MaxConcurrentTrades)
	}
	if c.Trading.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.Trading.PollIntervalSeconds)
	}
	if c.Trading.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("call_timeout_seconds must be positive, got %d", c.Trading.CallTimeoutSeconds)
	}
	if c.Trading.InitialPortfolio <= 0 {
		return fmt.Errorf("initial_portfolio must be positive, got %.2f", c.Trading.InitialPortfolio)
	}
	if c.Risk.MaxRiskPerTrade <= 0 || c.Risk.MaxRiskPerTrade >= 1 {
		return fmt.Errorf("max_risk_per_trade must be in (0, 1), got %.4f", c.Risk.MaxRiskPerTrade)
	}
	if c.Risk.MaxTotalRisk < c.Risk.MaxRiskPerTrade {
		return fmt.Errorf("max_total_risk %.4f below max_risk_per_trade %.4f", c.Risk.MaxTotalRisk, c.Risk.MaxRiskPerTrade)
	}
	if c.Risk.MaxPositionSize <= 0 || c.Risk.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size must be in (0, 1], got %.4f", c.Risk.MaxPositionSize)
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.TakeProfitPct <= 0 {
		return fmt.Errorf("stop_loss_pct and take_profit_pct must be positive")
	}
	if !c.Exchange.DryRun && (c.Exchange.APIKey == "" || c.Exchange.APISecret == "") {
		return fmt.Errorf("live trading requires BYBIT_API_KEY and BYBIT_API_SECRET")
	}
	return nil
}

// PollInterval returns the trading cycle interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Trading.PollIntervalSeconds) * time.Second
}

// CallTimeout returns the per external call timeout as a duration
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Trading.CallTimeoutSeconds) * time.Second
}

// CacheTTL returns the market data cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Trading.CacheTTLSeconds) * time.Second
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}
