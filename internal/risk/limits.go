package risk

// Limits is the process-wide risk configuration. Loaded once at startup
// and never mutated at runtime.
type Limits struct {
	MaxRiskPerTrade       float64 // Capital fraction risked per trade (0.02)
	MaxTotalRisk          float64 // Aggregate portfolio risk ceiling (0.06)
	MaxPositionSize       float64 // Per-position capital fraction cap (0.2)
	StopLossPct           float64 // Base stop-loss distance (0.02)
	TakeProfitPct         float64 // Base take-profit distance (0.04)
	CorrelatedExposureCap float64 // Same-base-asset exposure ceiling (0.15)
}

// DefaultLimits returns the standard limits used when no configuration
// overrides are present.
func DefaultLimits() Limits {
	return Limits{
		MaxRiskPerTrade:       0.02,
		MaxTotalRisk:          0.06,
		MaxPositionSize:       0.2,
		StopLossPct:           0.02,
		TakeProfitPct:         0.04,
		CorrelatedExposureCap: 0.15,
	}
}

// Volatility bands for the adaptive stop/take-profit and sizing rules
const (
	highVolatility = 0.3
	lowVolatility  = 0.1
)
