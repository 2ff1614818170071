package strategy

import (
	"context"
	"time"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Strategy is the capability set the engine depends on. The engine never
// references a concrete variant; it drives whatever strategies it was
// wired with and hands their analyses to the aggregator.
type Strategy interface {
	// Name returns the strategy name for logging and metrics
	Name() string

	// Analyze fetches market data and produces an analysis payload for
	// the symbol. Failures are market-data failures: the engine skips
	// the symbol for this cycle and retries next cycle.
	Analyze(ctx context.Context, symbol, timeframe string) (*Analysis, error)

	// StopLoss computes the strategy's stop-loss level for an entry.
	// Volatility is passed explicitly; strategies must not reach into
	// indicator state that is not part of the call.
	StopLoss(entryPrice float64, direction types.Direction, volatility float64) float64

	// TakeProfit computes the strategy's take-profit level for an entry
	TakeProfit(entryPrice float64, direction types.Direction, volatility float64) float64
}

// Analysis is the payload a strategy produces for one symbol. Exactly one
// of Technical or Options is set, matching the producing variant.
type Analysis struct {
	Symbol    string
	Timeframe string
	Snapshot  *types.MarketSnapshot
	Timestamp time.Time

	Technical *TechnicalAnalysis
	Options   *OptionsAnalysis
}

// Trend classifies the prevailing price direction
type Trend int

const (
	TrendNeutral Trend = iota
	TrendBullish
	TrendBearish
)

func (t Trend) String() string {
	switch t {
	case TrendBullish:
		return "BULLISH"
	case TrendBearish:
		return "BEARISH"
	default:
		return "NEUTRAL"
	}
}

// TechnicalAnalysis is the technical strategy's payload
type TechnicalAnalysis struct {
	Trend             TrendAnalysis
	Momentum          MomentumAnalysis
	Volatility        VolatilityAnalysis
	SupportResistance PivotLevels
	Entry             EntrySignal
}

// TrendAnalysis combines the trend reads from individual indicators
type TrendAnalysis struct {
	EMA      Trend   // Short EMA vs long EMA
	MACD     Trend   // MACD line vs signal line
	Strength float64 // Absolute MACD/signal divergence
	Overall  Trend   // Majority vote
}

// MomentumAnalysis carries the momentum indicator reads
type MomentumAnalysis struct {
	RSI           float64
	Oversold      bool
	Overbought    bool
	MACDHistogram float64
}

// VolatilityAnalysis carries the volatility reads
type VolatilityAnalysis struct {
	ATR      float64
	Realized float64 // Annualized realized volatility
	Level    string  // low / medium / high
}

// PivotLevels holds classic pivot-point support and resistance
type PivotLevels struct {
	Pivot      float64
	Resistance float64
	Support    float64
}

// EntrySignal is the actionable output of a technical analysis. Valid is
// false when no entry condition fired this bar.
type EntrySignal struct {
	Valid     bool
	Direction types.Direction
	Strength  types.SignalStrength
}

// SpreadCategory identifies an options spread family
type SpreadCategory string

const (
	VerticalSpreads SpreadCategory = "vertical_spreads"
	IronCondors     SpreadCategory = "iron_condors"
	CalendarSpreads SpreadCategory = "calendar_spreads"
)

// SpreadCategoriesOrdered fixes the emission order for aggregation
var SpreadCategoriesOrdered = []SpreadCategory{VerticalSpreads, IronCondors, CalendarSpreads}

// SpreadCandidate is one options trade candidate within a category
type SpreadCandidate struct {
	Category    SpreadCategory
	Setup       string // e.g. bull_call, bear_put, iron_condor
	Direction   types.Direction
	Strength    types.SignalStrength
	LongStrike  float64
	ShortStrike float64
}

// OptionsAnalysis is the options strategy's payload: candidates per
// spread category. Categories with no candidates are simply absent.
type OptionsAnalysis struct {
	HistoricalVol float64
	Trend         Trend
	Candidates    map[SpreadCategory][]SpreadCandidate
}
