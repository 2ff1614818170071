package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/quangtran88/crypto-decision-engine/internal/indicators"
	"github.com/quangtran88/crypto-decision-engine/internal/market"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Volatility window inside which options spreads are worth entering:
// below it premiums are too thin, above it the short legs are too risky.
const (
	minOptionsVolatility = 0.15
	maxOptionsVolatility = 0.45
)

// Fixed exit bands for options positions. Options positions use fixed
// percentage bands instead of volatility-adaptive levels: 30% max loss
// on either side, 100% profit target long, 50% short.
const (
	optionsStopLong  = 0.7
	optionsStopShort = 1.3
	optionsTPLong    = 2.0
	optionsTPShort   = 0.5
)

// OptionsStrategy scans for spread setups keyed off realized volatility
// and trend: directional vertical spreads in trending markets, premium
// structures (iron condors, calendars) in neutral ones.
type OptionsStrategy struct {
	provider market.Provider
	window   int

	macd      *indicators.MACD
	bollinger *indicators.BollingerBands
}

// NewOptionsStrategy creates the options strategy with standard MACD and
// Bollinger parameters.
func NewOptionsStrategy(provider market.Provider, window int) *OptionsStrategy {
	return &OptionsStrategy{
		provider:  provider,
		window:    window,
		macd:      indicators.NewMACD(12, 26, 9),
		bollinger: indicators.NewBollingerBands(20, 2.0),
	}
}

// Name returns the strategy name
func (s *OptionsStrategy) Name() string {
	return "options"
}

// Analyze looks for options spread candidates on the symbol
func (s *OptionsStrategy) Analyze(ctx context.Context, symbol, timeframe string) (*Analysis, error) {
	klines, err := s.provider.Klines(ctx, symbol, timeframe, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}
	snapshot, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}

	options, err := s.GenerateSignals(klines)
	if err != nil {
		return nil, fmt.Errorf("failed to generate options signals for %s: %w", symbol, err)
	}

	return &Analysis{
		Symbol:    symbol,
		Timeframe: timeframe,
		Snapshot:  snapshot,
		Timestamp: time.Now(),
		Options:   options,
	}, nil
}

// GenerateSignals determines trend and volatility, then emits spread
// candidates per category. Outside the volatility window the candidate
// map stays empty.
func (s *OptionsStrategy) GenerateSignals(klines []types.OHLCV) (*OptionsAnalysis, error) {
	if len(klines) == 0 {
		return nil, fmt.Errorf("no kline data")
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}

	macdResult, err := s.macd.Calculate(closes)
	if err != nil {
		return nil, err
	}
	bands, err := s.bollinger.Calculate(closes)
	if err != nil {
		return nil, err
	}

	analysis := &OptionsAnalysis{
		HistoricalVol: indicators.RealizedVolatility(closes, 20),
		Trend:         determineTrend(macdResult, bands, closes[len(closes)-1]),
		Candidates:    make(map[SpreadCategory][]SpreadCandidate),
	}

	if analysis.HistoricalVol < minOptionsVolatility || analysis.HistoricalVol > maxOptionsVolatility {
		return analysis, nil
	}

	switch analysis.Trend {
	case TrendBullish:
		analysis.Candidates[VerticalSpreads] = []SpreadCandidate{{
			Category:    VerticalSpreads,
			Setup:       "bull_call",
			Direction:   types.DirectionLong,
			Strength:    types.StrengthStrong,
			LongStrike:  bands.Middle,
			ShortStrike: bands.Upper,
		}}
	case TrendBearish:
		analysis.Candidates[VerticalSpreads] = []SpreadCandidate{{
			Category:    VerticalSpreads,
			Setup:       "bear_put",
			Direction:   types.DirectionShort,
			Strength:    types.StrengthStrong,
			LongStrike:  bands.Middle,
			ShortStrike: bands.Lower,
		}}
	case TrendNeutral:
		// Premium structures: condor sells both wings, calendar buys time
		analysis.Candidates[IronCondors] = []SpreadCandidate{{
			Category:    IronCondors,
			Setup:       "iron_condor",
			Direction:   types.DirectionShort,
			Strength:    types.StrengthWeak,
			LongStrike:  bands.Lower,
			ShortStrike: bands.Upper,
		}}
		analysis.Candidates[CalendarSpreads] = []SpreadCandidate{{
			Category:    CalendarSpreads,
			Setup:       "calendar",
			Direction:   types.DirectionLong,
			Strength:    types.StrengthWeak,
			LongStrike:  bands.Middle,
			ShortStrike: bands.Middle,
		}}
	}

	return analysis, nil
}

// StopLoss applies the fixed 30% max-loss band
func (s *OptionsStrategy) StopLoss(entryPrice float64, direction types.Direction, _ float64) float64 {
	if direction == types.DirectionLong {
		return entryPrice * optionsStopLong
	}
	return entryPrice * optionsStopShort
}

// TakeProfit applies the fixed profit targets: 100% long, 50% short
func (s *OptionsStrategy) TakeProfit(entryPrice float64, direction types.Direction, _ float64) float64 {
	if direction == types.DirectionLong {
		return entryPrice * optionsTPLong
	}
	return entryPrice * optionsTPShort
}

// determineTrend reads trend off MACD agreement with price position
// relative to the Bollinger middle band.
func determineTrend(macd *indicators.MACDResult, bands *indicators.BollingerResult, lastClose float64) Trend {
	switch {
	case macd.MACD > macd.Signal && lastClose > bands.Middle:
		return TrendBullish
	case macd.MACD < macd.Signal && lastClose < bands.Middle:
		return TrendBearish
	default:
		return TrendNeutral
	}
}
