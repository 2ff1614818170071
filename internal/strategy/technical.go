package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/quangtran88/crypto-decision-engine/internal/indicators"
	"github.com/quangtran88/crypto-decision-engine/internal/market"
	"github.com/quangtran88/crypto-decision-engine/internal/risk"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// TechnicalStrategy generates entries from indicator confluence: an entry
// requires the EMA pair and MACD to agree on trend while RSI sits in an
// extreme zone. Stops and targets are volatility-adaptive via the risk
// manager.
type TechnicalStrategy struct {
	provider market.Provider
	riskMgr  *risk.Manager

	window int

	rsi      *indicators.RSI
	emaShort *indicators.EMA
	emaLong  *indicators.EMA
	macd     *indicators.MACD
	atr      *indicators.ATR
}

// NewTechnicalStrategy creates a technical strategy with the standard
// indicator parameters (RSI 14, EMA 9/21, MACD 12/26/9, ATR 14).
func NewTechnicalStrategy(provider market.Provider, riskMgr *risk.Manager, window int) *TechnicalStrategy {
	return &TechnicalStrategy{
		provider: provider,
		riskMgr:  riskMgr,
		window:   window,
		rsi:      indicators.NewRSI(14),
		emaShort: indicators.NewEMA(9),
		emaLong:  indicators.NewEMA(21),
		macd:     indicators.NewMACD(12, 26, 9),
		atr:      indicators.NewATR(14),
	}
}

// Name returns the strategy name
func (s *TechnicalStrategy) Name() string {
	return "technical"
}

// Analyze fetches klines and the current quote, then runs the full
// indicator read for the symbol.
func (s *TechnicalStrategy) Analyze(ctx context.Context, symbol, timeframe string) (*Analysis, error) {
	klines, err := s.provider.Klines(ctx, symbol, timeframe, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}
	snapshot, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}

	technical, err := s.GenerateSignals(klines)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signals for %s: %w", symbol, err)
	}

	return &Analysis{
		Symbol:    symbol,
		Timeframe: timeframe,
		Snapshot:  snapshot,
		Timestamp: time.Now(),
		Technical: technical,
	}, nil
}

// GenerateSignals runs the indicator battery over a kline window
func (s *TechnicalStrategy) GenerateSignals(klines []types.OHLCV) (*TechnicalAnalysis, error) {
	if len(klines) == 0 {
		return nil, fmt.Errorf("no kline data")
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}

	rsiValue, err := s.rsi.Calculate(closes)
	if err != nil {
		return nil, err
	}
	emaShort, err := s.emaShort.Calculate(closes)
	if err != nil {
		return nil, err
	}
	emaLong, err := s.emaLong.Calculate(closes)
	if err != nil {
		return nil, err
	}
	macdResult, err := s.macd.Calculate(closes)
	if err != nil {
		return nil, err
	}
	atrValue, err := s.atr.Calculate(klines)
	if err != nil {
		return nil, err
	}

	analysis := &TechnicalAnalysis{
		Trend:             analyzeTrend(emaShort, emaLong, macdResult),
		Momentum:          s.analyzeMomentum(rsiValue, macdResult),
		Volatility:        analyzeVolatility(atrValue, closes),
		SupportResistance: pivotLevels(klines[len(klines)-1]),
	}
	analysis.Entry = s.findEntry(emaShort, emaLong, macdResult, analysis.Momentum)
	return analysis, nil
}

// StopLoss delegates to the volatility-adaptive risk manager levels
func (s *TechnicalStrategy) StopLoss(entryPrice float64, direction types.Direction, volatility float64) float64 {
	return s.riskMgr.StopLoss(entryPrice, direction, volatility)
}

// TakeProfit delegates to the volatility-adaptive risk manager levels
func (s *TechnicalStrategy) TakeProfit(entryPrice float64, direction types.Direction, volatility float64) float64 {
	return s.riskMgr.TakeProfit(entryPrice, direction, volatility)
}

func analyzeTrend(emaShort, emaLong float64, macd *indicators.MACDResult) TrendAnalysis {
	trend := TrendAnalysis{
		EMA:      TrendBearish,
		MACD:     TrendBearish,
		Strength: abs(macd.MACD - macd.Signal),
	}
	if emaShort > emaLong {
		trend.EMA = TrendBullish
	}
	if macd.MACD > macd.Signal {
		trend.MACD = TrendBullish
	}

	bullish := 0
	if trend.EMA == TrendBullish {
		bullish++
	}
	if trend.MACD == TrendBullish {
		bullish++
	}
	if bullish > 1 {
		trend.Overall = TrendBullish
	} else if bullish == 0 {
		trend.Overall = TrendBearish
	} else {
		trend.Overall = TrendNeutral
	}
	return trend
}

func (s *TechnicalStrategy) analyzeMomentum(rsiValue float64, macd *indicators.MACDResult) MomentumAnalysis {
	return MomentumAnalysis{
		RSI:           rsiValue,
		Oversold:      s.rsi.IsOversold(rsiValue),
		Overbought:    s.rsi.IsOverbought(rsiValue),
		MACDHistogram: macd.Histogram,
	}
}

func analyzeVolatility(atrValue float64, closes []float64) VolatilityAnalysis {
	level := "medium"
	switch {
	case atrValue < 0.5:
		level = "low"
	case atrValue >= 1.5:
		level = "high"
	}
	return VolatilityAnalysis{
		ATR:      atrValue,
		Realized: indicators.RealizedVolatility(closes, 20),
		Level:    level,
	}
}

func pivotLevels(last types.OHLCV) PivotLevels {
	pivot := (last.High + last.Low + last.Close) / 3
	return PivotLevels{
		Pivot:      pivot,
		Resistance: 2*pivot - last.Low,
		Support:    2*pivot - last.High,
	}
}

// findEntry requires trend confirmation (EMA and MACD agree) plus an RSI
// extreme before signaling an entry. Anything less is a weak no-entry.
func (s *TechnicalStrategy) findEntry(emaShort, emaLong float64, macd *indicators.MACDResult, momentum MomentumAnalysis) EntrySignal {
	trendConfirmed := (emaShort > emaLong && macd.MACD > macd.Signal) ||
		(emaShort < emaLong && macd.MACD < macd.Signal)
	momentumConfirmed := momentum.Oversold || momentum.Overbought

	if !trendConfirmed || !momentumConfirmed {
		return EntrySignal{Valid: false, Strength: types.StrengthWeak}
	}

	direction := types.DirectionShort
	if emaShort > emaLong {
		direction = types.DirectionLong
	}
	return EntrySignal{
		Valid:     true,
		Direction: direction,
		Strength:  types.StrengthStrong,
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
