package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangtran88/crypto-decision-engine/internal/indicators"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

func klinesFromCloses(closes []float64) []types.OHLCV {
	klines := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		klines[i] = types.OHLCV{Open: c, High: c, Low: c, Close: c}
	}
	return klines
}

// syntheticCloses builds a series that steps by the given factor on every
// other bar, producing a directional trend with non-zero realized
// volatility. factor > 1 trends up, < 1 trends down, == 1 stays flat.
func syntheticCloses(bars int, factor float64) []float64 {
	closes := make([]float64, bars)
	price := 100.0
	for i := range closes {
		if i%2 == 1 {
			price *= factor
		}
		closes[i] = price
	}
	return closes
}

// TestGenerateSignals_BullishVertical tests that an uptrend inside the
// volatility window yields a bull call vertical.
func TestGenerateSignals_BullishVertical(t *testing.T) {
	s := NewOptionsStrategy(nil, 100)

	analysis, err := s.GenerateSignals(klinesFromCloses(syntheticCloses(60, 1.035)))
	require.NoError(t, err)

	assert.Equal(t, TrendBullish, analysis.Trend)
	assert.Greater(t, analysis.HistoricalVol, minOptionsVolatility)
	assert.Less(t, analysis.HistoricalVol, maxOptionsVolatility)

	candidates := analysis.Candidates[VerticalSpreads]
	require.Len(t, candidates, 1)
	assert.Equal(t, "bull_call", candidates[0].Setup)
	assert.Equal(t, types.DirectionLong, candidates[0].Direction)
	assert.Equal(t, types.StrengthStrong, candidates[0].Strength)
	assert.Greater(t, candidates[0].ShortStrike, candidates[0].LongStrike)
}

// TestGenerateSignals_BearishVertical tests the mirrored downtrend setup
func TestGenerateSignals_BearishVertical(t *testing.T) {
	s := NewOptionsStrategy(nil, 100)

	analysis, err := s.GenerateSignals(klinesFromCloses(syntheticCloses(60, 1/1.035)))
	require.NoError(t, err)

	assert.Equal(t, TrendBearish, analysis.Trend)

	candidates := analysis.Candidates[VerticalSpreads]
	require.Len(t, candidates, 1)
	assert.Equal(t, "bear_put", candidates[0].Setup)
	assert.Equal(t, types.DirectionShort, candidates[0].Direction)
	assert.Less(t, candidates[0].ShortStrike, candidates[0].LongStrike)
}

// TestGenerateSignals_LowVolatilityEmpty tests that thin premiums suppress
// all candidates even when a trend is present.
func TestGenerateSignals_LowVolatilityEmpty(t *testing.T) {
	s := NewOptionsStrategy(nil, 100)

	analysis, err := s.GenerateSignals(klinesFromCloses(syntheticCloses(60, 1.0001)))
	require.NoError(t, err)

	assert.Less(t, analysis.HistoricalVol, minOptionsVolatility)
	assert.Empty(t, analysis.Candidates)
}

// TestGenerateSignals_HighVolatilityEmpty tests the upper volatility cutoff
func TestGenerateSignals_HighVolatilityEmpty(t *testing.T) {
	s := NewOptionsStrategy(nil, 100)

	// Whipsaw series: large alternating swings, no net direction
	closes := make([]float64, 60)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100.0
		} else {
			closes[i] = 108.0
		}
	}

	analysis, err := s.GenerateSignals(klinesFromCloses(closes))
	require.NoError(t, err)

	assert.Greater(t, analysis.HistoricalVol, maxOptionsVolatility)
	assert.Empty(t, analysis.Candidates)
}

// TestGenerateSignals_EmptyInput tests the no-data error
func TestGenerateSignals_EmptyInput(t *testing.T) {
	s := NewOptionsStrategy(nil, 100)

	_, err := s.GenerateSignals(nil)
	require.Error(t, err)
}

// TestDetermineTrend tests all three trend classifications
func TestDetermineTrend(t *testing.T) {
	bands := &indicators.BollingerResult{Upper: 110, Middle: 100, Lower: 90}

	bullMACD := &indicators.MACDResult{MACD: 1.5, Signal: 1.0}
	bearMACD := &indicators.MACDResult{MACD: -1.5, Signal: -1.0}

	assert.Equal(t, TrendBullish, determineTrend(bullMACD, bands, 105))
	assert.Equal(t, TrendBearish, determineTrend(bearMACD, bands, 95))

	// Disagreement between momentum and price position is neutral
	assert.Equal(t, TrendNeutral, determineTrend(bullMACD, bands, 95))
	assert.Equal(t, TrendNeutral, determineTrend(bearMACD, bands, 105))
}

// TestNeutralTrend_PremiumStructures tests that a neutral read emits both
// an iron condor and a calendar spread.
func TestNeutralTrend_PremiumStructures(t *testing.T) {
	s := NewOptionsStrategy(nil, 100)

	// Seeded random walks with ~2.5% steps land inside the volatility
	// window; directionless ones classify neutral. Search a few seeds for
	// one that does.
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		closes := make([]float64, 60)
		price := 100.0
		for i := range closes {
			price *= 1 + (rng.Float64()-0.5)*0.05
			closes[i] = price
		}

		analysis, err := s.GenerateSignals(klinesFromCloses(closes))
		require.NoError(t, err)
		if analysis.Trend != TrendNeutral ||
			analysis.HistoricalVol < minOptionsVolatility ||
			analysis.HistoricalVol > maxOptionsVolatility {
			continue
		}

		condors := analysis.Candidates[IronCondors]
		require.Len(t, condors, 1)
		assert.Equal(t, "iron_condor", condors[0].Setup)
		assert.Equal(t, types.DirectionShort, condors[0].Direction)
		assert.Equal(t, types.StrengthWeak, condors[0].Strength)

		calendars := analysis.Candidates[CalendarSpreads]
		require.Len(t, calendars, 1)
		assert.Equal(t, types.DirectionLong, calendars[0].Direction)
		assert.Equal(t, types.StrengthWeak, calendars[0].Strength)

		assert.Nil(t, analysis.Candidates[VerticalSpreads])
		return
	}
	t.Fatal("no neutral series found across seeds")
}

// TestOptionsExitBands tests the fixed stop and target multipliers
func TestOptionsExitBands(t *testing.T) {
	s := NewOptionsStrategy(nil, 100)

	assert.InDelta(t, 70.0, s.StopLoss(100, types.DirectionLong, 0.5), 1e-9)
	assert.InDelta(t, 130.0, s.StopLoss(100, types.DirectionShort, 0.5), 1e-9)
	assert.InDelta(t, 200.0, s.TakeProfit(100, types.DirectionLong, 0.5), 1e-9)
	assert.InDelta(t, 50.0, s.TakeProfit(100, types.DirectionShort, 0.5), 1e-9)
}
