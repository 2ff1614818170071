package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangtran88/crypto-decision-engine/internal/strategy"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

func technicalAnalysis(symbol string, direction types.Direction, strength types.SignalStrength) *strategy.Analysis {
	return &strategy.Analysis{
		Symbol: symbol,
		Technical: &strategy.TechnicalAnalysis{
			Entry: strategy.EntrySignal{
				Valid:     true,
				Direction: direction,
				Strength:  strength,
			},
		},
	}
}

func optionsAnalysis(symbol string, candidates map[strategy.SpreadCategory][]strategy.SpreadCandidate) *strategy.Analysis {
	return &strategy.Analysis{
		Symbol: symbol,
		Options: &strategy.OptionsAnalysis{
			HistoricalVol: 0.25,
			Candidates:    candidates,
		},
	}
}

// TestAggregate_EmptyInput tests that no analyses produce no opportunities
func TestAggregate_EmptyInput(t *testing.T) {
	agg := NewAggregator()

	assert.Empty(t, agg.Aggregate(nil))
	assert.Empty(t, agg.Aggregate([]*strategy.Analysis{nil}))
}

// TestAggregate_TechnicalEntry tests a plain technical opportunity
func TestAggregate_TechnicalEntry(t *testing.T) {
	agg := NewAggregator()

	ops := agg.Aggregate([]*strategy.Analysis{
		technicalAnalysis("BTCUSDT", types.DirectionLong, types.StrengthStrong),
	})

	require.Len(t, ops, 1)
	assert.Equal(t, types.KindTechnical, ops[0].Kind)
	assert.Equal(t, "BTCUSDT", ops[0].Symbol)
	assert.Equal(t, types.DirectionLong, ops[0].Direction)
	assert.Equal(t, types.StrengthStrong, ops[0].Strength)
	assert.NotNil(t, ops[0].Analysis)
}

// TestAggregate_InvalidEntrySkipped tests that a no-entry analysis emits nothing
func TestAggregate_InvalidEntrySkipped(t *testing.T) {
	agg := NewAggregator()

	analysis := &strategy.Analysis{
		Symbol:    "ETHUSDT",
		Technical: &strategy.TechnicalAnalysis{},
	}

	assert.Empty(t, agg.Aggregate([]*strategy.Analysis{analysis}))
}

// TestAggregate_OptionsCategoryOrder tests that options candidates come out
// in fixed category order regardless of map iteration order.
func TestAggregate_OptionsCategoryOrder(t *testing.T) {
	agg := NewAggregator()

	candidates := map[strategy.SpreadCategory][]strategy.SpreadCandidate{
		strategy.CalendarSpreads: {{
			Category:  strategy.CalendarSpreads,
			Setup:     "calendar_spread",
			Direction: types.DirectionLong,
			Strength:  types.StrengthWeak,
		}},
		strategy.IronCondors: {{
			Category:  strategy.IronCondors,
			Setup:     "iron_condor",
			Direction: types.DirectionShort,
			Strength:  types.StrengthWeak,
		}},
	}

	for i := 0; i < 20; i++ {
		ops := agg.Aggregate([]*strategy.Analysis{optionsAnalysis("BTCUSDT", candidates)})
		require.Len(t, ops, 2)
		assert.Equal(t, strategy.IronCondors, ops[0].Category)
		assert.Equal(t, strategy.CalendarSpreads, ops[1].Category)
	}
}

// TestAggregate_TechnicalBeforeOptions tests per-symbol emission order when
// both strategies produced signals.
func TestAggregate_TechnicalBeforeOptions(t *testing.T) {
	agg := NewAggregator()

	analyses := []*strategy.Analysis{
		technicalAnalysis("BTCUSDT", types.DirectionShort, types.StrengthStrong),
		optionsAnalysis("BTCUSDT", map[strategy.SpreadCategory][]strategy.SpreadCandidate{
			strategy.VerticalSpreads: {{
				Category:  strategy.VerticalSpreads,
				Setup:     "bear_put",
				Direction: types.DirectionShort,
				Strength:  types.StrengthStrong,
			}},
		}),
	}

	ops := agg.Aggregate(analyses)
	require.Len(t, ops, 2)
	assert.Equal(t, types.KindTechnical, ops[0].Kind)
	assert.Equal(t, types.KindOptions, ops[1].Kind)
	assert.Equal(t, "bear_put", ops[1].Setup)
}

// TestAggregate_MultipleSymbols tests that input order drives output order
func TestAggregate_MultipleSymbols(t *testing.T) {
	agg := NewAggregator()

	analyses := []*strategy.Analysis{
		technicalAnalysis("ETHUSDT", types.DirectionLong, types.StrengthWeak),
		technicalAnalysis("BTCUSDT", types.DirectionLong, types.StrengthStrong),
	}

	ops := agg.Aggregate(analyses)
	require.Len(t, ops, 2)
	assert.Equal(t, "ETHUSDT", ops[0].Symbol)
	assert.Equal(t, "BTCUSDT", ops[1].Symbol)
}
