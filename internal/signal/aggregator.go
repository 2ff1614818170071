// Package signal merges per-strategy analyses into a single ordered
// stream of trade opportunities for the engine to act on.
package signal

import (
	"github.com/quangtran88/crypto-decision-engine/internal/strategy"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Opportunity is one actionable trade candidate surfaced by aggregation.
// Technical opportunities carry no spread fields; options opportunities
// carry the category and setup they came from.
type Opportunity struct {
	Kind      types.OpportunityKind
	Symbol    string
	Direction types.Direction
	Strength  types.SignalStrength

	// Options-only fields
	Category strategy.SpreadCategory
	Setup    string

	// Analysis the opportunity was derived from, for sizing and logging
	Analysis *strategy.Analysis
}

// Aggregator turns strategy analyses into an ordered opportunity list.
// It is pure: no I/O, no retained state, deterministic output order.
type Aggregator struct{}

// NewAggregator creates an aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate collects opportunities from the given analyses. For each
// analysis the technical entry signal is emitted first, then options
// candidates in fixed category order. Analyses without valid signals
// contribute nothing.
func (a *Aggregator) Aggregate(analyses []*strategy.Analysis) []Opportunity {
	var opportunities []Opportunity

	for _, analysis := range analyses {
		if analysis == nil {
			continue
		}
		if op, ok := technicalOpportunity(analysis); ok {
			opportunities = append(opportunities, op)
		}
		opportunities = append(opportunities, optionsOpportunities(analysis)...)
	}

	return opportunities
}

func technicalOpportunity(analysis *strategy.Analysis) (Opportunity, bool) {
	if analysis.Technical == nil || !analysis.Technical.Entry.Valid {
		return Opportunity{}, false
	}
	entry := analysis.Technical.Entry
	return Opportunity{
		Kind:      types.KindTechnical,
		Symbol:    analysis.Symbol,
		Direction: entry.Direction,
		Strength:  entry.Strength,
		Analysis:  analysis,
	}, true
}

func optionsOpportunities(analysis *strategy.Analysis) []Opportunity {
	if analysis.Options == nil || len(analysis.Options.Candidates) == 0 {
		return nil
	}

	var result []Opportunity
	for _, category := range strategy.SpreadCategoriesOrdered {
		for _, candidate := range analysis.Options.Candidates[category] {
			result = append(result, Opportunity{
				Kind:      types.KindOptions,
				Symbol:    analysis.Symbol,
				Direction: candidate.Direction,
				Strength:  candidate.Strength,
				Category:  candidate.Category,
				Setup:     candidate.Setup,
				Analysis:  analysis,
			})
		}
	}
	return result
}
