package types

import (
	"strings"
	"time"
)

// Direction represents the side of a trade
type Direction int

const (
	DirectionLong Direction = iota
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	default:
		return "UNKNOWN"
	}
}

// OpportunityKind represents the strategy family that produced a candidate
type OpportunityKind int

const (
	KindTechnical OpportunityKind = iota
	KindOptions
)

func (k OpportunityKind) String() string {
	switch k {
	case KindTechnical:
		return "TECHNICAL"
	case KindOptions:
		return "OPTIONS"
	default:
		return "UNKNOWN"
	}
}

// SignalStrength represents the conviction behind a signal
type SignalStrength int

const (
	StrengthWeak SignalStrength = iota
	StrengthStrong
)

func (s SignalStrength) String() string {
	switch s {
	case StrengthStrong:
		return "STRONG"
	case StrengthWeak:
		return "WEAK"
	default:
		return "UNKNOWN"
	}
}

// PositionState tracks a position through its lifecycle.
// Proposed positions have resolved trade parameters but no gateway ack yet;
// Closed is terminal and the ledger removes the entry immediately.
type PositionState int

const (
	PositionProposed PositionState = iota
	PositionOpen
	PositionClosed
)

func (s PositionState) String() string {
	switch s {
	case PositionProposed:
		return "PROPOSED"
	case PositionOpen:
		return "OPEN"
	case PositionClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// TradeParameters is a fully resolved trade ready for execution.
//
// Invariants enforced at construction time by the risk manager:
// PositionSize > 0, StopLoss != EntryPrice, and for longs
// StopLoss < EntryPrice < TakeProfit (inverse for shorts).
type TradeParameters struct {
	Symbol       string
	Kind         OpportunityKind
	Direction    Direction
	EntryPrice   float64
	PositionSize float64
	StopLoss     float64
	TakeProfit   float64
	OpenedAt     time.Time
}

// TradeRisk returns the fraction of capital at risk for this trade:
// the stop distance relative to entry, scaled by position size.
func (t TradeParameters) TradeRisk() float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	risk := (t.EntryPrice - t.StopLoss) / t.EntryPrice
	if risk < 0 {
		risk = -risk
	}
	return risk * t.PositionSize
}

// Position is a validated, opened trade tracked until closed.
// Entry fields are fixed for the lifetime of the position; only the
// close transition mutates it.
type Position struct {
	TradeParameters

	State     PositionState
	ExitPrice float64
	PnL       float64
	ClosedAt  time.Time
}

// PnLAt computes the profit for closing this position at exitPrice.
func (p *Position) PnLAt(exitPrice float64) float64 {
	if p.Direction == DirectionLong {
		return (exitPrice - p.EntryPrice) * p.PositionSize
	}
	return (p.EntryPrice - exitPrice) * p.PositionSize
}

// ShouldExit reports whether the exit condition fires at the given price.
// Longs close when price breaches the stop below or the target above;
// shorts are the mirror image.
func (p *Position) ShouldExit(price float64) bool {
	if p.Direction == DirectionLong {
		return price <= p.StopLoss || price >= p.TakeProfit
	}
	return price >= p.StopLoss || price <= p.TakeProfit
}

var quoteCurrencies = []string{"USDT", "USDC", "USD", "BTC", "ETH"}

// BaseAsset extracts the base asset from a trading pair.
// Handles both the slash form ("BTC/USDT") and the concatenated exchange
// form ("BTCUSDT"). Used by the correlated-exposure check, which treats
// symbols sharing a base asset as correlated.
func BaseAsset(symbol string) string {
	if i := strings.IndexByte(symbol, '/'); i > 0 {
		return symbol[:i]
	}
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return strings.TrimSuffix(symbol, quote)
		}
	}
	return symbol
}
