package safety

import (
	"fmt"
	"math"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// ValidationResult represents the result of a validation check
type ValidationResult struct {
	Valid   bool
	Message string
	Code    string
}

// Validator checks market data and trade parameters before they reach
// sizing or execution.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePrice validates a price value for trading
func (v *Validator) ValidatePrice(price float64, symbol string) ValidationResult {
	if math.IsNaN(price) {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("invalid price for %s: price is NaN", symbol),
			Code:    "INVALID_PRICE_NAN",
		}
	}
	if math.IsInf(price, 0) {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("invalid price for %s: price is infinite", symbol),
			Code:    "INVALID_PRICE_INF",
		}
	}
	if price <= 0 {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("invalid price %.8f for %s: price must be positive", price, symbol),
			Code:    "INVALID_PRICE_NEGATIVE",
		}
	}
	// Obvious data errors on either end
	if price > 1e10 {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("suspicious price %.8f for %s: exceeds reasonable bounds", price, symbol),
			Code:    "PRICE_OUT_OF_BOUNDS",
		}
	}
	if price < 1e-8 {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("suspicious price %.8f for %s: below reasonable bounds", price, symbol),
			Code:    "PRICE_TOO_SMALL",
		}
	}

	return ValidationResult{Valid: true}
}

// ValidateSnapshot checks a market snapshot before it feeds decisions
func (v *Validator) ValidateSnapshot(snapshot *types.MarketSnapshot) ValidationResult {
	if snapshot == nil {
		return ValidationResult{
			Valid:   false,
			Message: "nil market snapshot",
			Code:    "NIL_SNAPSHOT",
		}
	}
	if result := v.ValidatePrice(snapshot.LastPrice, snapshot.Symbol); !result.Valid {
		return result
	}
	if snapshot.Volatility < 0 || math.IsNaN(snapshot.Volatility) {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("invalid volatility %.4f for %s", snapshot.Volatility, snapshot.Symbol),
			Code:    "INVALID_VOLATILITY",
		}
	}
	return ValidationResult{Valid: true}
}

// ValidateTradeParameters checks a fully resolved trade before it is
// submitted: positive size, stop on the loss side, target on the profit
// side.
func (v *Validator) ValidateTradeParameters(params *types.TradeParameters) ValidationResult {
	if params == nil {
		return ValidationResult{
			Valid:   false,
			Message: "nil trade parameters",
			Code:    "NIL_PARAMS",
		}
	}
	if result := v.ValidatePrice(params.EntryPrice, params.Symbol); !result.Valid {
		return result
	}
	if params.PositionSize <= 0 || math.IsNaN(params.PositionSize) {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("invalid position size %.8f for %s", params.PositionSize, params.Symbol),
			Code:    "INVALID_POSITION_SIZE",
		}
	}

	switch params.Direction {
	case types.DirectionLong:
		if params.StopLoss >= params.EntryPrice {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("long stop %.4f at or above entry %.4f for %s", params.StopLoss, params.EntryPrice, params.Symbol),
				Code:    "STOP_WRONG_SIDE",
			}
		}
		if params.TakeProfit <= params.EntryPrice {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("long target %.4f at or below entry %.4f for %s", params.TakeProfit, params.EntryPrice, params.Symbol),
				Code:    "TARGET_WRONG_SIDE",
			}
		}
	case types.DirectionShort:
		if params.StopLoss <= params.EntryPrice {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("short stop %.4f at or below entry %.4f for %s", params.StopLoss, params.EntryPrice, params.Symbol),
				Code:    "STOP_WRONG_SIDE",
			}
		}
		if params.TakeProfit >= params.EntryPrice {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("short target %.4f at or above entry %.4f for %s", params.TakeProfit, params.EntryPrice, params.Symbol),
				Code:    "TARGET_WRONG_SIDE",
			}
		}
	}

	return ValidationResult{Valid: true}
}
