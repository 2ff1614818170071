package indicators

import (
	"errors"
	"math"
)

// RSI calculates the Relative Strength Index
type RSI struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{
		period:     period,
		oversold:   30,
		overbought: 70,
	}
}

// SetOversold overrides the oversold threshold
func (r *RSI) SetOversold(threshold float64) {
	r.oversold = threshold
}

// SetOverbought overrides the overbought threshold
func (r *RSI) SetOverbought(threshold float64) {
	r.overbought = threshold
}

// Calculate computes the RSI value based on the given close price slice
func (r *RSI) Calculate(prices []float64) (float64, error) {
	if len(prices) < r.period+1 {
		return 0, errors.New("insufficient data for RSI calculation")
	}

	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	gains := make([]float64, len(changes))
	losses := make([]float64, len(changes))
	for i, change := range changes {
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = math.Abs(change)
		}
	}

	avgGain := mean(gains[len(gains)-r.period:])
	avgLoss := mean(losses[len(losses)-r.period:])

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// IsOversold reports whether the given RSI value is in the oversold zone
func (r *RSI) IsOversold(value float64) bool {
	return value < r.oversold
}

// IsOverbought reports whether the given RSI value is in the overbought zone
func (r *RSI) IsOverbought(value float64) bool {
	return value > r.overbought
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
