package indicators

import "errors"

// EMA calculates the Exponential Moving Average
type EMA struct {
	period int
}

// NewEMA creates a new EMA instance with the given period
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

// Calculate computes the EMA over the full price series, seeding with a
// simple average of the first period values.
func (e *EMA) Calculate(prices []float64) (float64, error) {
	if len(prices) < e.period {
		return 0, errors.New("insufficient data for EMA calculation")
	}

	multiplier := 2.0 / float64(e.period+1)
	ema := mean(prices[:e.period])
	for _, price := range prices[e.period:] {
		ema = (price-ema)*multiplier + ema
	}
	return ema, nil
}

// Series computes the EMA at every index from period-1 onward.
// The returned slice is aligned with the input: entries before the seed
// index are zero.
func (e *EMA) Series(prices []float64) ([]float64, error) {
	if len(prices) < e.period {
		return nil, errors.New("insufficient data for EMA calculation")
	}

	out := make([]float64, len(prices))
	multiplier := 2.0 / float64(e.period+1)
	ema := mean(prices[:e.period])
	out[e.period-1] = ema
	for i := e.period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out, nil
}
