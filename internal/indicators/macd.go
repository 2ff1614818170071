package indicators

import "errors"

// MACD calculates the Moving Average Convergence Divergence
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// MACDResult holds the three MACD output lines at the latest bar
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// NewMACD creates a new MACD instance with the given periods
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
	}
}

// Calculate computes the MACD line, signal line and histogram for the
// latest bar of the given close price series.
func (m *MACD) Calculate(prices []float64) (*MACDResult, error) {
	required := m.slowPeriod + m.signalPeriod
	if len(prices) < required {
		return nil, errors.New("insufficient data for MACD calculation")
	}

	fastSeries, err := NewEMA(m.fastPeriod).Series(prices)
	if err != nil {
		return nil, err
	}
	slowSeries, err := NewEMA(m.slowPeriod).Series(prices)
	if err != nil {
		return nil, err
	}

	// MACD line exists once the slow EMA is seeded
	macdLine := make([]float64, 0, len(prices)-m.slowPeriod+1)
	for i := m.slowPeriod - 1; i < len(prices); i++ {
		macdLine = append(macdLine, fastSeries[i]-slowSeries[i])
	}

	signalSeries, err := NewEMA(m.signalPeriod).Series(macdLine)
	if err != nil {
		return nil, err
	}

	macd := macdLine[len(macdLine)-1]
	signal := signalSeries[len(signalSeries)-1]
	return &MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}, nil
}
