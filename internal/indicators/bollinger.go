package indicators

import (
	"errors"
	"math"
)

// BollingerBands calculates Bollinger Bands
type BollingerBands struct {
	period int
	stdDev float64
}

// BollingerResult holds the band values at the latest bar
type BollingerResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// NewBollingerBands creates a new Bollinger Bands instance
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{period: period, stdDev: stdDev}
}

// Calculate computes the bands for the latest bar of the close series
func (b *BollingerBands) Calculate(prices []float64) (*BollingerResult, error) {
	if len(prices) < b.period {
		return nil, errors.New("insufficient data for Bollinger Bands calculation")
	}

	window := prices[len(prices)-b.period:]
	middle := mean(window)

	variance := 0.0
	for _, p := range window {
		variance += (p - middle) * (p - middle)
	}
	sigma := math.Sqrt(variance / float64(b.period))

	return &BollingerResult{
		Upper:  middle + b.stdDev*sigma,
		Middle: middle,
		Lower:  middle - b.stdDev*sigma,
	}, nil
}
