package indicators

import (
	"errors"
	"math"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// ATR calculates the Average True Range, a volatility measure over the
// full range an asset traded in each period.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Calculate computes the ATR as a simple average of the true ranges over
// the last period bars.
func (a *ATR) Calculate(data []types.OHLCV) (float64, error) {
	if len(data) < a.period+1 {
		return 0, errors.New("insufficient data for ATR calculation")
	}

	sum := 0.0
	for i := len(data) - a.period; i < len(data); i++ {
		sum += trueRange(data[i], data[i-1].Close)
	}
	return sum / float64(a.period), nil
}

func trueRange(bar types.OHLCV, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if hc := math.Abs(bar.High - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(bar.Low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}
