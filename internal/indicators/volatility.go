package indicators

import "math"

// Trading periods per year used to annualize volatility. Crypto markets
// trade continuously, but the conventional 252-day factor is kept so the
// volatility thresholds line up with the risk manager's bands.
const annualizationFactor = 252

// RealizedVolatility computes the annualized standard deviation of log
// returns over the trailing window of close prices. Returns 0 when the
// series is too short to form a window.
func RealizedVolatility(closes []float64, window int) float64 {
	if window < 2 || len(closes) < window+1 {
		return 0
	}

	returns := make([]float64, 0, window)
	for i := len(closes) - window; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) < 2 {
		return 0
	}

	avg := mean(returns)
	variance := 0.0
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}
	// Sample standard deviation, annualized
	sigma := math.Sqrt(variance / float64(len(returns)-1))
	return sigma * math.Sqrt(annualizationFactor)
}
