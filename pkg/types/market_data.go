package types

import "time"

type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// MarketSnapshot is a point-in-time view of a symbol's market state.
// Volatility is the annualized realized volatility computed from recent
// klines so downstream sizing never has to reach back into the provider.
type MarketSnapshot struct {
	Symbol     string
	LastPrice  float64
	Bid        float64
	Ask        float64
	Volume     float64
	Volatility float64
	Timestamp  time.Time
}

type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}
