// Package market supplies the engine with market data: klines and
// point-in-time quotes, with TTL caching and an optional websocket
// overlay for fresher last prices.
package market

import (
	"context"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Provider is the market data source the strategies and engine consume
type Provider interface {
	// Quote returns the current snapshot for a symbol, including the
	// realized volatility derived from recent klines.
	Quote(ctx context.Context, symbol string) (*types.MarketSnapshot, error)

	// Klines returns up to limit candles for the symbol and timeframe,
	// ordered oldest first.
	Klines(ctx context.Context, symbol, timeframe string, limit int) ([]types.OHLCV, error)
}
