package market

import (
	"context"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// StreamedProvider overlays the inner provider's quotes with fresher
// last prices from a ticker stream when one is available. Klines pass
// through untouched.
type StreamedProvider struct {
	inner  Provider
	stream *TickerStream
}

// NewStreamedProvider wraps inner with the stream overlay
func NewStreamedProvider(inner Provider, stream *TickerStream) *StreamedProvider {
	return &StreamedProvider{inner: inner, stream: stream}
}

// Quote returns the inner snapshot with the streamed last price when
// the stream has seen the symbol.
func (p *StreamedProvider) Quote(ctx context.Context, symbol string) (*types.MarketSnapshot, error) {
	snapshot, err := p.inner.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if price, ok := p.stream.LastPrice(symbol); ok {
		fresh := *snapshot
		fresh.LastPrice = price
		return &fresh, nil
	}
	return snapshot, nil
}

// Klines delegates to the inner provider
func (p *StreamedProvider) Klines(ctx context.Context, symbol, timeframe string, limit int) ([]types.OHLCV, error) {
	return p.inner.Klines(ctx, symbol, timeframe, limit)
}
