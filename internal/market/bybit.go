package market

import (
	"context"
	"time"

	"github.com/quangtran88/crypto-decision-engine/internal/bybit"
	engineerrors "github.com/quangtran88/crypto-decision-engine/internal/errors"
	"github.com/quangtran88/crypto-decision-engine/internal/indicators"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

const volatilityWindow = 20

// BybitProvider serves market data from the Bybit REST API. Quote
// computes realized volatility from a fresh kline fetch so every
// snapshot is self-contained.
type BybitProvider struct {
	client      *bybit.Client
	timeframe   string
	klineWindow int
}

// NewBybitProvider creates a provider over the given client. timeframe
// and klineWindow control the candles behind the volatility estimate.
func NewBybitProvider(client *bybit.Client, timeframe string, klineWindow int) *BybitProvider {
	if klineWindow <= 0 {
		klineWindow = 100
	}
	return &BybitProvider{
		client:      client,
		timeframe:   timeframe,
		klineWindow: klineWindow,
	}
}

// Quote returns the current market snapshot for a symbol
func (p *BybitProvider) Quote(ctx context.Context, symbol string) (*types.MarketSnapshot, error) {
	ticker, err := p.client.GetTicker(ctx, symbol)
	if err != nil {
		return nil, engineerrors.NewDataError("market", "quote", symbol, err)
	}

	klines, err := p.Klines(ctx, symbol, p.timeframe, p.klineWindow)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}

	return &types.MarketSnapshot{
		Symbol:     symbol,
		LastPrice:  ticker.LastPrice,
		Bid:        ticker.Bid,
		Ask:        ticker.Ask,
		Volume:     ticker.Volume24h,
		Volatility: indicators.RealizedVolatility(closes, volatilityWindow),
		Timestamp:  time.Now(),
	}, nil
}

// Klines returns candles for the symbol, oldest first
func (p *BybitProvider) Klines(ctx context.Context, symbol, timeframe string, limit int) ([]types.OHLCV, error) {
	interval := bybit.IntervalFromTimeframe(timeframe)
	raw, err := p.client.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, engineerrors.NewDataError("market", "klines", symbol, err)
	}

	klines := make([]types.OHLCV, len(raw))
	for i, k := range raw {
		klines[i] = types.OHLCV{
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
			Timestamp: k.StartTime,
		}
	}
	return klines, nil
}
