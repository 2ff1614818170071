package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// CachedProvider wraps a Provider with a per-key TTL cache so repeated
// lookups within one trading cycle do not hammer the exchange. Expired
// entries are refreshed on access; a stale entry is never returned.
type CachedProvider struct {
	inner Provider
	ttl   time.Duration

	mu      sync.RWMutex
	quotes  map[string]cachedQuote
	klines  map[string]cachedKlines
}

type cachedQuote struct {
	snapshot *types.MarketSnapshot
	fetched  time.Time
}

type cachedKlines struct {
	klines  []types.OHLCV
	fetched time.Time
}

// NewCachedProvider wraps inner with the given TTL
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		ttl:    ttl,
		quotes: make(map[string]cachedQuote),
		klines: make(map[string]cachedKlines),
	}
}

// Quote returns a cached snapshot when fresh, fetching otherwise
func (c *CachedProvider) Quote(ctx context.Context, symbol string) (*types.MarketSnapshot, error) {
	c.mu.RLock()
	entry, ok := c.quotes[symbol]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetched) < c.ttl {
		return entry.snapshot, nil
	}

	snapshot, err := c.inner.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.quotes[symbol] = cachedQuote{snapshot: snapshot, fetched: time.Now()}
	c.mu.Unlock()

	return snapshot, nil
}

// Klines returns cached candles when fresh, fetching otherwise
func (c *CachedProvider) Klines(ctx context.Context, symbol, timeframe string, limit int) ([]types.OHLCV, error) {
	key := fmt.Sprintf("%s:%s:%d", symbol, timeframe, limit)

	c.mu.RLock()
	entry, ok := c.klines[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetched) < c.ttl {
		return entry.klines, nil
	}

	klines, err := c.inner.Klines(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.klines[key] = cachedKlines{klines: klines, fetched: time.Now()}
	c.mu.Unlock()

	return klines, nil
}

// Invalidate drops all cached entries for a symbol
func (c *CachedProvider) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.quotes, symbol)
	for key := range c.klines {
		if len(key) > len(symbol) && key[:len(symbol)] == symbol && key[len(symbol)] == ':' {
			delete(c.klines, key)
		}
	}
}
