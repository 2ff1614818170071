package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStreamedProvider_OverlaysLastPrice tests that a streamed price
// replaces the REST last price without touching the rest of the snapshot.
func TestStreamedProvider_OverlaysLastPrice(t *testing.T) {
	inner := &countingProvider{lastPrice: 50000.0}
	stream := NewTickerStream(StreamURL("spot", true), []string{"BTCUSDT"})
	stream.mu.Lock()
	stream.prices["BTCUSDT"] = 50123.5
	stream.mu.Unlock()

	provider := NewStreamedProvider(inner, stream)

	snapshot, err := provider.Quote(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 50123.5, snapshot.LastPrice)
	assert.Equal(t, "BTCUSDT", snapshot.Symbol)
}

// TestStreamedProvider_FallsBackWithoutStreamPrice tests pass-through for
// symbols the stream has not seen.
func TestStreamedProvider_FallsBackWithoutStreamPrice(t *testing.T) {
	inner := &countingProvider{lastPrice: 3200.0}
	stream := NewTickerStream(StreamURL("spot", true), []string{"ETHUSDT"})

	provider := NewStreamedProvider(inner, stream)

	snapshot, err := provider.Quote(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 3200.0, snapshot.LastPrice)
}

// TestStreamURL tests endpoint selection by category and environment
func TestStreamURL(t *testing.T) {
	assert.Equal(t, StreamURLSpot, StreamURL("spot", false))
	assert.Equal(t, StreamURLLinear, StreamURL("linear", false))
	assert.Equal(t, StreamURLSpotTestnet, StreamURL("spot", true))
}
