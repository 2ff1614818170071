package exchange

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// TestPaperGateway_CountsFills tests the simulated fill counters
func TestPaperGateway_CountsFills(t *testing.T) {
	g := NewPaperGateway()
	ctx := context.Background()

	require.NoError(t, g.Open(ctx, &types.TradeParameters{Symbol: "BTCUSDT"}))
	require.NoError(t, g.Open(ctx, &types.TradeParameters{Symbol: "ETHUSDT"}))
	require.NoError(t, g.Close(ctx, &types.Position{}, 100.0))

	opened, closed := g.Fills()
	assert.Equal(t, 2, opened)
	assert.Equal(t, 1, closed)
	assert.Equal(t, "paper", g.Name())
}

// TestBaseQuantity tests the quote-to-base conversion string
func TestBaseQuantity(t *testing.T) {
	assert.Equal(t, "0.020000", baseQuantity(1000.0, 50000.0))
	assert.Equal(t, "2.500000", baseQuantity(250.0, 100.0))
	assert.Equal(t, "0", baseQuantity(100.0, 0))
	assert.Equal(t, "0", baseQuantity(100.0, -5.0))
}
