package exchange

import (
	"context"
	"strconv"

	"github.com/quangtran88/crypto-decision-engine/internal/bybit"
	engineerrors "github.com/quangtran88/crypto-decision-engine/internal/errors"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// BybitGateway executes trades as market orders on Bybit
type BybitGateway struct {
	client *bybit.Client
}

// NewBybitGateway creates a live gateway over the given client
func NewBybitGateway(client *bybit.Client) *BybitGateway {
	return &BybitGateway{client: client}
}

// Name identifies the gateway and its environment
func (g *BybitGateway) Name() string {
	return "bybit-" + g.client.Environment()
}

// Open submits a market order on the trade's entry side
func (g *BybitGateway) Open(ctx context.Context, params *types.TradeParameters) error {
	side := bybit.OrderSideBuy
	if params.Direction == types.DirectionShort {
		side = bybit.OrderSideSell
	}

	qty := baseQuantity(params.PositionSize, params.EntryPrice)
	if _, err := g.client.PlaceMarketOrder(ctx, params.Symbol, side, qty); err != nil {
		return engineerrors.NewExecutionError("exchange", "open", params.Symbol, err)
	}
	return nil
}

// Close submits the opposite-side market order for an open position
func (g *BybitGateway) Close(ctx context.Context, position *types.Position, exitPrice float64) error {
	side := bybit.OrderSideSell
	if position.Direction == types.DirectionShort {
		side = bybit.OrderSideBuy
	}

	qty := baseQuantity(position.PositionSize, exitPrice)
	if _, err := g.client.PlaceMarketOrder(ctx, position.Symbol, side, qty); err != nil {
		return engineerrors.NewExecutionError("exchange", "close", position.Symbol, err)
	}
	return nil
}

// baseQuantity converts a quote-denominated position size to a base
// asset quantity string at the given price.
func baseQuantity(positionSize, price float64) string {
	if price <= 0 {
		return "0"
	}
	return strconv.FormatFloat(positionSize/price, 'f', 6, 64)
}
