package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// OrderSide represents the side of an order
type OrderSide string

const (
	OrderSideBuy  OrderSide = "Buy"
	OrderSideSell OrderSide = "Sell"
)

// Order is the subset of Bybit order fields the engine records
type Order struct {
	OrderID     string    `json:"orderId"`
	OrderLinkID string    `json:"orderLinkId"`
	Symbol      string    `json:"symbol"`
	Side        OrderSide `json:"side"`
	Qty         string    `json:"qty"`
	AvgPrice    string    `json:"avgPrice"`
	OrderStatus string    `json:"orderStatus"`
	CreatedTime time.Time `json:"createdTime"`
}

// PlaceMarketOrder submits a market order and returns the acknowledged
// order. Qty is a string per the exchange API convention.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side OrderSide, qty string) (*Order, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if qty == "" {
		return nil, fmt.Errorf("qty is required")
	}

	params := map[string]interface{}{
		"category":  c.category,
		"symbol":    symbol,
		"side":      string(side),
		"orderType": "Market",
		"qty":       qty,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	order, err := parseOrderResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	return order, nil
}

// GetWalletBalance returns the unified account equity in the given coin
func (c *Client) GetWalletBalance(ctx context.Context, coin string) (float64, error) {
	params := map[string]interface{}{
		"accountType": "UNIFIED",
	}
	if coin != "" {
		params["coin"] = coin
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet balance: %w", err)
	}

	resultBytes, err := unwrapResult(result)
	if err != nil {
		return 0, err
	}

	var walletResult struct {
		List []struct {
			TotalEquity string `json:"totalEquity"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &walletResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet result: %w", err)
	}
	if len(walletResult.List) == 0 {
		return 0, fmt.Errorf("no wallet data found")
	}

	return parseFloat64(walletResult.List[0].TotalEquity), nil
}

func parseOrderResponse(response interface{}) (*Order, error) {
	resultBytes, err := unwrapResult(response)
	if err != nil {
		return nil, err
	}

	var orderResult struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
		Symbol      string `json:"symbol"`
		Side        string `json:"side"`
		Qty         string `json:"qty"`
		AvgPrice    string `json:"avgPrice"`
		OrderStatus string `json:"orderStatus"`
		CreatedTime string `json:"createdTime"`
	}
	if err := json.Unmarshal(resultBytes, &orderResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order result: %w", err)
	}

	return &Order{
		OrderID:     orderResult.OrderID,
		OrderLinkID: orderResult.OrderLinkID,
		Symbol:      orderResult.Symbol,
		Side:        OrderSide(orderResult.Side),
		Qty:         orderResult.Qty,
		AvgPrice:    orderResult.AvgPrice,
		OrderStatus: orderResult.OrderStatus,
		CreatedTime: parseTimestamp(orderResult.CreatedTime),
	}, nil
}
