// Package exchange executes validated trade decisions against a venue.
// The engine only talks to the Gateway interface; live and paper
// implementations are interchangeable.
package exchange

import (
	"context"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Gateway submits entry and exit orders for decided trades. Open and
// Close are synchronous: a nil error means the venue acknowledged the
// order and the position can be recorded.
type Gateway interface {
	// Name identifies the gateway in logs and reports
	Name() string

	// Open submits the entry order for the given trade parameters
	Open(ctx context.Context, params *types.TradeParameters) error

	// Close submits the exit order for an open position at the given price
	Close(ctx context.Context, position *types.Position, exitPrice float64) error
}
