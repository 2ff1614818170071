package exchange

import (
	"context"
	"sync"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// PaperGateway simulates execution in memory. Every order fills
// immediately at the requested price. It is the default gateway when
// dry-run mode is on.
type PaperGateway struct {
	mu     sync.Mutex
	opened int
	closed int
}

// NewPaperGateway creates a paper trading gateway
func NewPaperGateway() *PaperGateway {
	return &PaperGateway{}
}

// Name identifies the gateway
func (g *PaperGateway) Name() string {
	return "paper"
}

// Open records a simulated fill
func (g *PaperGateway) Open(_ context.Context, _ *types.TradeParameters) error {
	g.mu.Lock()
	g.opened++
	g.mu.Unlock()
	return nil
}

// Close records a simulated exit fill
func (g *PaperGateway) Close(_ context.Context, _ *types.Position, _ float64) error {
	g.mu.Lock()
	g.closed++
	g.mu.Unlock()
	return nil
}

// Fills reports how many orders the gateway has simulated
func (g *PaperGateway) Fills() (opened, closed int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opened, g.closed
}
