package portfolio

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Ledger is the authoritative record of open positions and the running
// portfolio risk budget. The trading engine's single loop is the only
// writer; monitoring readers get consistent copies via Snapshot.
//
// Invariant: totalRisk equals the sum of TradeRisk over all held
// positions at every quiescent point. ApplyOpen and ApplyClose are the
// only mutators and each maintains the sum under the lock.
type Ledger struct {
	mu        sync.RWMutex
	positions map[string]*types.Position
	totalRisk float64
}

// Snapshot is a consistent copy of the ledger state for external readers
type Snapshot struct {
	TotalRisk float64
	Positions map[string]types.Position
	TakenAt   time.Time
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		positions: make(map[string]*types.Position),
	}
}

// ApplyOpen records an acknowledged open: inserts the position and adds
// its trade risk to the running total. Fails if the symbol already holds
// a position; the ledger never keeps two entries for one symbol.
func (l *Ledger) ApplyOpen(params types.TradeParameters) (*types.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.positions[params.Symbol]; exists {
		return nil, fmt.Errorf("position already open for %s", params.Symbol)
	}

	pos := &types.Position{
		TradeParameters: params,
		State:           types.PositionOpen,
	}
	l.positions[params.Symbol] = pos
	l.totalRisk += params.TradeRisk()

	return pos, nil
}

// ApplyClose records an acknowledged close: computes the realized P&L,
// releases the position's risk budget and removes the entry. Returns the
// terminal position so callers can journal it.
func (l *Ledger) ApplyClose(symbol string, exitPrice float64) (types.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, exists := l.positions[symbol]
	if !exists {
		return types.Position{}, fmt.Errorf("no open position for %s", symbol)
	}

	closed := *pos
	closed.State = types.PositionClosed
	closed.ExitPrice = exitPrice
	closed.PnL = closed.PnLAt(exitPrice)
	closed.ClosedAt = time.Now()

	l.totalRisk -= pos.TradeRisk()
	delete(l.positions, symbol)
	if len(l.positions) == 0 {
		// Absorb accumulated float error once the book is flat
		l.totalRisk = 0
	}

	return closed, nil
}

// Has reports whether a position is held for the symbol
func (l *Ledger) Has(symbol string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.positions[symbol]
	return ok
}

// OpenCount returns the number of held positions
func (l *Ledger) OpenCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.positions)
}

// TotalRisk returns the current aggregate risk budget in use
func (l *Ledger) TotalRisk() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalRisk
}

// Symbols returns the held symbols in stable sorted order so the
// management sweep is deterministic.
func (l *Ledger) Symbols() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	symbols := make([]string, 0, len(l.positions))
	for s := range l.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Get returns a copy of the position for the symbol
func (l *Ledger) Get(symbol string) (types.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return types.Position{}, false
	}
	return *pos, true
}

// Snapshot returns a deep copy of the ledger state. Readers never observe
// a half-applied open or close because the copy is taken under the lock.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	positions := make(map[string]types.Position, len(l.positions))
	for symbol, pos := range l.positions {
		positions[symbol] = *pos
	}
	return Snapshot{
		TotalRisk: l.totalRisk,
		Positions: positions,
		TakenAt:   time.Now(),
	}
}
