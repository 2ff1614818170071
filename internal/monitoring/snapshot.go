package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// EngineSnapshot is the engine's externally visible state, published
// after every cycle.
type EngineSnapshot struct {
	Timestamp     time.Time          `json:"timestamp"`
	CycleCount    uint64             `json:"cycle_count"`
	OpenPositions int                `json:"open_positions"`
	TotalRisk     float64            `json:"total_risk"`
	Symbols       []string           `json:"symbols"`
	LastPrices    map[string]float64 `json:"last_prices,omitempty"`
	Opened        int                `json:"opened_last_cycle"`
	Closed        int                `json:"closed_last_cycle"`
	Skipped       int                `json:"skipped_last_cycle"`
	Errors        int                `json:"errors_last_cycle"`
}

// SnapshotPublisher serves the latest engine snapshot as JSON
type SnapshotPublisher struct {
	mu       sync.RWMutex
	snapshot EngineSnapshot
}

// NewSnapshotPublisher creates an empty publisher
func NewSnapshotPublisher() *SnapshotPublisher {
	return &SnapshotPublisher{}
}

// Publish replaces the current snapshot
func (p *SnapshotPublisher) Publish(snapshot EngineSnapshot) {
	p.mu.Lock()
	p.snapshot = snapshot
	p.mu.Unlock()
}

// Latest returns the most recently published snapshot
func (p *SnapshotPublisher) Latest() EngineSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

func (p *SnapshotPublisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := p.Latest()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}
