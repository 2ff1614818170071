package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker reports liveness from the trading loop's perspective: a
// cycle heartbeat that is too old marks the engine degraded.
type HealthChecker struct {
	mu            sync.RWMutex
	lastCycle     time.Time
	lastCycleErrs int
	staleAfter    time.Duration
}

type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	LastCycle     time.Time `json:"last_cycle"`
	LastCycleErrs int       `json:"last_cycle_errors"`
	Uptime        string    `json:"uptime"`
}

// NewHealthChecker creates a checker that marks the engine degraded
// when no cycle has completed within staleAfter.
func NewHealthChecker(staleAfter time.Duration) *HealthChecker {
	if staleAfter <= 0 {
		staleAfter = 5 * time.Minute
	}
	return &HealthChecker{staleAfter: staleAfter}
}

// CycleCompleted records a cycle heartbeat
func (h *HealthChecker) CycleCompleted(errs int) {
	h.mu.Lock()
	h.lastCycle = time.Now()
	h.lastCycleErrs = errs
	h.mu.Unlock()
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.lastCycle.IsZero() || time.Since(h.lastCycle) > h.staleAfter {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	health := HealthStatus{
		Status:        status,
		Timestamp:     time.Now(),
		LastCycle:     h.lastCycle,
		LastCycleErrs: h.lastCycleErrs,
		Uptime:        time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
