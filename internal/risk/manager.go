package risk

import (
	"fmt"
	"math"

	"github.com/quangtran88/crypto-decision-engine/internal/errors"
	"github.com/quangtran88/crypto-decision-engine/internal/portfolio"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Manager performs the pure risk computations: position sizing, adaptive
// stop-loss/take-profit levels and portfolio-level validation. It holds
// no mutable state; risk accounting lives in the ledger.
type Manager struct {
	limits Limits
}

// NewManager creates a risk manager with the given limits
func NewManager(limits Limits) *Manager {
	return &Manager{limits: limits}
}

// Limits returns the configured limits
func (m *Manager) Limits() Limits {
	return m.limits
}

// PositionSize sizes a trade so that hitting the stop loses at most
// MaxRiskPerTrade of capital. High volatility damps the size by 30%,
// and the result is clamped to the per-position cap.
func (m *Manager) PositionSize(capital, entryPrice, stopLoss, volatility float64) (float64, error) {
	priceRisk := math.Abs(entryPrice - stopLoss)
	if priceRisk == 0 {
		return 0, fmt.Errorf("%w: entry %.4f equals stop loss", errors.ErrInvalidRiskInput, entryPrice)
	}

	riskAmount := capital * m.limits.MaxRiskPerTrade
	size := riskAmount / priceRisk

	if volatility > highVolatility {
		size *= 0.7
	}

	maxSize := capital * m.limits.MaxPositionSize
	return math.Min(size, maxSize), nil
}

// StopLoss computes a volatility-adaptive stop-loss level. The base
// distance widens by half in high-volatility regimes and tightens by a
// fifth in quiet ones.
func (m *Manager) StopLoss(entryPrice float64, direction types.Direction, volatility float64) float64 {
	base := m.limits.StopLossPct
	if volatility > highVolatility {
		base *= 1.5
	} else if volatility < lowVolatility {
		base *= 0.8
	}

	if direction == types.DirectionLong {
		return entryPrice * (1 - base)
	}
	return entryPrice * (1 + base)
}

// TakeProfit computes a volatility-adaptive take-profit level
func (m *Manager) TakeProfit(entryPrice float64, direction types.Direction, volatility float64) float64 {
	base := m.limits.TakeProfitPct
	if volatility > highVolatility {
		base *= 1.3
	} else if volatility < lowVolatility {
		base *= 0.9
	}

	if direction == types.DirectionLong {
		return entryPrice * (1 + base)
	}
	return entryPrice * (1 - base)
}

// RejectionReason identifies which validation check rejected a candidate
type RejectionReason string

const (
	ReasonAggregateRisk      RejectionReason = "aggregate_risk"
	ReasonCorrelatedExposure RejectionReason = "correlated_exposure"
	ReasonAssetExposure      RejectionReason = "asset_exposure"
)

// Rejection explains why a candidate failed validation
type Rejection struct {
	Reason  RejectionReason
	Details string
}

func (r *Rejection) String() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Details)
}

// Validate runs the portfolio-level checks against a ledger snapshot, in
// order, short-circuiting on the first failure. It is a pure predicate:
// no state is touched, so a rejection has no side effects. Returns nil
// when the candidate passes.
func (m *Manager) Validate(params types.TradeParameters, portfolioValue float64, snap portfolio.Snapshot) *Rejection {
	// 1. Aggregate risk ceiling
	tradeRisk := params.TradeRisk()
	if snap.TotalRisk+tradeRisk > m.limits.MaxTotalRisk {
		return &Rejection{
			Reason:  ReasonAggregateRisk,
			Details: fmt.Sprintf("total risk %.4f + trade risk %.4f exceeds ceiling %.4f", snap.TotalRisk, tradeRisk, m.limits.MaxTotalRisk),
		}
	}

	// 2. Correlated exposure: the candidate plus all positions sharing its
	// base asset must stay under the cap. Same-base comparison is a
	// placeholder for statistical correlation.
	base := types.BaseAsset(params.Symbol)
	correlated := params.PositionSize
	for _, pos := range snap.Positions {
		if types.BaseAsset(pos.Symbol) == base {
			correlated += pos.PositionSize
		}
	}
	if correlated >= m.limits.CorrelatedExposureCap {
		return &Rejection{
			Reason:  ReasonCorrelatedExposure,
			Details: fmt.Sprintf("correlated exposure %.4f for base %s at or above cap %.4f", correlated, base, m.limits.CorrelatedExposureCap),
		}
	}

	// 3. Per-asset exposure cap
	exposure := params.PositionSize
	for _, pos := range snap.Positions {
		if pos.Symbol == params.Symbol {
			exposure += pos.PositionSize
		}
	}
	if maxExposure := m.limits.MaxPositionSize * portfolioValue; exposure > maxExposure {
		return &Rejection{
			Reason:  ReasonAssetExposure,
			Details: fmt.Sprintf("exposure %.4f for %s exceeds cap %.4f", exposure, params.Symbol, maxExposure),
		}
	}

	return nil
}
