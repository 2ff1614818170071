package engine

import (
	"context"
	"fmt"
	"time"

	engineerrors "github.com/quangtran88/crypto-decision-engine/internal/errors"
	"github.com/quangtran88/crypto-decision-engine/internal/monitoring"
	"github.com/quangtran88/crypto-decision-engine/internal/safety"
	"github.com/quangtran88/crypto-decision-engine/internal/signal"
	"github.com/quangtran88/crypto-decision-engine/internal/strategy"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// CycleReport is the explicit outcome of one trading cycle. A cycle
// with a non-empty Errors slice is a partial failure: the loop logs it
// and continues; it never tears the engine down.
type CycleReport struct {
	Opened  int
	Closed  int
	Skipped int
	Errors  []error
}

// runCycle executes one full trading cycle: analyze, aggregate, decide,
// then sweep open positions for exits. A panic anywhere in the cycle is
// contained and reported as a loop failure.
func (e *Engine) runCycle() {
	start := time.Now()
	e.cycleCount++

	report := &CycleReport{}

	func() {
		defer func() {
			if r := recover(); r != nil {
				err := engineerrors.Wrap(fmt.Errorf("panic: %v", r), engineerrors.CategoryLoop, "engine", "cycle")
				report.Errors = append(report.Errors, err)
				e.log.Error("Trading cycle panic recovered: %v", r)
				monitoring.RecordError(string(engineerrors.CategoryLoop))
			}
		}()

		analyses := e.analyzePhase(report)
		opportunities := e.aggregator.Aggregate(analyses)
		for _, opp := range opportunities {
			monitoring.RecordOpportunity(opp.Kind.String(), opp.Strength.String())
		}

		e.openPhase(opportunities, report)
		e.managePhase(report)
	}()

	monitoring.UpdateRisk(e.ledger.TotalRisk(), e.ledger.OpenCount())
	monitoring.RecordCycleDuration(time.Since(start).Seconds())
	e.health.CycleCompleted(len(report.Errors))
	e.publishSnapshot(report)

	e.log.Cycle("Cycle %d done in %v: opened=%d closed=%d skipped=%d errors=%d open_positions=%d total_risk=%.4f",
		e.cycleCount, time.Since(start).Round(time.Millisecond),
		report.Opened, report.Closed, report.Skipped, len(report.Errors),
		e.ledger.OpenCount(), e.ledger.TotalRisk())
}

// analyzePhase runs every strategy over every configured symbol. A
// failed analysis skips that symbol/strategy pair for this cycle only.
func (e *Engine) analyzePhase(report *CycleReport) []*strategy.Analysis {
	breaker := e.breakers.GetOrCreate("market", safety.BreakerConfig{})

	// Fixed kind order keeps opportunity emission deterministic
	kinds := []types.OpportunityKind{types.KindTechnical, types.KindOptions}

	var analyses []*strategy.Analysis
	for _, symbol := range e.cfg.Trading.Symbols {
		for _, kind := range kinds {
			strat, ok := e.strategies[kind]
			if !ok {
				continue
			}
			var analysis *strategy.Analysis
			err := breaker.Call(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CallTimeout())
				defer cancel()

				var callErr error
				analysis, callErr = strat.Analyze(ctx, symbol, e.cfg.Trading.Timeframe)
				return callErr
			})
			if err != nil {
				report.Errors = append(report.Errors, err)
				e.log.Warning("Analysis failed for %s/%s: %v", symbol, strat.Name(), err)
				monitoring.RecordError(string(engineerrors.CategoryData))
				continue
			}

			if result := e.validator.ValidateSnapshot(analysis.Snapshot); !result.Valid {
				report.Errors = append(report.Errors, engineerrors.NewDataError("engine", "validate_snapshot", symbol, fmt.Errorf("%s", result.Message)))
				e.log.Warning("Rejected snapshot for %s: %s", symbol, result.Message)
				monitoring.RecordError(string(engineerrors.CategoryValidation))
				continue
			}

			monitoring.UpdatePrice(symbol, analysis.Snapshot.LastPrice)
			analyses = append(analyses, analysis)
		}
	}
	return analyses
}

// openPhase walks opportunities in order and opens the ones that clear
// gating, sizing and risk validation, up to the concurrency cap.
func (e *Engine) openPhase(opportunities []signal.Opportunity, report *CycleReport) {
	for _, opp := range opportunities {
		if e.ledger.OpenCount() >= e.cfg.Trading.MaxConcurrentTrades {
			report.Skipped++
			e.log.Debug("Skipping %s: concurrency cap %d reached", opp.Symbol, e.cfg.Trading.MaxConcurrentTrades)
			continue
		}
		if e.ledger.Has(opp.Symbol) {
			report.Skipped++
			e.log.Debug("Skipping %s: position already open", opp.Symbol)
			continue
		}
		// Technical entries need strong confluence; options candidates
		// carry their conviction in the spread setup itself.
		if opp.Kind == types.KindTechnical && opp.Strength != types.StrengthStrong {
			report.Skipped++
			continue
		}

		params, err := e.resolveParameters(opp)
		if err != nil {
			report.Errors = append(report.Errors, err)
			e.log.Warning("Could not size %s opportunity for %s: %v", opp.Kind, opp.Symbol, err)
			monitoring.RecordError(string(engineerrors.CategoryRiskInput))
			continue
		}

		if result := e.validator.ValidateTradeParameters(&params); !result.Valid {
			report.Skipped++
			e.log.Warning("Rejected trade parameters for %s: %s", opp.Symbol, result.Message)
			monitoring.RecordError(string(engineerrors.CategoryValidation))
			continue
		}

		if rejection := e.riskMgr.Validate(params, e.portfolioValue, e.ledger.Snapshot()); rejection != nil {
			report.Skipped++
			e.log.Info("Risk rejected %s: %s", opp.Symbol, rejection)
			monitoring.RecordRejection(string(rejection.Reason))
			continue
		}

		if err := e.executeOpen(&params); err != nil {
			report.Errors = append(report.Errors, err)
			e.log.Error("Failed to open %s on %s: %v", opp.Symbol, e.gateway.Name(), err)
			monitoring.RecordError(string(engineerrors.CategoryExecution))
			continue
		}

		if _, err := e.ledger.ApplyOpen(params); err != nil {
			// Gateway fill without a ledger entry would desync state;
			// surface loudly and keep going.
			report.Errors = append(report.Errors, err)
			e.log.Error("Ledger open failed for %s after fill: %v", opp.Symbol, err)
			continue
		}

		report.Opened++
		e.log.LogOpen(params.Symbol, params.Kind.String(), params.Direction.String(),
			params.EntryPrice, params.PositionSize, params.StopLoss, params.TakeProfit)
		monitoring.RecordOpen(params.Symbol, params.Kind.String(), params.Direction.String())
	}
}

// resolveParameters turns an opportunity into fully bounded trade
// parameters: entry from the snapshot, stop and target from the
// originating strategy, size from the risk manager.
func (e *Engine) resolveParameters(opp signal.Opportunity) (types.TradeParameters, error) {
	strat, ok := e.strategies[opp.Kind]
	if !ok {
		return types.TradeParameters{}, fmt.Errorf("no strategy wired for kind %s", opp.Kind)
	}

	snapshot := opp.Analysis.Snapshot
	entryPrice := snapshot.LastPrice

	volatility := snapshot.Volatility
	if opp.Kind == types.KindOptions && opp.Analysis.Options != nil {
		volatility = opp.Analysis.Options.HistoricalVol
	}

	stopLoss := strat.StopLoss(entryPrice, opp.Direction, volatility)
	takeProfit := strat.TakeProfit(entryPrice, opp.Direction, volatility)

	size, err := e.riskMgr.PositionSize(e.portfolioValue, entryPrice, stopLoss, volatility)
	if err != nil {
		return types.TradeParameters{}, err
	}

	return types.TradeParameters{
		Symbol:       opp.Symbol,
		Kind:         opp.Kind,
		Direction:    opp.Direction,
		EntryPrice:   entryPrice,
		PositionSize: size,
		StopLoss:     stopLoss,
		TakeProfit:   takeProfit,
		OpenedAt:     time.Now(),
	}, nil
}

func (e *Engine) executeOpen(params *types.TradeParameters) error {
	breaker := e.breakers.GetOrCreate("exchange", safety.BreakerConfig{})
	return breaker.Call(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CallTimeout())
		defer cancel()
		return e.gateway.Open(ctx, params)
	})
}

// managePhase sweeps every open position against the current price and
// closes the ones whose exit condition fired. An execution failure
// leaves the position open for the next sweep.
func (e *Engine) managePhase(report *CycleReport) {
	for _, symbol := range e.ledger.Symbols() {
		position, ok := e.ledger.Get(symbol)
		if !ok {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CallTimeout())
		snapshot, err := e.provider.Quote(ctx, symbol)
		cancel()
		if err != nil {
			report.Errors = append(report.Errors, err)
			e.log.Warning("Management sweep: no price for %s: %v", symbol, err)
			monitoring.RecordError(string(engineerrors.CategoryData))
			continue
		}

		price := snapshot.LastPrice
		monitoring.UpdatePrice(symbol, price)

		if !position.ShouldExit(price) {
			continue
		}

		if err := e.executeClose(&position, price); err != nil {
			report.Errors = append(report.Errors, err)
			e.log.Error("Failed to close %s on %s, will retry next cycle: %v", symbol, e.gateway.Name(), err)
			monitoring.RecordError(string(engineerrors.CategoryExecution))
			continue
		}

		closed, err := e.ledger.ApplyClose(symbol, price)
		if err != nil {
			report.Errors = append(report.Errors, err)
			e.log.Error("Ledger close failed for %s: %v", symbol, err)
			continue
		}

		report.Closed++
		e.journal.Record(closed)
		e.log.LogClose(symbol, closed.EntryPrice, closed.ExitPrice, closed.PnL, exitReason(closed))
		monitoring.RecordClose(symbol, closed.PnL)
	}
}

func (e *Engine) executeClose(position *types.Position, price float64) error {
	breaker := e.breakers.GetOrCreate("exchange", safety.BreakerConfig{})
	return breaker.Call(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CallTimeout())
		defer cancel()
		return e.gateway.Close(ctx, position, price)
	})
}

func exitReason(position types.Position) string {
	if position.PnL >= 0 {
		return "take profit"
	}
	return "stop loss"
}

func (e *Engine) publishSnapshot(report *CycleReport) {
	snap := e.ledger.Snapshot()

	prices := make(map[string]float64, len(snap.Positions))
	symbols := make([]string, 0, len(snap.Positions))
	for symbol, pos := range snap.Positions {
		symbols = append(symbols, symbol)
		prices[symbol] = pos.EntryPrice
	}

	e.publisher.Publish(monitoring.EngineSnapshot{
		Timestamp:     time.Now(),
		CycleCount:    e.cycleCount,
		OpenPositions: len(snap.Positions),
		TotalRisk:     snap.TotalRisk,
		Symbols:       symbols,
		LastPrices:    prices,
		Opened:        report.Opened,
		Closed:        report.Closed,
		Skipped:       report.Skipped,
		Errors:        len(report.Errors),
	})
}
