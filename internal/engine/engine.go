// Package engine drives the trading decision loop: analyze symbols,
// aggregate opportunities, validate against risk limits, execute, and
// manage open positions until exit.
package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quangtran88/crypto-decision-engine/internal/config"
	"github.com/quangtran88/crypto-decision-engine/internal/exchange"
	"github.com/quangtran88/crypto-decision-engine/internal/journal"
	"github.com/quangtran88/crypto-decision-engine/internal/logger"
	"github.com/quangtran88/crypto-decision-engine/internal/market"
	"github.com/quangtran88/crypto-decision-engine/internal/monitoring"
	"github.com/quangtran88/crypto-decision-engine/internal/portfolio"
	"github.com/quangtran88/crypto-decision-engine/internal/risk"
	"github.com/quangtran88/crypto-decision-engine/internal/safety"
	"github.com/quangtran88/crypto-decision-engine/internal/signal"
	"github.com/quangtran88/crypto-decision-engine/internal/strategy"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Engine owns the trading loop and all portfolio state. Collaborators
// are injected; the engine never constructs its own dependencies.
type Engine struct {
	cfg        *config.Config
	log        *logger.Logger
	provider   market.Provider
	strategies map[types.OpportunityKind]strategy.Strategy
	aggregator *signal.Aggregator
	riskMgr    *risk.Manager
	ledger     *portfolio.Ledger
	gateway    exchange.Gateway
	validator  *safety.Validator
	breakers   *safety.Manager
	journal    *journal.Journal
	health     *monitoring.HealthChecker
	publisher  *monitoring.SnapshotPublisher

	portfolioValue float64
	cycleCount     uint64

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// Deps bundles the engine's collaborators
type Deps struct {
	Logger    *logger.Logger
	Provider  market.Provider
	Technical strategy.Strategy
	Options   strategy.Strategy
	RiskMgr   *risk.Manager
	Gateway   exchange.Gateway
	Journal   *journal.Journal
	Health    *monitoring.HealthChecker
	Publisher *monitoring.SnapshotPublisher
}

// New creates an engine with an empty ledger
func New(cfg *config.Config, deps Deps) *Engine {
	return &Engine{
		cfg: cfg,
		log: deps.Logger,
		strategies: map[types.OpportunityKind]strategy.Strategy{
			types.KindTechnical: deps.Technical,
			types.KindOptions:   deps.Options,
		},
		provider:       deps.Provider,
		aggregator:     signal.NewAggregator(),
		riskMgr:        deps.RiskMgr,
		ledger:         portfolio.NewLedger(),
		gateway:        deps.Gateway,
		validator:      safety.NewValidator(),
		breakers:       safety.NewManager(),
		journal:        deps.Journal,
		health:         deps.Health,
		publisher:      deps.Publisher,
		portfolioValue: cfg.Trading.InitialPortfolio,
		stopChan:       make(chan struct{}),
		doneChan:       make(chan struct{}),
	}
}

// Ledger exposes the engine's position ledger for read access
func (e *Engine) Ledger() *portfolio.Ledger {
	return e.ledger
}

// Start begins the trading loop in a background goroutine
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("engine already running")
	}
	e.running = true
	e.mu.Unlock()

	e.printStartupInfo()
	fmt.Printf("📝 Trading logs: %s\n", e.log.GetLogPath())
	fmt.Printf("🔄 Engine is running... (activity logged to file)\n\n")

	go e.tradingLoop()
	return nil
}

// Stop signals the loop to end, waits for it, then drains the ledger by
// force-closing every open position.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()

	close(e.stopChan)

	select {
	case <-e.doneChan:
	case <-time.After(e.cfg.CallTimeout() + 5*time.Second):
		e.log.Warning("Trading loop did not stop in time, draining anyway")
	}

	fmt.Printf("🔄 Closing open positions...\n")
	e.drain()

	e.journal.PrintSummary()
	if path, err := e.journal.ExportXLSX(e.cfg.Journal.OutputDir); err != nil {
		e.log.Error("Failed to export trade journal: %v", err)
	} else {
		fmt.Printf("📊 Trade journal: %s\n", path)
	}
}

// tradingLoop runs one cycle immediately, then on every poll tick
func (e *Engine) tradingLoop() {
	defer close(e.doneChan)

	e.runCycle()

	ticker := time.NewTicker(e.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.runCycle()
		case <-e.stopChan:
			e.log.Info("Stop signal received - ending trading loop")
			return
		}
	}
}

// drain force-closes all open positions at the freshest price we can
// get, falling back to the entry price when market data is unavailable.
func (e *Engine) drain() {
	for _, symbol := range e.ledger.Symbols() {
		position, ok := e.ledger.Get(symbol)
		if !ok {
			continue
		}

		exitPrice := position.EntryPrice
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CallTimeout())
		if snapshot, err := e.provider.Quote(ctx, symbol); err == nil {
			exitPrice = snapshot.LastPrice
		} else {
			e.log.Warning("Drain: no fresh price for %s, closing at entry: %v", symbol, err)
		}

		if err := e.gateway.Close(ctx, &position, exitPrice); err != nil {
			e.log.Error("Drain: failed to close %s on %s: %v", symbol, e.gateway.Name(), err)
		}
		cancel()

		closed, err := e.ledger.ApplyClose(symbol, exitPrice)
		if err != nil {
			e.log.Error("Drain: ledger close failed for %s: %v", symbol, err)
			continue
		}

		e.journal.Record(closed)
		e.log.LogClose(symbol, closed.EntryPrice, closed.ExitPrice, closed.PnL, "shutdown drain")
		monitoring.RecordClose(symbol, closed.PnL)
	}

	monitoring.UpdateRisk(e.ledger.TotalRisk(), e.ledger.OpenCount())
}

// printStartupInfo renders the engine configuration table
func (e *Engine) printStartupInfo() {
	limits := e.riskMgr.Limits()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("DECISION ENGINE")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbols", fmt.Sprintf("%v", e.cfg.Trading.Symbols)},
		{"⏰ Timeframe", e.cfg.Trading.Timeframe},
		{"🔁 Poll Interval", e.cfg.PollInterval().String()},
		{"🏪 Gateway", e.gateway.Name()},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"💰 Portfolio", fmt.Sprintf("$%.2f", e.portfolioValue)},
		{"🎯 Risk / Trade", fmt.Sprintf("%.2f%%", limits.MaxRiskPerTrade*100)},
		{"🎯 Total Risk Cap", fmt.Sprintf("%.2f%%", limits.MaxTotalRisk*100)},
		{"🔄 Max Concurrent", fmt.Sprintf("%d", e.cfg.Trading.MaxConcurrentTrades)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}
