package engine

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangtran88/crypto-decision-engine/internal/config"
	"github.com/quangtran88/crypto-decision-engine/internal/exchange"
	"github.com/quangtran88/crypto-decision-engine/internal/journal"
	"github.com/quangtran88/crypto-decision-engine/internal/logger"
	"github.com/quangtran88/crypto-decision-engine/internal/monitoring"
	"github.com/quangtran88/crypto-decision-engine/internal/risk"
	"github.com/quangtran88/crypto-decision-engine/internal/strategy"
	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// fakeProvider serves controllable prices per symbol
type fakeProvider struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{prices: make(map[string]float64), errs: make(map[string]error)}
}

func (p *fakeProvider) setPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = price
}

func (p *fakeProvider) Quote(_ context.Context, symbol string) (*types.MarketSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.errs[symbol]; err != nil {
		return nil, err
	}
	return &types.MarketSnapshot{
		Symbol:     symbol,
		LastPrice:  p.prices[symbol],
		Volatility: 0.2,
		Timestamp:  time.Now(),
	}, nil
}

func (p *fakeProvider) Klines(_ context.Context, _, _ string, limit int) ([]types.OHLCV, error) {
	return make([]types.OHLCV, limit), nil
}

// fakeTechnical emits a fixed-strength entry at the provider's price
type fakeTechnical struct {
	provider *fakeProvider
	strength types.SignalStrength
	panics   bool
}

func (s *fakeTechnical) Name() string { return "technical" }

func (s *fakeTechnical) Analyze(ctx context.Context, symbol, timeframe string) (*strategy.Analysis, error) {
	if s.panics {
		panic("indicator blew up")
	}
	snapshot, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &strategy.Analysis{
		Symbol:    symbol,
		Timeframe: timeframe,
		Snapshot:  snapshot,
		Timestamp: time.Now(),
		Technical: &strategy.TechnicalAnalysis{
			Entry: strategy.EntrySignal{
				Valid:     true,
				Direction: types.DirectionLong,
				Strength:  s.strength,
			},
		},
	}, nil
}

func (s *fakeTechnical) StopLoss(entryPrice float64, _ types.Direction, _ float64) float64 {
	return entryPrice * 0.98
}

func (s *fakeTechnical) TakeProfit(entryPrice float64, _ types.Direction, _ float64) float64 {
	return entryPrice * 1.04
}

// fakeOptions never emits candidates
type fakeOptions struct {
	provider *fakeProvider
}

func (s *fakeOptions) Name() string { return "options" }

func (s *fakeOptions) Analyze(ctx context.Context, symbol, timeframe string) (*strategy.Analysis, error) {
	snapshot, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &strategy.Analysis{
		Symbol:    symbol,
		Timeframe: timeframe,
		Snapshot:  snapshot,
		Timestamp: time.Now(),
		Options: &strategy.OptionsAnalysis{
			HistoricalVol: 0.2,
			Candidates:    make(map[strategy.SpreadCategory][]strategy.SpreadCandidate),
		},
	}, nil
}

func (s *fakeOptions) StopLoss(entryPrice float64, _ types.Direction, _ float64) float64 {
	return entryPrice * 0.7
}

func (s *fakeOptions) TakeProfit(entryPrice float64, _ types.Direction, _ float64) float64 {
	return entryPrice * 2.0
}

func testConfig(symbols []string, maxConcurrent int) *config.Config {
	return &config.Config{
		Trading: config.TradingConfig{
			Symbols:             symbols,
			Timeframe:           "1h",
			MaxConcurrentTrades: maxConcurrent,
			PollIntervalSeconds: 3600,
			CallTimeoutSeconds:  5,
			CacheTTLSeconds:     1,
			KlineWindow:         100,
			InitialPortfolio:    1.0,
		},
		Risk: config.RiskConfig{
			MaxRiskPerTrade:       0.02,
			MaxTotalRisk:          0.06,
			MaxPositionSize:       0.2,
			StopLossPct:           0.02,
			TakeProfitPct:         0.04,
			CorrelatedExposureCap: 0.15,
		},
		Journal: config.JournalConfig{OutputDir: "journal"},
	}
}

type testHarness struct {
	engine    *Engine
	provider  *fakeProvider
	technical *fakeTechnical
	gateway   *exchange.PaperGateway
	journal   *journal.Journal
	publisher *monitoring.SnapshotPublisher
}

func newHarness(t *testing.T, cfg *config.Config) *testHarness {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	log, err := logger.New(false)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	provider := newFakeProvider()
	for _, symbol := range cfg.Trading.Symbols {
		provider.setPrice(symbol, 100.0)
	}

	technical := &fakeTechnical{provider: provider, strength: types.StrengthStrong}
	gateway := exchange.NewPaperGateway()
	jrnl := journal.New()
	publisher := monitoring.NewSnapshotPublisher()

	eng := New(cfg, Deps{
		Logger:    log,
		Provider:  provider,
		Technical: technical,
		Options:   &fakeOptions{provider: provider},
		RiskMgr: risk.NewManager(risk.Limits{
			MaxRiskPerTrade:       cfg.Risk.MaxRiskPerTrade,
			MaxTotalRisk:          cfg.Risk.MaxTotalRisk,
			MaxPositionSize:       cfg.Risk.MaxPositionSize,
			StopLossPct:           cfg.Risk.StopLossPct,
			TakeProfitPct:         cfg.Risk.TakeProfitPct,
			CorrelatedExposureCap: cfg.Risk.CorrelatedExposureCap,
		}),
		Gateway:   gateway,
		Journal:   jrnl,
		Health:    monitoring.NewHealthChecker(time.Minute),
		Publisher: publisher,
	})

	return &testHarness{
		engine:    eng,
		provider:  provider,
		technical: technical,
		gateway:   gateway,
		journal:   jrnl,
		publisher: publisher,
	}
}

// TestCycle_OpensUpToConcurrencyCap tests that the cap stops the sixth
// candidate while the first five open.
func TestCycle_OpensUpToConcurrencyCap(t *testing.T) {
	symbols := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "XRPUSDT", "ADAUSDT", "DOTUSDT"}
	h := newHarness(t, testConfig(symbols, 5))

	h.engine.runCycle()

	assert.Equal(t, 5, h.engine.Ledger().OpenCount())
	opened, _ := h.gateway.Fills()
	assert.Equal(t, 5, opened)

	snap := h.publisher.Latest()
	assert.Equal(t, 5, snap.Opened)
	assert.GreaterOrEqual(t, snap.Skipped, 1)
}

// TestCycle_NoDuplicatePositionPerSymbol tests that a second cycle does
// not reopen symbols that already hold positions.
func TestCycle_NoDuplicatePositionPerSymbol(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT", "ETHUSDT"}, 5))

	h.engine.runCycle()
	require.Equal(t, 2, h.engine.Ledger().OpenCount())

	h.engine.runCycle()
	assert.Equal(t, 2, h.engine.Ledger().OpenCount())
	opened, _ := h.gateway.Fills()
	assert.Equal(t, 2, opened)
}

// TestCycle_WeakTechnicalEntriesSkipped tests the conviction gate
func TestCycle_WeakTechnicalEntriesSkipped(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT"}, 5))
	h.technical.strength = types.StrengthWeak

	h.engine.runCycle()

	assert.Equal(t, 0, h.engine.Ledger().OpenCount())
	assert.GreaterOrEqual(t, h.publisher.Latest().Skipped, 1)
}

// TestCycle_ManagementSweepClosesAtTarget tests exit on take-profit: the
// position opened at 100 closes once price crosses 104.
func TestCycle_ManagementSweepClosesAtTarget(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT"}, 5))

	h.engine.runCycle()
	require.Equal(t, 1, h.engine.Ledger().OpenCount())

	h.provider.setPrice("BTCUSDT", 105.0)
	h.engine.runCycle()

	assert.Equal(t, 0, h.engine.Ledger().OpenCount())
	_, closed := h.gateway.Fills()
	assert.Equal(t, 1, closed)

	entries := h.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 105.0, entries[0].Exit)
	assert.Greater(t, entries[0].PnL, 0.0)
}

// TestCycle_StopLossExit tests exit on the loss side
func TestCycle_StopLossExit(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT"}, 5))

	h.engine.runCycle()
	require.Equal(t, 1, h.engine.Ledger().OpenCount())

	h.provider.setPrice("BTCUSDT", 97.0)
	h.engine.runCycle()

	assert.Equal(t, 0, h.engine.Ledger().OpenCount())
	entries := h.journal.Entries()
	require.Len(t, entries, 1)
	assert.Less(t, entries[0].PnL, 0.0)
}

// TestCycle_AnalysisFailureIsolatesSymbol tests that one symbol's data
// failure does not block the others.
func TestCycle_AnalysisFailureIsolatesSymbol(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT", "ETHUSDT"}, 5))
	h.provider.errs["ETHUSDT"] = errors.New("exchange unreachable")

	h.engine.runCycle()

	assert.True(t, h.engine.Ledger().Has("BTCUSDT"))
	assert.False(t, h.engine.Ledger().Has("ETHUSDT"))
	assert.GreaterOrEqual(t, h.publisher.Latest().Errors, 1)
}

// TestCycle_PanicContained tests that a panicking strategy fails the
// cycle without tearing the engine down.
func TestCycle_PanicContained(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT"}, 5))
	h.technical.panics = true

	h.engine.runCycle()

	assert.Equal(t, 1, h.publisher.Latest().Errors)
	assert.Equal(t, 0, h.engine.Ledger().OpenCount())

	// Next cycle runs normally once the fault clears
	h.technical.panics = false
	h.engine.runCycle()
	assert.Equal(t, 1, h.engine.Ledger().OpenCount())
}

// TestStop_DrainsOpenPositions tests the shutdown drain: every open
// position is force-closed at the freshest available price.
func TestStop_DrainsOpenPositions(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT", "ETHUSDT"}, 5))

	require.NoError(t, h.engine.Start())
	require.Eventually(t, func() bool {
		return h.engine.Ledger().OpenCount() == 2
	}, 5*time.Second, 10*time.Millisecond)

	h.provider.setPrice("BTCUSDT", 102.0)
	h.engine.Stop()

	assert.Equal(t, 0, h.engine.Ledger().OpenCount())
	assert.Equal(t, 0.0, h.engine.Ledger().TotalRisk())

	entries := h.journal.Entries()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		if entry.Symbol == "BTCUSDT" {
			assert.Equal(t, 102.0, entry.Exit)
		}
	}
}

// TestStop_DrainFallsBackToEntryPrice tests the drain when market data
// is gone: the position closes at its entry price.
func TestStop_DrainFallsBackToEntryPrice(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT"}, 5))

	require.NoError(t, h.engine.Start())
	require.Eventually(t, func() bool {
		return h.engine.Ledger().OpenCount() == 1
	}, 5*time.Second, 10*time.Millisecond)

	h.provider.mu.Lock()
	h.provider.errs["BTCUSDT"] = errors.New("feed down")
	h.provider.mu.Unlock()

	h.engine.Stop()

	entries := h.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 100.0, entries[0].Exit)
	assert.Equal(t, 0.0, entries[0].PnL)
}

// TestStart_RejectsDoubleStart tests the running guard
func TestStart_RejectsDoubleStart(t *testing.T) {
	h := newHarness(t, testConfig([]string{"BTCUSDT"}, 5))

	require.NoError(t, h.engine.Start())
	assert.Error(t, h.engine.Start())
	h.engine.Stop()
}
