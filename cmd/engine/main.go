package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quangtran88/crypto-decision-engine/internal/bybit"
	"github.com/quangtran88/crypto-decision-engine/internal/config"
	"github.com/quangtran88/crypto-decision-engine/internal/engine"
	"github.com/quangtran88/crypto-decision-engine/internal/exchange"
	"github.com/quangtran88/crypto-decision-engine/internal/journal"
	"github.com/quangtran88/crypto-decision-engine/internal/logger"
	"github.com/quangtran88/crypto-decision-engine/internal/market"
	"github.com/quangtran88/crypto-decision-engine/internal/monitoring"
	"github.com/quangtran88/crypto-decision-engine/internal/risk"
	"github.com/quangtran88/crypto-decision-engine/internal/strategy"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file (e.g., engine.json)")
		stream     = flag.Bool("stream", true, "Use websocket ticker stream for fresher prices (default: true)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("🚀 Trading Decision Engine Starting...")
	fmt.Printf("📊 Symbols: %s\n", strings.Join(cfg.Trading.Symbols, ", "))
	fmt.Printf("⏰ Timeframe: %s\n", cfg.Trading.Timeframe)
	fmt.Printf("🏪 Exchange: %s (%s)\n", cfg.Exchange.Name, cfg.Exchange.Category)
	fmt.Printf("🧪 Dry Run: %v\n", cfg.Exchange.DryRun)
	fmt.Println("=" + strings.Repeat("=", 50))

	engineLogger, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer engineLogger.Close()

	client := bybit.NewClient(bybit.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Category:  cfg.Exchange.Category,
		Testnet:   cfg.Exchange.Testnet,
	})

	if !cfg.Exchange.DryRun && (cfg.Exchange.APIKey == "" || cfg.Exchange.APISecret == "") {
		log.Fatal("Please set BYBIT_API_KEY and BYBIT_API_SECRET in .env file or environment variables")
	}
	if cfg.Exchange.DryRun {
		fmt.Println("📝 Note: Dry run uses a paper gateway - no real orders are placed")
	} else {
		fmt.Println("⚠️  LIVE TRADING MODE - Real orders will be placed!")
	}

	// Market data: REST provider, TTL cache, optional stream overlay
	var provider market.Provider = market.NewBybitProvider(client, cfg.Trading.Timeframe, cfg.Trading.KlineWindow)
	provider = market.NewCachedProvider(provider, cfg.CacheTTL())

	var tickerStream *market.TickerStream
	if *stream {
		tickerStream = market.NewTickerStream(
			market.StreamURL(cfg.Exchange.Category, cfg.Exchange.Testnet),
			cfg.Trading.Symbols,
		)
		if err := tickerStream.Start(); err != nil {
			engineLogger.Warning("Ticker stream unavailable, falling back to REST quotes: %v", err)
			tickerStream = nil
		} else {
			provider = market.NewStreamedProvider(provider, tickerStream)
			defer tickerStream.Stop()
		}
	}

	limits := risk.Limits{
		MaxRiskPerTrade:       cfg.Risk.MaxRiskPerTrade,
		MaxTotalRisk:          cfg.Risk.MaxTotalRisk,
		MaxPositionSize:       cfg.Risk.MaxPositionSize,
		StopLossPct:           cfg.Risk.StopLossPct,
		TakeProfitPct:         cfg.Risk.TakeProfitPct,
		CorrelatedExposureCap: cfg.Risk.CorrelatedExposureCap,
	}
	riskMgr := risk.NewManager(limits)

	var gateway exchange.Gateway
	if cfg.Exchange.DryRun {
		gateway = exchange.NewPaperGateway()
	} else {
		gateway = exchange.NewBybitGateway(client)
	}

	health := monitoring.NewHealthChecker(3 * cfg.PollInterval())
	publisher := monitoring.NewSnapshotPublisher()
	startMonitoringServers(cfg, health, publisher, engineLogger)

	eng := engine.New(cfg, engine.Deps{
		Logger:    engineLogger,
		Provider:  provider,
		Technical: strategy.NewTechnicalStrategy(provider, riskMgr, cfg.Trading.KlineWindow),
		Options:   strategy.NewOptionsStrategy(provider, cfg.Trading.KlineWindow),
		RiskMgr:   riskMgr,
		Gateway:   gateway,
		Journal:   journal.New(),
		Health:    health,
		Publisher: publisher,
	})

	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n🛑 Shutdown signal received...")
	eng.Stop()
	fmt.Println("✅ Engine stopped successfully")
}

// startMonitoringServers serves Prometheus metrics on one port and
// health plus the engine snapshot on another.
func startMonitoringServers(cfg *config.Config, health *monitoring.HealthChecker, publisher *monitoring.SnapshotPublisher, engineLogger *logger.Logger) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", monitoring.NewMetricsHandler())
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			engineLogger.Error("Metrics server failed: %v", err)
		}
	}()

	healthMux := http.NewServeMux()
	healthMux.Handle("/health", health)
	healthMux.Handle("/snapshot", publisher)
	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.HealthPort),
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			engineLogger.Error("Health server failed: %v", err)
		}
	}()
}
