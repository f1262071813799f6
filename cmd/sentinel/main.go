package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/backtest"
	"StockSentinel/internal/cache"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/config"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/scheduler"
	"StockSentinel/internal/watchlist"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init bar cache
	var barCache cache.BarCache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		rc, err := cache.NewRedis(pingCtx, cache.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCancel()
		if err != nil {
			log.Printf("[WARN] redis unavailable, using in-memory cache: %v", err)
		} else {
			barCache = rc
			log.Printf("[INFO] redis cache: %s", cfg.Redis.Addr)
		}
	}
	defer barCache.Close()

	// Init fetchers
	var fetchers []collector.Fetcher
	for _, p := range cfg.DataSource.Providers {
		switch p {
		case "yahoo":
			fetchers = append(fetchers, collector.NewYahooFetcher(cfg.Proxy))
		case "alphavantage":
			fetchers = append(fetchers, collector.NewAlphaVantageFetcher(cfg.DataSource.AlphaVantageKey, cfg.Proxy))
		case "mock":
			fetchers = append(fetchers, &collector.MockFetcher{Price: cfg.DataSource.MockPrice})
		}
	}
	chain := collector.NewChainFetcher(fetchers...)
	log.Printf("[INFO] data sources: %s", chain.Name())
	col := collector.NewCollector(collector.NewCachedFetcher(chain, barCache, cfg.Redis.TTL), cfg.DataSource.HistoryBars)

	// Init watchlist and alerts
	wl, err := watchlist.NewManager(cfg.Watchlist.File)
	if err != nil {
		log.Fatalf("[FATAL] init watchlist: %v", err)
	}
	for _, sym := range cfg.Watchlist.Symbols {
		if _, err := wl.Add(watchlist.DefaultGroup, sym); err != nil {
			log.Printf("[WARN] seed watchlist %s: %v", sym, err)
		}
	}
	alerts, err := alert.NewStore(cfg.Alerts.File)
	if err != nil {
		log.Fatalf("[FATAL] init alerts: %v", err)
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, wl, alerts, backtest.NewRegistry(), tn, rec, scheduler.Options{
		Strategy:       cfg.DataSource.DefaultStrategy,
		TopN:           cfg.Schedule.RankTopN,
		Concurrency:    cfg.Schedule.Concurrency,
		InitialCapital: cfg.Backtest.InitialCapital,
		BacktestBars:   cfg.Backtest.Bars,
	})
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.AlertCron, cfg.Schedule.RankingCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] RUN_ON_START enabled, scanning watchlist now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] StockSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockSentinel stopped")
}
