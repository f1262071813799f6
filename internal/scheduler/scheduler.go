package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/backtest"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/watchlist"
)

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options tunes scans and backtests.
type Options struct {
	Strategy       string
	TopN           int
	Concurrency    int
	InitialCapital float64
	BacktestBars   int
}

// Scheduler manages all cron tasks and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Watchlist *watchlist.Manager
	Alerts    *alert.Store
	Backtests *backtest.Registry
	Notifier  Notifier
	Recorder  recorder.Recorder
	Opts      Options
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, wl *watchlist.Manager, alerts *alert.Store,
	bt *backtest.Registry, n Notifier, rec recorder.Recorder, opts Options) *Scheduler {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Watchlist: wl,
		Alerts:    alerts,
		Backtests: bt,
		Notifier:  n,
		Recorder:  rec,
		Opts:      opts,
		Ctx:       ctx,
	}
}

// RegisterAll registers the watchlist scan, alert check and ranking tasks.
func (s *Scheduler) RegisterAll(scanCron, alertCron, rankingCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(alertCron, s.alertTask); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	if _, err := s.Cron.AddFunc(rankingCron, s.rankingTask); err != nil {
		return fmt.Errorf("register ranking task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the watchlist scan immediately (for RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

// ScanResult holds the analyses of one scan and the symbols that failed.
type ScanResult struct {
	Analyses []*model.Analysis
	Failed   []string
}

// Scan analyzes symbols concurrently, bounded by Opts.Concurrency.
// A failing symbol is logged and listed in Failed; it never aborts the scan.
func (s *Scheduler) Scan(ctx context.Context, symbols []string) ScanResult {
	results := make([]*model.Analysis, len(symbols))
	var mu sync.Mutex
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Opts.Concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			a, err := s.Collector.Analyze(gctx, sym, s.Opts.Strategy)
			if err != nil {
				log.Printf("[WARN] analyze %s: %v", sym, err)
				mu.Lock()
				failed = append(failed, sym)
				mu.Unlock()
				return nil
			}
			results[i] = a
			return nil
		})
	}
	_ = g.Wait()

	out := ScanResult{Failed: failed}
	for _, a := range results {
		if a != nil {
			out.Analyses = append(out.Analyses, a)
		}
	}
	sort.Strings(out.Failed)
	return out
}

// Rank orders analyses by overall score, highest first, and keeps the top n.
func Rank(analyses []*model.Analysis, n int) []*model.Analysis {
	ranked := append([]*model.Analysis(nil), analyses...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Scores.Overall != ranked[j].Scores.Overall {
			return ranked[i].Scores.Overall > ranked[j].Scores.Overall
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (s *Scheduler) scanTask() {
	symbols := s.Watchlist.AllSymbols()
	log.Printf("[INFO] running watchlist scan over %d symbols", len(symbols))
	res := s.Scan(s.Ctx, symbols)
	for _, a := range res.Analyses {
		if err := s.Recorder.RecordAnalysis(a); err != nil {
			log.Printf("[ERROR] record analysis %s: %v", a.Symbol, err)
		}
	}
	s.checkAlerts(res.Analyses)
	if len(res.Failed) > 0 {
		s.trySend(fmt.Sprintf("⚠️ Scan could not analyze: %v", res.Failed))
	}
}

func (s *Scheduler) alertTask() {
	symbols := s.Alerts.Symbols()
	if len(symbols) == 0 {
		return
	}
	log.Printf("[INFO] checking alerts for %d symbols", len(symbols))
	res := s.Scan(s.Ctx, symbols)
	s.checkAlerts(res.Analyses)
}

func (s *Scheduler) rankingTask() {
	symbols := s.Watchlist.AllSymbols()
	log.Printf("[INFO] ranking %d symbols", len(symbols))
	res := s.Scan(s.Ctx, symbols)
	s.trySend(notifier.FormatRanking(Rank(res.Analyses, s.Opts.TopN), len(symbols), res.Failed))
}

func (s *Scheduler) checkAlerts(analyses []*model.Analysis) {
	for _, a := range analyses {
		fired, err := s.Alerts.Check(a)
		if err != nil {
			log.Printf("[ERROR] save alerts after checking %s: %v", a.Symbol, err)
		}
		for _, r := range fired {
			s.trySend(notifier.FormatAlertFired(r))
			if err := s.Recorder.RecordAlert(&recorder.AlertEvent{
				RuleID:    r.ID,
				Symbol:    r.Symbol,
				Kind:      string(r.Kind),
				Indicator: r.Indicator,
				Condition: string(r.Condition),
				Threshold: r.Threshold,
				Value:     r.Value,
				Message:   r.Message,
			}); err != nil {
				log.Printf("[ERROR] record alert: %v", err)
			}
		}
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
