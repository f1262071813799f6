package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"StockSentinel/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_AnalysisHistory(t *testing.T) {
	r := openTestRecorder(t)
	base := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

	for i, overall := range []float64{40, 55, 70} {
		ts := base.Add(time.Duration(i) * time.Hour)
		r.now = func() time.Time { return ts }
		a := &model.Analysis{
			Symbol:   "AAPL",
			Strategy: model.StrategyBalanced,
			Close:    180 + float64(i),
			AsOf:     ts,
			Scores:   model.ScoreBreakdown{Technical: 60, Overall: overall},
			Signal:   model.Signal{Suggestion: model.SuggestionHold, Tags: []string{"near support"}},
		}
		if err := r.RecordAnalysis(a); err != nil {
			t.Fatalf("RecordAnalysis: %v", err)
		}
	}
	if err := r.RecordAnalysis(&model.Analysis{Symbol: "MSFT"}); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}

	rows, err := r.History("AAPL", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Overall != 70 || rows[1].Overall != 55 {
		t.Errorf("expected newest first, got %+v", rows)
	}
	if rows[0].Strategy != "balanced" || rows[0].Suggestion != "HOLD" || rows[0].Close != 182 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestSQLiteRecorder_AlertAndBacktest(t *testing.T) {
	r := openTestRecorder(t)
	if err := r.RecordAlert(&AlertEvent{RuleID: "x", Symbol: "AAPL", Kind: "price", Condition: "above", Threshold: 150, Value: 151, Message: "m"}); err != nil {
		t.Fatalf("RecordAlert: %v", err)
	}
	report := &model.PerformanceReport{Strategy: "rsi", InitialCapital: 10000, FinalValue: 10500}
	if err := r.RecordBacktest(&BacktestRun{Symbol: "AAPL", Bars: 250, Report: report}); err != nil {
		t.Fatalf("RecordBacktest: %v", err)
	}

	var alerts, backtests int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM alert_events`).Scan(&alerts); err != nil {
		t.Fatal(err)
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM backtests WHERE strategy = 'rsi'`).Scan(&backtests); err != nil {
		t.Fatal(err)
	}
	if alerts != 1 || backtests != 1 {
		t.Errorf("alerts=%d backtests=%d, want 1 each", alerts, backtests)
	}
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.RecordAnalysis(&model.Analysis{Symbol: "NVDA"}); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	r.Close()

	r2, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()
	rows, err := r2.History("NVDA", 0)
	if err != nil || len(rows) != 1 {
		t.Errorf("History after reopen = %v, %v", rows, err)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordAnalysis(&model.Analysis{}); err != nil {
		t.Error(err)
	}
	if rows, err := r.History("X", 5); err != nil || rows != nil {
		t.Errorf("History = %v, %v", rows, err)
	}
}
