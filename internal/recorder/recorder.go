package recorder

import (
	"time"

	"StockSentinel/internal/model"
)

// AlertEvent records one fired alert.
type AlertEvent struct {
	RuleID    string
	Symbol    string
	Kind      string
	Indicator string
	Condition string
	Threshold float64
	Value     float64
	Message   string
}

// BacktestRun records one backtest result.
type BacktestRun struct {
	Symbol string
	Bars   int
	Report *model.PerformanceReport
}

// AnalysisRow is one stored analysis, as returned by History.
type AnalysisRow struct {
	Timestamp  time.Time
	Symbol     string
	Strategy   string
	Close      float64
	RSI        float64
	Technical  float64
	Overall    float64
	Suggestion string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) error
	RecordAlert(evt *AlertEvent) error
	RecordBacktest(run *BacktestRun) error
	History(symbol string, limit int) ([]AnalysisRow, error)
	Close() error
}
