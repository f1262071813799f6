package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			strategy        TEXT,
			as_of           INTEGER,
			bars            INTEGER,
			close           REAL,
			rsi             REAL,
			macd            REAL,
			macd_signal     REAL,
			macd_histogram  REAL,
			bb_upper        REAL,
			bb_middle       REAL,
			bb_lower        REAL,
			stoch_k         REAL,
			stoch_d         REAL,
			atr             REAL,
			support         REAL,
			resistance      REAL,
			technical_score REAL,
			trend_score     REAL,
			enhanced_score  REAL,
			momentum_score  REAL,
			risk_score      REAL,
			strategy_score  REAL,
			overall_score   REAL,
			suggestion      TEXT,
			tags            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			rule_id    TEXT,
			symbol     TEXT,
			kind       TEXT,
			indicator  TEXT,
			condition  TEXT,
			threshold  REAL,
			value      REAL,
			message    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_ts ON alert_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS backtests (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT,
			strategy        TEXT,
			bars            INTEGER,
			initial_capital REAL,
			final_value     REAL,
			total_return    REAL,
			win_rate        REAL,
			max_drawdown    REAL,
			sharpe_ratio    REAL,
			trades          INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtests_ts ON backtests(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ind := a.Indicators
	sc := a.Scores
	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, symbol, strategy, as_of, bars, close,
		 rsi, macd, macd_signal, macd_histogram, bb_upper, bb_middle, bb_lower,
		 stoch_k, stoch_d, atr, support, resistance,
		 technical_score, trend_score, enhanced_score, momentum_score, risk_score, strategy_score, overall_score,
		 suggestion, tags)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), a.Symbol, string(a.Strategy), a.AsOf.Unix(), a.Bars, a.Close,
		ind.RSI, ind.MACD.MACD, ind.MACD.Signal, ind.MACD.Histogram,
		ind.Bollinger.Upper, ind.Bollinger.Middle, ind.Bollinger.Lower,
		ind.Stochastic.K, ind.Stochastic.D, ind.ATR.ATR,
		a.SupportResistance.Support, a.SupportResistance.Resistance,
		sc.Technical, sc.PriceTrend, sc.Enhanced, sc.Momentum, sc.Risk, sc.StrategyAdjustment, sc.Overall,
		string(a.Signal.Suggestion), strings.Join(a.Signal.Tags, ","),
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alert_events
		(timestamp, rule_id, symbol, kind, indicator, condition, threshold, value, message)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), evt.RuleID, evt.Symbol, evt.Kind, evt.Indicator,
		evt.Condition, evt.Threshold, evt.Value, evt.Message,
	)
	return err
}

func (r *SQLiteRecorder) RecordBacktest(run *BacktestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := run.Report
	_, err := r.db.Exec(`INSERT INTO backtests
		(timestamp, symbol, strategy, bars, initial_capital, final_value,
		 total_return, win_rate, max_drawdown, sharpe_ratio, trades)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), run.Symbol, rep.Strategy, run.Bars, rep.InitialCapital, rep.FinalValue,
		rep.TotalReturn, rep.WinRate, rep.MaxDrawdown, rep.SharpeRatio, len(rep.Trades),
	)
	return err
}

// History returns the most recent stored analyses for symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]AnalysisRow, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, strategy, close, rsi, technical_score, overall_score, suggestion
		FROM analyses WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRow
	for rows.Next() {
		var row AnalysisRow
		var ts int64
		if err := rows.Scan(&ts, &row.Symbol, &row.Strategy, &row.Close, &row.RSI,
			&row.Technical, &row.Overall, &row.Suggestion); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		row.Timestamp = time.Unix(ts, 0)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
