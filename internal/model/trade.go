package model

import "time"

// TradeType is the side of an executed trade.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Trade is one executed trade. Profit is nil when the trade realised nothing (e.g. an entry).
type Trade struct {
	Type   TradeType `json:"type"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
	Profit *float64  `json:"profit,omitempty"`
}

// RealizedProfit returns the recorded profit, or 0 when none was recorded.
func (t Trade) RealizedProfit() float64 {
	if t.Profit == nil {
		return 0
	}
	return *t.Profit
}

// PerformanceReport summarises a backtest.
type PerformanceReport struct {
	Strategy       string    `json:"strategy,omitempty"`
	InitialCapital float64   `json:"initial_capital"`
	FinalValue     float64   `json:"final_value"`
	TotalReturn    float64   `json:"total_return"`
	WinRate        float64   `json:"win_rate"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	EquityCurve    []float64 `json:"equity_curve"`
	Trades         []Trade   `json:"trades"`
}
