package backtest

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

const tradingDaysPerYear = 252

// Evaluate turns an ordered trade list into performance metrics.
// The equity curve starts at initialCapital and adds each trade's recorded profit.
// An empty trade list yields the baseline report, never an error.
func Evaluate(trades []model.Trade, initialCapital float64) model.PerformanceReport {
	report := model.PerformanceReport{
		InitialCapital: initialCapital,
		FinalValue:     initialCapital,
		EquityCurve:    []float64{initialCapital},
		Trades:         trades,
	}
	if len(trades) == 0 {
		report.Trades = []model.Trade{}
		return report
	}

	equity := decimal.NewFromFloat(initialCapital)
	var returns []float64
	wins := 0
	for _, t := range trades {
		profit := t.RealizedProfit()
		if profit > 0 {
			wins++
		}
		if t.Profit != nil && !equity.IsZero() {
			returns = append(returns, decimal.NewFromFloat(profit).Div(equity).InexactFloat64())
		}
		equity = equity.Add(decimal.NewFromFloat(profit))
		report.EquityCurve = append(report.EquityCurve, equity.InexactFloat64())
	}

	report.FinalValue = equity.InexactFloat64()
	if initialCapital != 0 {
		report.TotalReturn = equity.Sub(decimal.NewFromFloat(initialCapital)).
			Div(decimal.NewFromFloat(initialCapital)).InexactFloat64()
	}
	report.WinRate = float64(wins) / float64(len(trades))
	report.MaxDrawdown = calculator.MaxDrawdown(report.EquityCurve)
	report.SharpeRatio = sharpe(returns)
	return report
}

// sharpe is mean/stddev annualised over 252 periods, using talib's population stddev.
// Fewer than two returns or (near) zero variance give 0.
func sharpe(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	mean := talib.Sma(returns, n)[n-1]
	std := talib.StdDev(returns, n, 1)[n-1]
	if std == 0 || math.IsNaN(std) || math.IsNaN(mean) {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}
