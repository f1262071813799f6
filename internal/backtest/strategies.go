package backtest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// StrategyFunc generates an ordered trade list from a price series and starting capital.
type StrategyFunc func(bars model.Series, capital float64) []model.Trade

// Registry maps strategy names to trade generators.
type Registry struct {
	strategies map[string]StrategyFunc
}

// NewRegistry returns a registry holding the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]StrategyFunc)}
	r.Register("sma_crossover", SMACrossover)
	r.Register("rsi", RSIReversion)
	r.Register("macd", MACDCrossover)
	return r
}

// Register adds or replaces a named strategy. Names are case-insensitive.
func (r *Registry) Register(name string, fn StrategyFunc) {
	r.strategies[strings.ToLower(strings.TrimSpace(name))] = fn
}

// Names lists the registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run generates trades with the named strategy and evaluates them.
func (r *Registry) Run(name string, bars model.Series, capital float64) (model.PerformanceReport, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	fn, ok := r.strategies[key]
	if !ok {
		return model.PerformanceReport{}, fmt.Errorf("backtest strategy %q not registered (have %s)", name, strings.Join(r.Names(), ", "))
	}
	report := Evaluate(fn(bars, capital), capital)
	report.Strategy = key
	return report, nil
}

// Compare runs several strategies over the same series.
func (r *Registry) Compare(names []string, bars model.Series, capital float64) (map[string]model.PerformanceReport, error) {
	out := make(map[string]model.PerformanceReport, len(names))
	for _, n := range names {
		report, err := r.Run(n, bars, capital)
		if err != nil {
			return nil, err
		}
		out[report.Strategy] = report
	}
	return out, nil
}

const (
	smaFast = 10
	smaSlow = 30

	rsiEntry = 30.0
	rsiExit  = 70.0
)

// decision reports whether to enter or exit at bar i, given the bars up to and including i.
type decision func(i int) (enter, exit bool)

// simulate runs a long-only, fully invested position through the bars.
// An open position is closed at the last bar.
func simulate(bars model.Series, capital float64, decide decision) []model.Trade {
	trades := []model.Trade{}
	cash := decimal.NewFromFloat(capital)
	var shares, cost decimal.Decimal
	holding := false

	for i, b := range bars {
		enter, exit := decide(i)
		price := decimal.NewFromFloat(b.Close)
		if price.IsZero() {
			continue
		}
		last := i == len(bars)-1

		switch {
		case !holding && enter && !last:
			shares = cash.Div(price)
			cost = cash
			cash = decimal.Zero
			holding = true
			trades = append(trades, model.Trade{Type: model.TradeBuy, Price: b.Close, Time: b.Time})

		case holding && (exit || last):
			proceeds := shares.Mul(price)
			profit := proceeds.Sub(cost).Round(8).InexactFloat64()
			cash = proceeds
			holding = false
			trades = append(trades, model.Trade{Type: model.TradeSell, Price: b.Close, Time: b.Time, Profit: &profit})
		}
	}
	return trades
}

// SMACrossover buys when the 10-bar SMA crosses above the 30-bar SMA and sells on the reverse cross.
func SMACrossover(bars model.Series, capital float64) []model.Trade {
	closes := bars.Closes()
	spread := make([]float64, len(closes))
	valid := make([]bool, len(closes))
	for i := smaSlow - 1; i < len(closes); i++ {
		fast, err1 := calculator.CalculateSMA(closes[:i+1], smaFast)
		slow, err2 := calculator.CalculateSMA(closes[:i+1], smaSlow)
		if err1 == nil && err2 == nil {
			spread[i], valid[i] = fast-slow, true
		}
	}
	return simulate(bars, capital, func(i int) (bool, bool) {
		if i == 0 || !valid[i] || !valid[i-1] {
			return false, false
		}
		return spread[i-1] <= 0 && spread[i] > 0, spread[i-1] >= 0 && spread[i] < 0
	})
}

// RSIReversion buys when RSI drops below 30 and sells once it rises above 70.
func RSIReversion(bars model.Series, capital float64) []model.Trade {
	return simulate(bars, capital, func(i int) (bool, bool) {
		if i < calculator.DefaultRSIPeriod {
			return false, false
		}
		rsi := calculator.CalculateRSI(bars[:i+1], calculator.DefaultRSIPeriod)
		return rsi < rsiEntry, rsi > rsiExit
	})
}

// MACDCrossover buys when the histogram turns positive and sells when it turns negative.
func MACDCrossover(bars model.Series, capital float64) []model.Trade {
	hist := make([]float64, len(bars))
	for i := range bars {
		hist[i] = calculator.CalculateMACD(bars[:i+1], calculator.DefaultMACDFast, calculator.DefaultMACDSlow, calculator.DefaultMACDSignal).Histogram
	}
	return simulate(bars, capital, func(i int) (bool, bool) {
		if i < calculator.DefaultMACDSlow {
			return false, false
		}
		return hist[i-1] <= 0 && hist[i] > 0, hist[i-1] >= 0 && hist[i] < 0
	})
}
