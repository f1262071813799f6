package collector

import (
	"context"
	"fmt"
	"strings"

	"StockSentinel/internal/model"
	"StockSentinel/internal/strategy"
)

// DefaultHistoryBars is the number of daily bars requested per analysis.
const DefaultHistoryBars = 120

// Collector fetches a symbol's history and runs the analysis pipeline on it.
type Collector struct {
	Fetcher Fetcher
	Bars    int
}

// NewCollector creates a new Collector. bars <= 0 uses DefaultHistoryBars.
func NewCollector(fetcher Fetcher, bars int) *Collector {
	if bars <= 0 {
		bars = DefaultHistoryBars
	}
	return &Collector{Fetcher: fetcher, Bars: bars}
}

// Fetch returns validated daily bars for symbol.
func (c *Collector) Fetch(ctx context.Context, symbol string) (model.Series, error) {
	return c.FetchHistory(ctx, symbol, c.Bars)
}

// FetchHistory returns up to n validated daily bars for symbol.
func (c *Collector) FetchHistory(ctx context.Context, symbol string, n int) (model.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	bars, err := c.Fetcher.FetchBars(ctx, symbol, Daily, n)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s bars from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	return bars, nil
}

// Analyze fetches symbol and scores it with the named strategy profile.
func (c *Collector) Analyze(ctx context.Context, symbol, strategyName string) (*model.Analysis, error) {
	bars, err := c.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	a, err := strategy.Analyze(bars, strategyName)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	a.Symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return a, nil
}
