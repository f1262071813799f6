package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"StockSentinel/internal/model"
)

// Timeframe is the bar interval requested from a provider.
type Timeframe string

const (
	Daily  Timeframe = "1d"
	Weekly Timeframe = "1wk"
)

var (
	// ErrNoData is returned when a provider answers but has no usable bars.
	ErrNoData = errors.New("no data returned")
	// ErrNoProvider is returned when every provider in a chain failed.
	ErrNoProvider = errors.New("all data providers failed")
)

// Fetcher supplies price bars for a symbol, oldest first.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, tf Timeframe, limit int) (model.Series, error)
	Name() string
}

// ChainFetcher tries each provider in order and returns the first valid series.
// An empty or malformed series counts as a provider failure.
type ChainFetcher struct {
	Fetchers []Fetcher
}

// NewChainFetcher builds a provider fallback chain.
func NewChainFetcher(fetchers ...Fetcher) *ChainFetcher {
	return &ChainFetcher{Fetchers: fetchers}
}

func (c *ChainFetcher) Name() string {
	names := make([]string, len(c.Fetchers))
	for i, f := range c.Fetchers {
		names[i] = f.Name()
	}
	return strings.Join(names, "+")
}

func (c *ChainFetcher) FetchBars(ctx context.Context, symbol string, tf Timeframe, limit int) (model.Series, error) {
	var errs []error
	for _, f := range c.Fetchers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bars, err := f.FetchBars(ctx, symbol, tf, limit)
		if err == nil {
			err = checkBars(bars)
		}
		if err == nil {
			return bars, nil
		}
		log.Printf("[WARN] %s: fetch %s %s failed: %v", f.Name(), symbol, tf, err)
		errs = append(errs, fmt.Errorf("%s: %w", f.Name(), err))
	}
	return nil, fmt.Errorf("%w for %s: %w", ErrNoProvider, symbol, errors.Join(errs...))
}

func checkBars(bars model.Series) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	if err := bars.Validate(); err != nil {
		return fmt.Errorf("invalid bars: %w", err)
	}
	return nil
}

// trimBars keeps the most recent limit bars.
func trimBars(bars model.Series, limit int) model.Series {
	if limit > 0 && len(bars) > limit {
		return bars[len(bars)-limit:]
	}
	return bars
}
