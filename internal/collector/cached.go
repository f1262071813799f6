package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"StockSentinel/internal/cache"
	"StockSentinel/internal/model"
)

// CachedFetcher serves repeated fetches from a BarCache for TTL.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   cache.BarCache
	TTL     time.Duration
	now     func() time.Time
}

// NewCachedFetcher wraps fetcher with cache.
func NewCachedFetcher(fetcher Fetcher, c cache.BarCache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Fetcher: fetcher, Cache: c, TTL: ttl, now: time.Now}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() }

func (c *CachedFetcher) FetchBars(ctx context.Context, symbol string, tf Timeframe, limit int) (model.Series, error) {
	key := cache.Key(c.Fetcher.Name(), symbol, fmt.Sprintf("%s-%d", tf, limit), c.now())

	bars, err := c.Cache.Get(ctx, key)
	if err == nil && len(bars) > 0 {
		return bars, nil
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		log.Printf("[WARN] cache get %s: %v", key, err)
	}

	bars, err = c.Fetcher.FetchBars(ctx, symbol, tf, limit)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Set(ctx, key, bars, c.TTL); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
	return bars, nil
}
