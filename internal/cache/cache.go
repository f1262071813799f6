// Package cache stores fetched price series for a limited time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockSentinel/internal/model"
)

// ErrMiss is returned by Get when no live entry exists for the key.
var ErrMiss = errors.New("cache: miss")

// BarCache stores price series under a key with a time-to-live.
type BarCache interface {
	Get(ctx context.Context, key string) (model.Series, error)
	Set(ctx context.Context, key string, bars model.Series, ttl time.Duration) error
	Close() error
}

// Key builds the cache key for one fetch: provider, symbol, timeframe and as-of date.
func Key(provider, symbol, timeframe string, asOf time.Time) string {
	return fmt.Sprintf("bars:%s:%s:%s:%s",
		strings.ToLower(provider), strings.ToUpper(symbol), timeframe, asOf.UTC().Format("2006-01-02"))
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (model.Series, error)              { return nil, ErrMiss }
func (Noop) Set(context.Context, string, model.Series, time.Duration) error { return nil }
func (Noop) Close() error                                                   { return nil }

type memoryEntry struct {
	bars      model.Series
	expiresAt time.Time
}

// Memory is an in-process cache used when Redis is not configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (model.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	out := make(model.Series, len(e.bars))
	copy(out, e.bars)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, bars model.Series, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	stored := make(model.Series, len(bars))
	copy(stored, bars)
	m.mu.Lock()
	m.entries[key] = memoryEntry{bars: stored, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
