package collector

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"StockSentinel/internal/model"
)

// MockFetcher returns generated or fixed data for development and testing.
// Generated series are seeded by the symbol, so repeated calls agree.
type MockFetcher struct {
	Price float64
	Bars  model.Series
	End   time.Time
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, tf Timeframe, limit int) (model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return trimBars(m.Bars, limit), nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	step := 24 * time.Hour
	if tf == Weekly {
		step = 7 * step
	}
	// limit <= 0 means no cap elsewhere; generate the default history instead.
	if limit <= 0 {
		limit = DefaultHistoryBars
	}
	return generateMockBars(symbol, m.Price, limit, end, step), nil
}

func generateMockBars(symbol string, basePrice float64, count int, end time.Time, step time.Duration) model.Series {
	if basePrice <= 0 {
		basePrice = 100
	}
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(symbol)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	if count < 0 {
		count = 0
	}
	bars := make(model.Series, count)
	p := basePrice
	for i := 0; i < count; i++ {
		p *= 1 + (rng.Float64()-0.5)*0.04
		open := p * (1 + (rng.Float64()-0.5)*0.01)
		hi := max(open, p) * (1 + rng.Float64()*0.01)
		lo := min(open, p) * (1 - rng.Float64()*0.01)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  p,
			Volume: 500000 + rng.Float64()*1500000,
		}
	}
	return bars
}
