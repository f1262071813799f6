package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is a time-ordered run of bars for one instrument, oldest first.
type Series []OHLCV

// ErrEmptySeries is returned when a series holds no bars.
var ErrEmptySeries = errors.New("series is empty")

// Validate checks ordering and per-bar price invariants.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i, b := range s {
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 {
			return fmt.Errorf("bar %d: negative field", i)
		}
		if b.High < math.Max(b.Open, b.Close) || math.Min(b.Open, b.Close) < b.Low {
			return fmt.Errorf("bar %d: high/low do not bound open/close", i)
		}
		if i > 0 && !b.Time.After(s[i-1].Time) {
			return fmt.Errorf("bar %d: timestamp %s not after %s", i, b.Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Last returns the most recent bar. Callers must ensure the series is non-empty.
func (s Series) Last() OHLCV {
	return s[len(s)-1]
}

// LastClose returns the close of the most recent bar, or 0 for an empty series.
func (s Series) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Tail returns the trailing n bars (the whole series when shorter).
func (s Series) Tail(n int) Series {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return Series{}
	}
	return s[len(s)-n:]
}
