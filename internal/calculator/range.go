package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"

	"StockSentinel/internal/model"
)

// HighestHigh returns the highest high of the trailing n bars.
func HighestHigh(bars model.Series, n int) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	if n <= 0 {
		return 0, errors.New("window must be positive")
	}
	return windowMax(bars.Tail(n).Highs()), nil
}

// LowestLow returns the lowest low of the trailing n bars.
func LowestLow(bars model.Series, n int) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	if n <= 0 {
		return 0, errors.New("window must be positive")
	}
	return windowMin(bars.Tail(n).Lows()), nil
}

// RangeOver scans the trailing n bars and returns their high and low.
func RangeOver(bars model.Series, n int) (high, low float64, err error) {
	if high, err = HighestHigh(bars, n); err != nil {
		return 0, 0, err
	}
	if low, err = LowestLow(bars, n); err != nil {
		return 0, 0, err
	}
	return high, low, nil
}

func windowMax(window []float64) float64 {
	if len(window) == 1 {
		return window[0]
	}
	out := talib.Max(window, len(window))
	return out[len(out)-1]
}

func windowMin(window []float64) float64 {
	if len(window) == 1 {
		return window[0]
	}
	out := talib.Min(window, len(window))
	return out[len(out)-1]
}

// rollingExtremes returns per-index highest high and lowest low over a period window.
// Indices before period-1 are left at zero.
func rollingExtremes(bars model.Series, period int) (highs, lows []float64) {
	highs = make([]float64, len(bars))
	lows = make([]float64, len(bars))
	if period <= 0 || len(bars) < period {
		return highs, lows
	}
	if period == 1 {
		return bars.Highs(), bars.Lows()
	}
	return talib.Max(bars.Highs(), period), talib.Min(bars.Lows(), period)
}

// RangePosition returns where price sits within [low, high] as 0.0~1.0.
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
