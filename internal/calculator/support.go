package calculator

import "StockSentinel/internal/model"

const (
	supportMinBars  = 20
	fibShallow      = 0.382
	fibHalf         = 0.5
	recentExtremeN  = 10
	fibRangeN       = 20
	fallbackSupport = 0.90
	fallbackResist  = 1.10
)

// CalculateSupportResistance averages moving averages, the recent extreme and two
// Fibonacci levels into one support and one resistance price.
// Fewer than 20 bars, or any undefined candidate, falls back to ±10% of the last close.
// Support < close < resistance is not enforced.
func CalculateSupportResistance(bars model.Series) model.SupportResistance {
	last := bars.LastClose()
	fallback := model.SupportResistance{Support: last * fallbackSupport, Resistance: last * fallbackResist}
	if len(bars) < supportMinBars {
		return fallback
	}

	closes := bars.Closes()
	ma20, err := CalculateSMA(closes, 20)
	if err != nil {
		return fallback
	}
	ma50 := ma20
	if len(closes) >= 50 {
		if ma50, err = CalculateSMA(closes, 50); err != nil {
			return fallback
		}
	}
	recentLow, err := LowestLow(bars, recentExtremeN)
	if err != nil {
		return fallback
	}
	recentHigh, err := HighestHigh(bars, recentExtremeN)
	if err != nil {
		return fallback
	}
	high, low, err := RangeOver(bars, fibRangeN)
	if err != nil {
		return fallback
	}
	span := high - low

	support := mean([]float64{ma20, ma50, recentLow, high - span*fibShallow, high - span*fibHalf})
	resistance := mean([]float64{ma20, ma50, recentHigh, high + span*fibShallow, high + span*fibHalf})
	if !isFinite(support) || !isFinite(resistance) {
		return fallback
	}
	return model.SupportResistance{Support: support, Resistance: resistance}
}
