package calculator

import (
	"math"

	"StockSentinel/internal/model"
)

const DefaultATRPeriod = 14

// CalculateATR smooths the true range with an EMA of span period.
// Volatility is high when ATR exceeds 2% of the last close.
// Returns a zero, low-volatility result with fewer than period+1 bars.
func CalculateATR(bars model.Series, period int) model.ATRResult {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	if len(bars) < period+1 {
		return model.ATRResult{Volatility: model.VolatilityLow}
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		tr[i] = math.Max(bars[i].High-bars[i].Low,
			math.Max(math.Abs(bars[i].High-prevClose), math.Abs(bars[i].Low-prevClose)))
	}
	smoothed := emaRecursive(tr, spanAlpha(period))
	atr := smoothed[len(smoothed)-1]
	if !isFinite(atr) {
		return model.ATRResult{Volatility: model.VolatilityLow}
	}

	vol := model.VolatilityLow
	if atr > bars.LastClose()*0.02 {
		vol = model.VolatilityHigh
	}
	return model.ATRResult{ATR: atr, Volatility: vol}
}
