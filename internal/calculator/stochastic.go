package calculator

import "StockSentinel/internal/model"

const (
	DefaultStochK = 14
	DefaultStochD = 3
)

// CalculateStochastic computes %K over kPeriod and %D as the dPeriod mean of %K.
// Both read 50 when fewer than kPeriod+dPeriod-1 bars are available.
func CalculateStochastic(bars model.Series, kPeriod, dPeriod int) model.StochasticResult {
	if kPeriod <= 0 {
		kPeriod = DefaultStochK
	}
	if dPeriod <= 0 {
		dPeriod = DefaultStochD
	}
	neutral := model.StochasticResult{K: 50, D: 50}
	if len(bars) < kPeriod+dPeriod-1 {
		return neutral
	}

	highs, lows := rollingExtremes(bars, kPeriod)
	ks := make([]float64, 0, dPeriod)
	for i := len(bars) - dPeriod; i < len(bars); i++ {
		rng := highs[i] - lows[i]
		k := 50.0
		if rng > 0 {
			k = 100 * (bars[i].Close - lows[i]) / rng
		}
		ks = append(ks, k)
	}

	res := model.StochasticResult{K: ks[len(ks)-1], D: mean(ks)}
	if !isFinite(res.K) || !isFinite(res.D) {
		return neutral
	}
	return res
}
