package calculator

import "StockSentinel/internal/model"

const (
	DefaultRSIPeriod = 14
	// NeutralRSI is returned whenever RSI is undefined.
	NeutralRSI = 50.0
)

// CalculateRSI computes the RSI of the closes, smoothing gains and losses with an
// exponential mean of alpha 1/period. Requires at least period+1 bars.
// Returns NeutralRSI if data is insufficient or the average loss is zero.
// A non-positive period selects DefaultRSIPeriod.
func CalculateRSI(bars model.Series, period int) float64 {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(bars) < period+1 {
		return NeutralRSI
	}

	closes := bars.Closes()
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	alpha := 1.0 / float64(period)
	avgGain := emaAdjusted(gains, alpha)
	avgLoss := emaAdjusted(losses, alpha)
	if avgLoss == 0 {
		return NeutralRSI
	}

	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if !isFinite(rsi) {
		return NeutralRSI
	}
	return rsi
}
