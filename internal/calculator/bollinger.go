package calculator

import "StockSentinel/internal/model"

const (
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0
)

// CalculateBollingerBands returns SMA(period) ± stdDev sample standard deviations.
// With fewer than period bars the bands fall back to ±10% of the last close.
func CalculateBollingerBands(bars model.Series, period int, stdDev float64) model.BollingerResult {
	if period <= 0 {
		period = DefaultBollingerPeriod
	}
	if stdDev <= 0 {
		stdDev = DefaultBollingerStdDev
	}
	if len(bars) < period {
		return bollingerFallback(bars.LastClose())
	}

	window := bars.Tail(period).Closes()
	middle, err := CalculateSMA(window, period)
	if err != nil {
		return bollingerFallback(bars.LastClose())
	}
	sd := sampleStdDev(window)
	if !isFinite(middle) || !isFinite(sd) {
		return bollingerFallback(bars.LastClose())
	}
	return model.BollingerResult{
		Upper:  middle + sd*stdDev,
		Middle: middle,
		Lower:  middle - sd*stdDev,
	}
}

func bollingerFallback(last float64) model.BollingerResult {
	return model.BollingerResult{Upper: last * 1.1, Middle: last, Lower: last * 0.9}
}
