package calculator

import "StockSentinel/internal/model"

const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// CalculateMACD computes the MACD line (fast EMA - slow EMA), its signal EMA and the histogram.
// Returns all zeros when fewer than slow bars are available.
// Non-positive parameters select the defaults.
func CalculateMACD(bars model.Series, fast, slow, signal int) model.MACDResult {
	if fast <= 0 {
		fast = DefaultMACDFast
	}
	if slow <= 0 {
		slow = DefaultMACDSlow
	}
	if signal <= 0 {
		signal = DefaultMACDSignal
	}
	if len(bars) < slow {
		return model.MACDResult{}
	}

	closes := bars.Closes()
	emaFast := emaRecursive(closes, spanAlpha(fast))
	emaSlow := emaRecursive(closes, spanAlpha(slow))
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := emaRecursive(line, spanAlpha(signal))

	m := line[len(line)-1]
	s := signalLine[len(signalLine)-1]
	if !isFinite(m) || !isFinite(s) {
		return model.MACDResult{}
	}
	return model.MACDResult{MACD: m, Signal: s, Histogram: m - s}
}
