package calculator

import "StockSentinel/internal/model"

// Snapshot computes every indicator with its default parameters.
func Snapshot(bars model.Series) model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		RSI:        CalculateRSI(bars, DefaultRSIPeriod),
		MACD:       CalculateMACD(bars, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal),
		Bollinger:  CalculateBollingerBands(bars, DefaultBollingerPeriod, DefaultBollingerStdDev),
		Stochastic: CalculateStochastic(bars, DefaultStochK, DefaultStochD),
		ATR:        CalculateATR(bars, DefaultATRPeriod),
	}
}
