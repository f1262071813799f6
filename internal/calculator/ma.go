package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateSMA computes the simple moving average of the trailing period values.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	window := prices[len(prices)-period:]
	if period == 1 {
		return window[0], nil
	}
	sma := talib.Sma(window, period)
	return sma[len(sma)-1], nil
}

// emaRecursive is the exponential mean y[t] = y[t-1] + a*(x[t]-y[t-1]), seeded with x[0].
// A constant input stays exactly constant.
func emaRecursive(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

// emaAdjusted returns the last value of the bias-adjusted exponential mean,
// weighting x[t-i] by (1-a)^i and normalising by the weight sum.
func emaAdjusted(values []float64, alpha float64) float64 {
	var num, den float64
	w := 1.0
	for i := len(values) - 1; i >= 0; i-- {
		num += w * values[i]
		den += w
		w *= 1 - alpha
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func spanAlpha(span int) float64 {
	return 2.0 / (float64(span) + 1.0)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev uses the n-1 denominator. Fewer than two values yield 0.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
