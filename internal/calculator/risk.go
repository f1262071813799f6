package calculator

// PercentChange returns closes[last]/closes[last-n] - 1. The lookback shrinks to
// the first value when the slice is shorter than n+1; a zero base yields 0.
func PercentChange(closes []float64, n int) float64 {
	if len(closes) < 2 || n <= 0 {
		return 0
	}
	last := len(closes) - 1
	base := last - n
	if base < 0 {
		base = 0
	}
	if closes[base] == 0 {
		return 0
	}
	return closes[last]/closes[base] - 1
}

// Returns gives the simple period-over-period returns. A zero previous value contributes 0.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i-1] = values[i]/values[i-1] - 1
		}
	}
	return out
}

// StdDev is the sample standard deviation.
func StdDev(values []float64) float64 {
	return sampleStdDev(values)
}

// MaxDrawdown is the largest (peak-value)/peak decline, using the running maximum as peak.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// TrailingSMA averages the last n values, or all of them when fewer exist.
func TrailingSMA(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	if n > len(values) || n <= 0 {
		n = len(values)
	}
	sma, err := CalculateSMA(values, n)
	if err != nil {
		return mean(values[len(values)-n:])
	}
	return sma
}
