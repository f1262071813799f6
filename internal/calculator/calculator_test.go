package calculator

import (
	"math"
	"testing"
	"time"

	"StockSentinel/internal/model"
)

var baseTime = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// flatBars builds bars whose open/high/low equal the close.
func flatBars(closes []float64) model.Series {
	bars := make(model.Series, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   baseTime.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

// spreadBars puts high and low halfWidth away from every close.
func spreadBars(closes []float64, halfWidth float64) model.Series {
	bars := flatBars(closes)
	for i := range bars {
		bars[i].High = bars[i].Close + halfWidth
		bars[i].Low = bars[i].Close - halfWidth
	}
	return bars
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func geometric(n int, start, step float64) []float64 {
	out := make([]float64, n)
	p := start
	for i := range out {
		out[i] = p
		p *= 1 + step
	}
	return out
}

// zigzag oscillates around 100 with a slow drift so every indicator has real work to do.
func zigzag(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 8*math.Sin(float64(i)/3) + float64(i%7) - 0.2*float64(i)
	}
	return out
}

func TestCalculateSMA(t *testing.T) {
	sma, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sma != 4 {
		t.Errorf("expected 4, got %v", sma)
	}
	if _, err := CalculateSMA([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := CalculateSMA([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestRangeOver(t *testing.T) {
	bars := flatBars([]float64{5, 9, 3, 7, 6})
	high, low, err := RangeOver(bars, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 7 || low != 3 {
		t.Errorf("expected 7/3, got %v/%v", high, low)
	}
	high, low, _ = RangeOver(bars, 50)
	if high != 9 || low != 3 {
		t.Errorf("expected whole-series 9/3, got %v/%v", high, low)
	}
	if _, _, err := RangeOver(nil, 3); err == nil {
		t.Error("expected error for empty bars")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{5, 10, 0, 0.5},
		{12, 10, 0, 1},
		{-1, 10, 0, 0},
		{7, 7, 7, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("RangePosition(%v,%v,%v) = %v, want %v", tt.current, tt.high, tt.low, got, tt.want)
		}
	}
	if _, err := RangePosition(1, 0, 10); err == nil {
		t.Error("expected error when high < low")
	}
}

func TestRSI_InsufficientDataIsNeutral(t *testing.T) {
	for n := 1; n <= DefaultRSIPeriod; n++ {
		if got := CalculateRSI(flatBars(zigzag(n)), DefaultRSIPeriod); got != NeutralRSI {
			t.Errorf("n=%d: expected %v, got %v", n, NeutralRSI, got)
		}
	}
}

func TestRSI_ZeroLossIsNeutral(t *testing.T) {
	if got := CalculateRSI(flatBars(constant(25, 100)), 14); got != NeutralRSI {
		t.Errorf("flat series: expected %v, got %v", NeutralRSI, got)
	}
	if got := CalculateRSI(flatBars(geometric(30, 100, 0.01)), 14); got != NeutralRSI {
		t.Errorf("rising series: expected %v, got %v", NeutralRSI, got)
	}
}

func TestRSI_FallingSeriesIsZero(t *testing.T) {
	got := CalculateRSI(flatBars(geometric(30, 100, -0.01)), 14)
	if got != 0 {
		t.Errorf("expected 0 for strictly falling closes, got %v", got)
	}
}

func TestRSI_Bounded(t *testing.T) {
	for n := 1; n <= 120; n += 7 {
		got := CalculateRSI(flatBars(zigzag(n)), 14)
		if got < 0 || got > 100 {
			t.Errorf("n=%d: RSI %v out of [0,100]", n, got)
		}
	}
}

func TestRSI_NonPositivePeriodUsesDefault(t *testing.T) {
	bars := flatBars(zigzag(60))
	if CalculateRSI(bars, 0) != CalculateRSI(bars, DefaultRSIPeriod) {
		t.Error("period 0 should match default period")
	}
}

func TestMACD_Fallback(t *testing.T) {
	got := CalculateMACD(flatBars(zigzag(DefaultMACDSlow-1)), 12, 26, 9)
	if got != (model.MACDResult{}) {
		t.Errorf("expected zero result, got %+v", got)
	}
	if got.Trend() != model.TrendNeutral {
		t.Errorf("expected neutral trend, got %s", got.Trend())
	}
}

func TestMACD_HistogramIdentity(t *testing.T) {
	for n := 1; n <= 150; n += 11 {
		m := CalculateMACD(flatBars(zigzag(n)), 12, 26, 9)
		if m.Histogram != m.MACD-m.Signal {
			t.Errorf("n=%d: histogram %v != macd-signal %v", n, m.Histogram, m.MACD-m.Signal)
		}
	}
}

func TestMACD_Trend(t *testing.T) {
	up := CalculateMACD(flatBars(geometric(60, 100, 0.01)), 12, 26, 9)
	if up.Trend() != model.TrendBullish {
		t.Errorf("rising series: expected bullish, got %s (%+v)", up.Trend(), up)
	}
	// A constant-percentage decline slows in absolute terms, which lifts MACD above
	// its signal line; only an accelerating decline keeps the trend bearish.
	easing := CalculateMACD(flatBars(geometric(60, 100, -0.01)), 12, 26, 9)
	if easing.MACD >= 0 || easing.Trend() != model.TrendBullish {
		t.Errorf("easing decline: expected negative MACD above signal, got %+v", easing)
	}
	accel := make([]float64, 60)
	for i := range accel {
		accel[i] = 200 - 0.05*float64(i*i)
	}
	down := CalculateMACD(flatBars(accel), 12, 26, 9)
	if down.MACD >= 0 || down.Trend() != model.TrendBearish {
		t.Errorf("accelerating decline: expected bearish, got %s (%+v)", down.Trend(), down)
	}
	flat := CalculateMACD(flatBars(constant(40, 100)), 12, 26, 9)
	if flat.Histogram != 0 || flat.Trend() != model.TrendNeutral {
		t.Errorf("flat series: expected zero histogram and neutral, got %+v", flat)
	}
}

func TestBollinger_Fallback(t *testing.T) {
	got := CalculateBollingerBands(flatBars(constant(10, 50)), 20, 2)
	if math.Abs(got.Upper-55) > 1e-9 || math.Abs(got.Lower-45) > 1e-9 {
		t.Errorf("expected 55/45 fallback, got %+v", got)
	}
}

func TestBollinger_FlatCollapses(t *testing.T) {
	got := CalculateBollingerBands(flatBars(constant(25, 100)), 20, 2)
	if got.Upper != 100 || got.Middle != 100 || got.Lower != 100 {
		t.Errorf("expected bands collapsed to 100, got %+v", got)
	}
	if got.Position(100) != model.BandOversold {
		t.Errorf("close on a collapsed lower band should read oversold, got %s", got.Position(100))
	}
}

func TestBollinger_Ordered(t *testing.T) {
	for n := 20; n <= 120; n += 9 {
		b := CalculateBollingerBands(flatBars(zigzag(n)), 20, 2)
		if !(b.Upper >= b.Middle && b.Middle >= b.Lower) {
			t.Errorf("n=%d: bands out of order %+v", n, b)
		}
	}
}

func TestBollinger_KnownValues(t *testing.T) {
	// closes 1..20: mean 10.5, sample stddev sqrt(35)
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	b := CalculateBollingerBands(flatBars(closes), 20, 2)
	sd := math.Sqrt(35)
	if math.Abs(b.Middle-10.5) > 1e-9 || math.Abs(b.Upper-(10.5+2*sd)) > 1e-9 || math.Abs(b.Lower-(10.5-2*sd)) > 1e-9 {
		t.Errorf("unexpected bands %+v", b)
	}
}

func TestStochastic(t *testing.T) {
	short := CalculateStochastic(flatBars(zigzag(10)), 14, 3)
	if short.K != 50 || short.D != 50 {
		t.Errorf("expected neutral fallback, got %+v", short)
	}

	rising := CalculateStochastic(flatBars(geometric(30, 100, 0.01)), 14, 3)
	if math.Abs(rising.K-100) > 1e-9 || math.Abs(rising.D-100) > 1e-9 {
		t.Errorf("rising closes at the range high: expected 100/100, got %+v", rising)
	}
	if rising.Signal() != model.StochOverbought {
		t.Errorf("expected overbought, got %s", rising.Signal())
	}

	falling := CalculateStochastic(flatBars(geometric(30, 100, -0.01)), 14, 3)
	if falling.Signal() != model.StochOversold {
		t.Errorf("expected oversold, got %s (%+v)", falling.Signal(), falling)
	}

	flat := CalculateStochastic(flatBars(constant(30, 100)), 14, 3)
	if flat.K != 50 || flat.Signal() != model.StochNeutral {
		t.Errorf("zero range: expected K=50 neutral, got %+v", flat)
	}
}

func TestStochasticSignal(t *testing.T) {
	tests := []struct {
		k, d float64
		want model.StochSignal
	}{
		{10, 15, model.StochOversold},
		{85, 90, model.StochOverbought},
		{40, 30, model.StochBullish},
		{60, 70, model.StochBearish},
		{60, 50, model.StochNeutral},
		{50, 50, model.StochNeutral},
	}
	for _, tt := range tests {
		got := model.StochasticResult{K: tt.k, D: tt.d}.Signal()
		if got != tt.want {
			t.Errorf("K=%v D=%v: expected %s, got %s", tt.k, tt.d, tt.want, got)
		}
	}
}

func TestATR(t *testing.T) {
	short := CalculateATR(spreadBars(constant(10, 100), 1), 14)
	if short.ATR != 0 || short.Volatility != model.VolatilityLow {
		t.Errorf("expected zero fallback, got %+v", short)
	}

	// every bar has a constant 1.0 true range
	got := CalculateATR(spreadBars(constant(40, 100), 0.5), 14)
	if got.ATR != 1.0 {
		t.Errorf("expected ATR 1.0, got %v", got.ATR)
	}
	if got.Volatility != model.VolatilityLow {
		t.Errorf("expected low volatility, got %s", got.Volatility)
	}

	if v := CalculateATR(spreadBars(constant(40, 100), 3), 14).Volatility; v != model.VolatilityHigh {
		t.Errorf("expected high volatility, got %s", v)
	}
}

func TestSupportResistance_Fallback(t *testing.T) {
	got := CalculateSupportResistance(flatBars(constant(19, 200)))
	if math.Abs(got.Support-180) > 1e-9 || math.Abs(got.Resistance-220) > 1e-9 {
		t.Errorf("expected 180/220, got %+v", got)
	}
}

func TestSupportResistance_Flat(t *testing.T) {
	got := CalculateSupportResistance(flatBars(constant(25, 100)))
	if got.Support != 100 || got.Resistance != 100 {
		t.Errorf("expected 100/100 on a flat series, got %+v", got)
	}
}

func TestSupportResistance_KnownValues(t *testing.T) {
	// closes 1..20, high=low=close: ma20=ma50=10.5, recent low 11, recent high 20,
	// 20-bar range 1..20 so span 19.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	got := CalculateSupportResistance(flatBars(closes))
	wantSupport := (10.5 + 10.5 + 11 + (20 - 19*0.382) + (20 - 19*0.5)) / 5
	wantResist := (10.5 + 10.5 + 20 + (20 + 19*0.382) + (20 + 19*0.5)) / 5
	if math.Abs(got.Support-wantSupport) > 1e-9 || math.Abs(got.Resistance-wantResist) > 1e-9 {
		t.Errorf("expected %v/%v, got %+v", wantSupport, wantResist, got)
	}
}

func TestSnapshot_SingleBar(t *testing.T) {
	snap := Snapshot(flatBars([]float64{42}))
	if snap.RSI != NeutralRSI {
		t.Errorf("expected neutral RSI, got %v", snap.RSI)
	}
	if snap.MACD != (model.MACDResult{}) {
		t.Errorf("expected zero MACD, got %+v", snap.MACD)
	}
	if math.Abs(snap.Bollinger.Upper-46.2) > 1e-9 {
		t.Errorf("expected fallback upper band 46.2, got %v", snap.Bollinger.Upper)
	}
}

func TestPercentChange(t *testing.T) {
	closes := []float64{100, 110, 121}
	if got := PercentChange(closes, 1); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected 0.1, got %v", got)
	}
	if got := PercentChange(closes, 20); math.Abs(got-0.21) > 1e-12 {
		t.Errorf("lookback longer than series should shrink, got %v", got)
	}
	if got := PercentChange([]float64{5}, 5); got != 0 {
		t.Errorf("single value should give 0, got %v", got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{100, 110, 120}, 0},
		{[]float64{100, 120, 90, 130, 117}, 0.25},
		{[]float64{100, 50}, 0.5},
	}
	for _, tt := range tests {
		if got := MaxDrawdown(tt.values); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("MaxDrawdown(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestTrailingSMA(t *testing.T) {
	if got := TrailingSMA([]float64{2, 4, 6, 8}, 2); got != 7 {
		t.Errorf("expected 7, got %v", got)
	}
	if got := TrailingSMA([]float64{2, 4, 6, 8}, 20); got != 5 {
		t.Errorf("expected whole-slice mean 5, got %v", got)
	}
}
