package model

// Trend is the MACD line versus signal line classification.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// BandPosition locates the close relative to the Bollinger bands.
type BandPosition string

const (
	BandOversold   BandPosition = "oversold"
	BandOverbought BandPosition = "overbought"
	BandNormal     BandPosition = "normal"
)

// StochSignal classifies the stochastic oscillator.
type StochSignal string

const (
	StochOversold   StochSignal = "oversold"
	StochOverbought StochSignal = "overbought"
	StochBullish    StochSignal = "bullish"
	StochBearish    StochSignal = "bearish"
	StochNeutral    StochSignal = "neutral"
)

// Volatility is the ATR-derived volatility level.
type Volatility string

const (
	VolatilityHigh Volatility = "high"
	VolatilityLow  Volatility = "low"
)

// MACDResult holds the latest MACD values.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Trend compares the MACD line against its signal line.
func (m MACDResult) Trend() Trend {
	switch {
	case m.MACD > m.Signal:
		return TrendBullish
	case m.MACD < m.Signal:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

// BollingerResult holds the latest band values.
type BollingerResult struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Position classifies price against the bands. Touching a band counts as crossing it.
func (b BollingerResult) Position(price float64) BandPosition {
	switch {
	case price <= b.Lower:
		return BandOversold
	case price >= b.Upper:
		return BandOverbought
	default:
		return BandNormal
	}
}

// StochasticResult holds the latest %K and %D.
type StochasticResult struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// Signal classifies the oscillator.
func (s StochasticResult) Signal() StochSignal {
	switch {
	case s.K < 20 && s.D < 20:
		return StochOversold
	case s.K > 80 && s.D > 80:
		return StochOverbought
	case s.K > s.D && s.K < 50:
		return StochBullish
	case s.K < s.D && s.K > 50:
		return StochBearish
	default:
		return StochNeutral
	}
}

// ATRResult holds the latest average true range and its volatility level.
type ATRResult struct {
	ATR        float64    `json:"atr"`
	Volatility Volatility `json:"volatility"`
}

// IndicatorSnapshot is the most-recent-bar value of every indicator.
type IndicatorSnapshot struct {
	RSI        float64          `json:"rsi"`
	MACD       MACDResult       `json:"macd"`
	Bollinger  BollingerResult  `json:"bollinger"`
	Stochastic StochasticResult `json:"stochastic"`
	ATR        ATRResult        `json:"atr"`
}
