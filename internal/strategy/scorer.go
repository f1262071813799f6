package strategy

import (
	"math"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// Weights combines the four sub-scores into the overall score. Each profile sums to 1.0.
type Weights struct {
	Technical float64
	Momentum  float64
	Risk      float64
	Strategy  float64
}

// ProfileWeights holds the fixed weight vector of every strategy profile.
var ProfileWeights = map[model.StrategyName]Weights{
	model.StrategyMomentum: {Technical: 0.25, Momentum: 0.40, Risk: 0.15, Strategy: 0.20},
	model.StrategyValue:    {Technical: 0.30, Momentum: 0.15, Risk: 0.30, Strategy: 0.25},
	model.StrategyVolume:   {Technical: 0.30, Momentum: 0.25, Risk: 0.15, Strategy: 0.30},
	model.StrategyBalanced: {Technical: 0.35, Momentum: 0.25, Risk: 0.25, Strategy: 0.15},
}

// WeightsFor returns the profile weights, using balanced for anything unknown.
func WeightsFor(name model.StrategyName) Weights {
	if w, ok := ProfileWeights[name]; ok {
		return w
	}
	return ProfileWeights[model.StrategyBalanced]
}

const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0

	shortWindow = 5
	longWindow  = 20

	strategyBonusCap = 60.0

	// neutralTrendScore is reported when fewer than shortWindow+1 bars exist.
	neutralTrendScore = 50.0
	neutralRiskScore  = 50.0
)

// Score computes every sub-score and the clamped overall score.
func Score(bars model.Series, snap model.IndicatorSnapshot, name model.StrategyName) model.ScoreBreakdown {
	tech := TechnicalScore(bars, snap)
	trend := PriceTrendScore(bars)
	sb := model.ScoreBreakdown{
		Technical:          tech,
		PriceTrend:         trend,
		Enhanced:           EnhancedScore(tech, trend),
		Momentum:           MomentumScore(bars),
		Risk:               RiskScore(bars),
		StrategyAdjustment: StrategyAdjustment(name, bars, snap),
	}
	w := WeightsFor(name)
	overall := sb.Technical*w.Technical + sb.Momentum*w.Momentum + sb.Risk*w.Risk + sb.StrategyAdjustment*w.Strategy
	sb.Overall = clamp(overall, 0, 100)
	return sb
}

// TechnicalScore sums the RSI, MACD-trend, Bollinger and volume buckets, capped at 100.
func TechnicalScore(bars model.Series, snap model.IndicatorSnapshot) float64 {
	score := 0.0

	switch rsi := snap.RSI; {
	case rsi < rsiOversold:
		score += 30
	case rsi > rsiOverbought:
		score += 10
	default:
		score += 20
	}

	switch snap.MACD.Trend() {
	case model.TrendBullish:
		score += 25
	case model.TrendBearish:
		score += 5
	default:
		score += 15
	}

	switch snap.Bollinger.Position(bars.LastClose()) {
	case model.BandOversold:
		score += 20
	case model.BandOverbought:
		score += 5
	default:
		score += 15
	}

	score += volumeScore(bars)
	return math.Min(score, 100)
}

// volumeScore rewards a trailing-5 average volume above the whole-series average.
func volumeScore(bars model.Series) float64 {
	ratio, ok := volumeRatio(bars)
	switch {
	case !ok:
		return 10
	case ratio > 1.5:
		return 20
	case ratio > 1:
		return 15
	default:
		return 10
	}
}

// volumeRatio is the trailing-5 mean volume over the whole-series mean.
// It is undefined for fewer than 5 bars or a zero average.
func volumeRatio(bars model.Series) (float64, bool) {
	if len(bars) < shortWindow {
		return 0, false
	}
	vols := bars.Volumes()
	avg := calculator.TrailingSMA(vols, len(vols))
	if avg <= 0 {
		return 0, false
	}
	return calculator.TrailingSMA(vols, shortWindow) / avg, true
}

// PriceTrendScore buckets the percentage change over the last five bars.
func PriceTrendScore(bars model.Series) float64 {
	if len(bars) < shortWindow+1 {
		return neutralTrendScore
	}
	closes := bars.Closes()
	if closes[len(closes)-1-shortWindow] == 0 {
		return neutralTrendScore
	}
	change := calculator.PercentChange(closes, shortWindow) * 100
	switch {
	case change > 5:
		return 40
	case change > 0:
		return 30
	case change > -5:
		return 20
	default:
		return 10
	}
}

// EnhancedScore blends technical (60%) and price trend (40%), rounded to one decimal and capped at 100.
func EnhancedScore(technical, priceTrend float64) float64 {
	score := technical*0.6 + priceTrend*0.4
	return math.Min(math.Round(score*10)/10, 100)
}

// MomentumScore compares the sign of the 5-bar and 20-bar returns.
func MomentumScore(bars model.Series) float64 {
	closes := bars.Closes()
	shortUp := calculator.PercentChange(closes, shortWindow) > 0
	longUp := calculator.PercentChange(closes, longWindow) > 0
	switch {
	case shortUp && longUp:
		return 80
	case shortUp:
		return 60
	case longUp:
		return 40
	default:
		return 20
	}
}

// RiskScore averages a volatility score and a drawdown score; calmer series score higher.
func RiskScore(bars model.Series) float64 {
	if len(bars) < 2 {
		return neutralRiskScore
	}
	closes := bars.Closes()
	volScore := clamp(100-calculator.StdDev(calculator.Returns(closes))*2000, 0, 100)
	ddScore := clamp(100-calculator.MaxDrawdown(closes)*200, 0, 100)
	return (volScore + ddScore) / 2
}

// StrategyAdjustment is the profile-specific bonus, capped at 60.
func StrategyAdjustment(name model.StrategyName, bars model.Series, snap model.IndicatorSnapshot) float64 {
	closes := bars.Closes()
	last := bars.LastClose()
	shortRet := calculator.PercentChange(closes, shortWindow)
	bonus := 0.0

	switch name {
	case model.StrategyMomentum:
		if shortRet > 0.03 {
			bonus += 20
		}
		if calculator.PercentChange(closes, longWindow) > 0.10 {
			bonus += 20
		}
		if snap.MACD.Trend() == model.TrendBullish {
			bonus += 20
		}

	case model.StrategyValue:
		ma20 := calculator.TrailingSMA(closes, 20)
		switch {
		case last < ma20*0.95:
			bonus += 30
		case last < ma20:
			bonus += 15
		}
		if last < calculator.TrailingSMA(closes, 50) {
			bonus += 20
		}
		if snap.RSI < 40 {
			bonus += 10
		}

	case model.StrategyVolume:
		ratio, ok := volumeRatio(bars)
		if ok {
			switch {
			case ratio > 2:
				bonus += 40
			case ratio > 1.5:
				bonus += 30
			case ratio > 1.2:
				bonus += 20
			case ratio > 1:
				bonus += 10
			}
			if ratio > 1 && shortRet > 0 {
				bonus += 20
			}
		}

	default:
		if len(closes) >= 2 && calculator.StdDev(calculator.Returns(closes)) < 0.02 {
			bonus += 20
		}
		if ma20 := calculator.TrailingSMA(closes, 20); ma20 > 0 && math.Abs(last/ma20-1) <= 0.05 {
			bonus += 20
		}
		if snap.RSI >= 40 && snap.RSI <= 60 {
			bonus += 20
		}
	}

	return math.Min(bonus, strategyBonusCap)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
