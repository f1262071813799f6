package model

import (
	"strings"
	"time"
)

// StrategyName selects the weighting profile of the composite score.
type StrategyName string

const (
	StrategyMomentum StrategyName = "momentum"
	StrategyValue    StrategyName = "value"
	StrategyVolume   StrategyName = "volume"
	StrategyBalanced StrategyName = "balanced"
)

// ParseStrategy maps a free-form name to a known profile. Unknown names fall back to balanced.
func ParseStrategy(name string) StrategyName {
	switch StrategyName(strings.ToLower(strings.TrimSpace(name))) {
	case StrategyMomentum:
		return StrategyMomentum
	case StrategyValue:
		return StrategyValue
	case StrategyVolume:
		return StrategyVolume
	default:
		return StrategyBalanced
	}
}

// ScoreBreakdown holds every sub-score of one analysis.
// Overall is clamped to [0,100]; the others are reported as computed.
type ScoreBreakdown struct {
	Technical          float64 `json:"technical"`
	PriceTrend         float64 `json:"price_trend"`
	Enhanced           float64 `json:"enhanced"`
	Momentum           float64 `json:"momentum"`
	Risk               float64 `json:"risk"`
	StrategyAdjustment float64 `json:"strategy_adjustment"`
	Overall            float64 `json:"overall"`
}

// SupportResistance holds the estimated price levels.
type SupportResistance struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// Suggestion is the discrete action label.
type Suggestion string

const (
	SuggestionStrongBuy Suggestion = "STRONG_BUY"
	SuggestionBuy       Suggestion = "BUY"
	SuggestionHold      Suggestion = "HOLD"
	SuggestionCaution   Suggestion = "CAUTION"
)

// Signal is the suggestion label plus descriptive tags.
type Signal struct {
	Suggestion Suggestion `json:"suggestion"`
	Tags       []string   `json:"tags"`
}

// Analysis is the full output of one analyze call.
type Analysis struct {
	Symbol            string            `json:"symbol"`
	Strategy          StrategyName      `json:"strategy"`
	Close             float64           `json:"close"`
	AsOf              time.Time         `json:"as_of"`
	Bars              int               `json:"bars"`
	Indicators        IndicatorSnapshot `json:"indicators"`
	SupportResistance SupportResistance `json:"support_resistance"`
	Scores            ScoreBreakdown    `json:"scores"`
	Signal            Signal            `json:"signal"`
}
