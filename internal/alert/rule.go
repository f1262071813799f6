// Package alert keeps user-defined price and indicator alerts and checks them against fresh analyses.
package alert

import (
	"fmt"
	"math"
	"strings"
	"time"

	"StockSentinel/internal/model"
)

// Kind separates price alerts from indicator alerts.
type Kind string

const (
	KindPrice     Kind = "price"
	KindTechnical Kind = "technical"
)

// Condition is the comparison applied to the observed value.
type Condition string

const (
	Above     Condition = "above"
	Below     Condition = "below"
	Cross     Condition = "cross"
	CrossUp   Condition = "cross_up"
	CrossDown Condition = "cross_down"
)

// crossBand is the relative distance within which a price counts as crossing.
const crossBand = 0.01

// Indicators that technical alerts can watch.
var Indicators = map[string]string{
	"rsi":       "RSI",
	"macd":      "MACD",
	"histogram": "MACD histogram",
	"stoch_k":   "Stochastic %K",
	"atr":       "ATR",
	"score":     "score",
}

// Rule is one alert definition plus its trigger state.
type Rule struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Symbol      string     `json:"symbol"`
	Indicator   string     `json:"indicator,omitempty"`
	Condition   Condition  `json:"condition"`
	Threshold   float64    `json:"threshold"`
	Active      bool       `json:"active"`
	Triggered   bool       `json:"triggered"`
	LastValue   *float64   `json:"last_value,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CheckedAt   *time.Time `json:"checked_at,omitempty"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	Value       float64    `json:"value,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// Validate checks that the condition fits the rule kind and the indicator is known.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("alert: empty symbol")
	}
	switch r.Kind {
	case KindPrice:
		switch r.Condition {
		case Above, Below, Cross:
		default:
			return fmt.Errorf("alert: price condition %q not one of above, below, cross", r.Condition)
		}
		if r.Threshold <= 0 {
			return fmt.Errorf("alert: price must be positive, got %v", r.Threshold)
		}
	case KindTechnical:
		if _, ok := Indicators[r.Indicator]; !ok {
			return fmt.Errorf("alert: unknown indicator %q", r.Indicator)
		}
		switch r.Condition {
		case Above, Below, CrossUp, CrossDown:
		default:
			return fmt.Errorf("alert: indicator condition %q not one of above, below, cross_up, cross_down", r.Condition)
		}
	default:
		return fmt.Errorf("alert: unknown kind %q", r.Kind)
	}
	return nil
}

// Observe extracts the value a rule watches from an analysis.
func (r Rule) Observe(a *model.Analysis) (float64, bool) {
	if r.Kind == KindPrice {
		return a.Close, true
	}
	switch r.Indicator {
	case "rsi":
		return a.Indicators.RSI, true
	case "macd":
		return a.Indicators.MACD.MACD, true
	case "histogram":
		return a.Indicators.MACD.Histogram, true
	case "stoch_k":
		return a.Indicators.Stochastic.K, true
	case "atr":
		return a.Indicators.ATR.ATR, true
	case "score":
		return a.Scores.Overall, true
	}
	return 0, false
}

// Evaluate reports whether value fires the rule. prev is the value seen on the
// previous check, nil when there was none; crossing conditions need it.
func (r Rule) Evaluate(value float64, prev *float64) bool {
	if math.IsNaN(value) {
		return false
	}
	switch r.Condition {
	case Above:
		return value >= r.Threshold
	case Below:
		return value <= r.Threshold
	case Cross:
		if prev != nil && (*prev-r.Threshold)*(value-r.Threshold) <= 0 && *prev != value {
			return true
		}
		return math.Abs(value-r.Threshold) < value*crossBand
	case CrossUp:
		return prev != nil && *prev < r.Threshold && value >= r.Threshold
	case CrossDown:
		return prev != nil && *prev > r.Threshold && value <= r.Threshold
	}
	return false
}

// FormatMessage renders the notification text for a fired rule.
func (r Rule) FormatMessage(value float64) string {
	if r.Kind == KindPrice {
		switch r.Condition {
		case Above:
			return fmt.Sprintf("%s rose to $%.2f, above the alert price $%.2f", r.Symbol, value, r.Threshold)
		case Below:
			return fmt.Sprintf("%s fell to $%.2f, below the alert price $%.2f", r.Symbol, value, r.Threshold)
		default:
			return fmt.Sprintf("%s at $%.2f crossed the alert price $%.2f", r.Symbol, value, r.Threshold)
		}
	}
	name := Indicators[r.Indicator]
	if name == "" {
		name = r.Indicator
	}
	return fmt.Sprintf("%s %s %s %.2f: current value %.2f",
		r.Symbol, name, strings.ReplaceAll(string(r.Condition), "_", " "), r.Threshold, value)
}
