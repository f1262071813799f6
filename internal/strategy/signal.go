package strategy

import "StockSentinel/internal/model"

const (
	TagNearSupport    = "near support"
	TagNearResistance = "near resistance"
	TagRSIOversold    = "RSI oversold"
	TagRSIOverbought  = "RSI overbought"
)

// GenerateSignal maps the overall score to a suggestion and attaches descriptive tags.
// Support proximity wins over resistance proximity when both hold.
func GenerateSignal(last, overall float64, sr model.SupportResistance, rsi float64) model.Signal {
	sig := model.Signal{Suggestion: mapSuggestion(overall), Tags: []string{}}

	if sr.Support > 0 && sr.Resistance > 0 {
		switch {
		case last <= sr.Support*1.02:
			sig.Tags = append(sig.Tags, TagNearSupport)
		case last >= sr.Resistance*0.98:
			sig.Tags = append(sig.Tags, TagNearResistance)
		}
	}

	switch {
	case rsi < rsiOversold:
		sig.Tags = append(sig.Tags, TagRSIOversold)
	case rsi > rsiOverbought:
		sig.Tags = append(sig.Tags, TagRSIOverbought)
	}
	return sig
}
