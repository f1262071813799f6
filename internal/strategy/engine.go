package strategy

import (
	"errors"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// ErrInsufficientData is returned when there is nothing to analyze.
var ErrInsufficientData = errors.New("insufficient data: series is empty")

// Suggestions maps the overall score to a label, highest threshold first.
var Suggestions = []struct {
	MinScore   float64
	Suggestion model.Suggestion
}{
	{80, model.SuggestionStrongBuy},
	{60, model.SuggestionBuy},
	{40, model.SuggestionHold},
}

// DefaultSuggestion is used for scores below every threshold.
const DefaultSuggestion = model.SuggestionCaution

func mapSuggestion(overall float64) model.Suggestion {
	for _, s := range Suggestions {
		if overall >= s.MinScore {
			return s.Suggestion
		}
	}
	return DefaultSuggestion
}

// Analyze runs indicators, support/resistance, scoring and signal generation over bars.
// Unknown strategy names are scored with the balanced profile.
func Analyze(bars model.Series, strategyName string) (*model.Analysis, error) {
	if len(bars) == 0 {
		return nil, ErrInsufficientData
	}
	name := model.ParseStrategy(strategyName)
	last := bars.Last()

	// Step a: indicators
	snap := calculator.Snapshot(bars)

	// Step b: support and resistance
	sr := calculator.CalculateSupportResistance(bars)

	// Step c: composite score
	scores := Score(bars, snap, name)

	// Step d: signal
	sig := GenerateSignal(last.Close, scores.Overall, sr, snap.RSI)

	return &model.Analysis{
		Strategy:          name,
		Close:             last.Close,
		AsOf:              last.Time,
		Bars:              len(bars),
		Indicators:        snap,
		SupportResistance: sr,
		Scores:            scores,
		Signal:            sig,
	}, nil
}
