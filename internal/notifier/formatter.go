package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/model"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/watchlist"
)

var suggestionIcons = map[model.Suggestion]string{
	model.SuggestionStrongBuy: "🟢🟢",
	model.SuggestionBuy:       "🟢",
	model.SuggestionHold:      "🟡",
	model.SuggestionCaution:   "🔴",
}

// FormatAnalysis formats a single-symbol analysis into a Telegram message.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	ind := a.Indicators
	sc := a.Scores

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s | %s\n\n", html.EscapeString(a.Symbol), a.Strategy, a.AsOf.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %.2f (%d bars)\n", a.Close, a.Bars))
	b.WriteString(fmt.Sprintf("Support: %.2f | Resistance: %.2f\n\n", a.SupportResistance.Support, a.SupportResistance.Resistance))

	// Indicators
	b.WriteString("📈 <b>Indicators:</b>\n")
	b.WriteString(fmt.Sprintf("  RSI(14): %.1f\n", ind.RSI))
	b.WriteString(fmt.Sprintf("  MACD: %.3f / %.3f (hist %+.3f, %s)\n", ind.MACD.MACD, ind.MACD.Signal, ind.MACD.Histogram, ind.MACD.Trend()))
	b.WriteString(fmt.Sprintf("  Bollinger: %.2f / %.2f / %.2f (%s)\n",
		ind.Bollinger.Upper, ind.Bollinger.Middle, ind.Bollinger.Lower, ind.Bollinger.Position(a.Close)))
	b.WriteString(fmt.Sprintf("  Stochastic: K %.1f D %.1f (%s)\n", ind.Stochastic.K, ind.Stochastic.D, ind.Stochastic.Signal()))
	b.WriteString(fmt.Sprintf("  ATR(14): %.2f (%s volatility)\n\n", ind.ATR.ATR, ind.ATR.Volatility))

	// Scores
	b.WriteString("🧮 <b>Scores:</b>\n")
	b.WriteString(fmt.Sprintf("  Technical %.0f | Trend %.0f | Enhanced %.1f\n", sc.Technical, sc.PriceTrend, sc.Enhanced))
	b.WriteString(fmt.Sprintf("  Momentum %.0f | Risk %.1f | Strategy +%.0f\n", sc.Momentum, sc.Risk, sc.StrategyAdjustment))
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Overall: <b>%.1f</b>\n\n", sc.Overall))

	b.WriteString(fmt.Sprintf("%s <b>%s</b>", suggestionIcons[a.Signal.Suggestion], a.Signal.Suggestion))
	if len(a.Signal.Tags) > 0 {
		b.WriteString(fmt.Sprintf(" · %s", strings.Join(a.Signal.Tags, ", ")))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatRanking lists the top analyses by overall score. failed names symbols that could not be scored.
func FormatRanking(top []*model.Analysis, scanned int, failed []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>Watchlist ranking</b> | %s\n\n", time.Now().Format("2006-01-02")))
	if len(top) == 0 {
		b.WriteString("No symbols could be scored.\n")
	}
	for i, a := range top {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> %.1f %s %s (%.2f)\n",
			i+1, html.EscapeString(a.Symbol), a.Scores.Overall, suggestionIcons[a.Signal.Suggestion], a.Signal.Suggestion, a.Close))
	}
	b.WriteString(fmt.Sprintf("\nScanned %d symbols", scanned))
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf(", %d failed: %s", len(failed), html.EscapeString(strings.Join(failed, ", "))))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatAlertFired formats a triggered alert.
func FormatAlertFired(r alert.Rule) string {
	return fmt.Sprintf("🔔 <b>Alert</b> | %s\n%s", r.TriggeredAt.Format("2006-01-02 15:04"), html.EscapeString(r.Message))
}

// FormatAlerts lists active alert rules.
func FormatAlerts(rules []alert.Rule) string {
	if len(rules) == 0 {
		return "🔕 No active alerts."
	}
	var b strings.Builder
	b.WriteString("🔔 <b>Active alerts</b>\n\n")
	for _, r := range rules {
		target := "price"
		if r.Kind == alert.KindTechnical {
			target = r.Indicator
		}
		b.WriteString(fmt.Sprintf("• %s %s %s %.2f <code>%s</code>\n",
			html.EscapeString(r.Symbol), target, r.Condition, r.Threshold, r.ID[:min(8, len(r.ID))]))
	}
	return b.String()
}

// FormatBacktest formats a backtest report.
func FormatBacktest(symbol string, rep *model.PerformanceReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧪 <b>Backtest</b> | %s | %s\n\n", html.EscapeString(symbol), rep.Strategy))
	b.WriteString(fmt.Sprintf("Initial capital: $%.2f\n", rep.InitialCapital))
	b.WriteString(fmt.Sprintf("Final value: $%.2f\n", rep.FinalValue))
	b.WriteString(fmt.Sprintf("Total return: %+.2f%%\n", rep.TotalReturn*100))
	b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", rep.WinRate*100))
	b.WriteString(fmt.Sprintf("Max drawdown: %.2f%%\n", rep.MaxDrawdown*100))
	b.WriteString(fmt.Sprintf("Sharpe ratio: %.2f\n", rep.SharpeRatio))
	b.WriteString(fmt.Sprintf("Trades: %d\n", len(rep.Trades)))
	return b.String()
}

// FormatWatchlist lists every group and its symbols.
func FormatWatchlist(groups []watchlist.Group) string {
	var b strings.Builder
	b.WriteString("⭐ <b>Watchlist</b>\n")
	for _, g := range groups {
		symbols := "(empty)"
		if len(g.Symbols) > 0 {
			symbols = strings.Join(g.Symbols, ", ")
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b>: %s", html.EscapeString(g.Name), html.EscapeString(symbols)))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatHistory lists recent stored analyses for a symbol.
func FormatHistory(symbol string, rows []recorder.AnalysisRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No history for %s.", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕘 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s  %.2f  score %.1f  %s\n", r.Timestamp.Format("01-02 15:04"), r.Close, r.Overall, r.Suggestion))
	}
	return b.String()
}

// HelpText lists the supported commands.
const HelpText = `<b>Commands</b>
/analyze SYMBOL [strategy] - score a symbol (momentum, value, volume, balanced)
/rank - rank the watchlist
/watchlist - show groups
/add SYMBOL [group] - watch a symbol
/remove SYMBOL [group] - stop watching
/alert SYMBOL price above|below|cross VALUE
/alert SYMBOL rsi|macd|histogram|stoch_k|atr|score above|below|cross_up|cross_down VALUE
/alerts - list active alerts
/delalert ID - delete an alert
/backtest SYMBOL [sma_crossover|rsi|macd]
/history SYMBOL - recent scores`
