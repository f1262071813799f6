package scheduler

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/watchlist"
)

const defaultBacktestStrategy = "sma_crossover"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i] // "/rank@SentinelBot" in group chats
	}
	args := fields[1:]

	switch cmd {
	case "/analyze":
		if len(args) == 0 {
			return "Usage: /analyze SYMBOL [strategy]"
		}
		strategyName := s.Opts.Strategy
		if len(args) > 1 {
			strategyName = args[1]
		}
		a, err := s.Collector.Analyze(ctx, args[0], strategyName)
		if err != nil {
			return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
		}
		if err := s.Recorder.RecordAnalysis(a); err != nil {
			return fmt.Sprintf("%s\n⚠️ not recorded: %s", notifier.FormatAnalysis(a), html.EscapeString(err.Error()))
		}
		return notifier.FormatAnalysis(a)

	case "/rank":
		symbols := s.Watchlist.AllSymbols()
		if len(symbols) == 0 {
			return "Watchlist is empty. Use /add SYMBOL first."
		}
		res := s.Scan(ctx, symbols)
		return notifier.FormatRanking(Rank(res.Analyses, s.Opts.TopN), len(symbols), res.Failed)

	case "/watchlist":
		return notifier.FormatWatchlist(s.Watchlist.Groups())

	case "/add", "/remove":
		if len(args) == 0 {
			return fmt.Sprintf("Usage: %s SYMBOL [group]", cmd)
		}
		group := watchlist.DefaultGroup
		if len(args) > 1 {
			group = args[1]
		}
		if cmd == "/add" {
			added, err := s.Watchlist.Add(group, args[0])
			if err != nil {
				return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
			}
			if !added {
				return fmt.Sprintf("%s is already in %s.", strings.ToUpper(args[0]), html.EscapeString(group))
			}
			return fmt.Sprintf("✅ Added %s to %s.", strings.ToUpper(args[0]), html.EscapeString(group))
		}
		removed, err := s.Watchlist.Remove(group, args[0])
		if err != nil {
			return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
		}
		if !removed {
			return fmt.Sprintf("%s is not in %s.", strings.ToUpper(args[0]), html.EscapeString(group))
		}
		return fmt.Sprintf("✅ Removed %s from %s.", strings.ToUpper(args[0]), html.EscapeString(group))

	case "/alert":
		return s.addAlert(args)

	case "/alerts":
		return notifier.FormatAlerts(s.Alerts.Active(""))

	case "/delalert":
		if len(args) == 0 {
			return "Usage: /delalert ID"
		}
		if err := s.removeAlert(args[0]); err != nil {
			return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
		}
		return "✅ Alert deleted."

	case "/backtest":
		if len(args) == 0 {
			return "Usage: /backtest SYMBOL [sma_crossover|rsi|macd]"
		}
		name := defaultBacktestStrategy
		if len(args) > 1 {
			name = args[1]
		}
		return s.runBacktest(ctx, args[0], name)

	case "/history":
		if len(args) == 0 {
			return "Usage: /history SYMBOL"
		}
		symbol := strings.ToUpper(args[0])
		rows, err := s.Recorder.History(symbol, 10)
		if err != nil {
			return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
		}
		return notifier.FormatHistory(symbol, rows)

	default:
		return notifier.HelpText
	}
}

// addAlert parses "SYMBOL price COND VALUE" or "SYMBOL INDICATOR COND VALUE".
func (s *Scheduler) addAlert(args []string) string {
	const usage = "Usage: /alert SYMBOL price|rsi|macd|histogram|stoch_k|atr|score CONDITION VALUE"
	if len(args) != 4 {
		return usage
	}
	threshold, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return usage
	}
	target := strings.ToLower(args[1])
	cond := alert.Condition(strings.ToLower(args[2]))

	var r alert.Rule
	if target == "price" {
		r, err = s.Alerts.AddPrice(args[0], cond, threshold)
	} else {
		r, err = s.Alerts.AddTechnical(args[0], target, cond, threshold)
	}
	if err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	return fmt.Sprintf("🔔 Alert set: %s %s %s %.2f <code>%s</code>", r.Symbol, target, r.Condition, r.Threshold, r.ID)
}

// removeAlert accepts a full ID or a unique prefix as shown by /alerts.
func (s *Scheduler) removeAlert(idOrPrefix string) error {
	var match string
	for _, r := range s.Alerts.Active("") {
		if strings.HasPrefix(r.ID, idOrPrefix) {
			if match != "" {
				return fmt.Errorf("alert id prefix %q is ambiguous", idOrPrefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		match = idOrPrefix
	}
	return s.Alerts.Remove(match)
}

func (s *Scheduler) runBacktest(ctx context.Context, symbol, name string) string {
	bars, err := s.Collector.FetchHistory(ctx, symbol, s.Opts.BacktestBars)
	if err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	report, err := s.Backtests.Run(name, bars, s.Opts.InitialCapital)
	if err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	symbol = strings.ToUpper(symbol)
	if err := s.Recorder.RecordBacktest(&recorder.BacktestRun{Symbol: symbol, Bars: len(bars), Report: &report}); err != nil {
		return fmt.Sprintf("%s\n⚠️ not recorded: %s", notifier.FormatBacktest(symbol, &report), html.EscapeString(err.Error()))
	}
	return notifier.FormatBacktest(symbol, &report)
}
