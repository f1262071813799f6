package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"StockSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
		},
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: 30 * time.Second, Transport: transport}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[strings.ToUpper(symbol)]; ok {
		return mapped
	}
	return symbol
}

// yahooRange picks the smallest chart range covering limit bars.
func yahooRange(tf Timeframe, limit int) string {
	if tf == Weekly {
		switch {
		case limit <= 26:
			return "6mo"
		case limit <= 52:
			return "1y"
		default:
			return "2y"
		}
	}
	switch {
	case limit <= 20:
		return "1mo"
	case limit <= 60:
		return "3mo"
	case limit <= 120:
		return "6mo"
	case limit <= 250:
		return "1y"
	default:
		return "2y"
	}
}

func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, tf Timeframe, limit int) (model.Series, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), tf, yahooRange(tf, limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	bars, err := parseYahooChart(body)
	if err != nil {
		return nil, err
	}
	return trimBars(bars, limit), nil
}

func parseYahooChart(body []byte) (model.Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo decode: invalid json")
	}
	root := gjson.ParseBytes(body)
	if desc := root.Get("chart.error.description"); desc.Exists() {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}
	result := root.Get("chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make(model.Series, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue // null bars on holidays
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Open:   at(opens, i),
			High:   at(highs, i),
			Low:    at(lows, i),
			Close:  closes[i].Float(),
			Volume: at(volumes, i),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func at(values []gjson.Result, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return values[i].Float()
}
