package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"StockSentinel/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage time series API.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
func NewAlphaVantageFetcher(apiKey, proxyURL string) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: alphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

func (f *AlphaVantageFetcher) FetchBars(ctx context.Context, symbol string, tf Timeframe, limit int) (model.Series, error) {
	if tf == Weekly {
		bars, err := f.fetchSeries(ctx, symbol, "TIME_SERIES_WEEKLY", "Weekly Time Series", "compact")
		if err == nil {
			return trimBars(bars, limit), nil
		}
		// Aggregate daily bars when the weekly endpoint is unavailable.
		daily, dailyErr := f.fetchSeries(ctx, symbol, "TIME_SERIES_DAILY", "Time Series (Daily)", "full")
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		return trimBars(aggregateDailyToWeekly(daily), limit), nil
	}

	outputSize := "compact"
	if limit > 100 {
		outputSize = "full"
	}
	bars, err := f.fetchSeries(ctx, symbol, "TIME_SERIES_DAILY", "Time Series (Daily)", outputSize)
	if err != nil {
		return nil, err
	}
	return trimBars(bars, limit), nil
}

func (f *AlphaVantageFetcher) fetchSeries(ctx context.Context, symbol, function, seriesKey, outputSize string) (model.Series, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("alphavantage: api key not configured")
	}
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("outputsize", outputSize)
	q.Set("apikey", f.APIKey)
	endpoint := f.BaseURL + "/query?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseAlphaVantage(body, seriesKey)
}

func parseAlphaVantage(body []byte, seriesKey string) (model.Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("alphavantage decode: invalid json")
	}
	root := gjson.ParseBytes(body)
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if msg := root.Get(key); msg.Exists() {
			return nil, fmt.Errorf("alphavantage api error: %s", msg.String())
		}
	}

	var series gjson.Result
	root.ForEach(func(key, value gjson.Result) bool {
		if key.String() == seriesKey {
			series = value
			return false
		}
		return true
	})
	if !series.IsObject() {
		return nil, fmt.Errorf("alphavantage: %w", ErrNoData)
	}

	var bars model.Series
	var parseErr error
	series.ForEach(func(date, v gjson.Result) bool {
		t, err := time.Parse("2006-01-02", date.String())
		if err != nil {
			parseErr = fmt.Errorf("alphavantage: bad date %q: %w", date.String(), err)
			return false
		}
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   v.Get(`1\. open`).Float(),
			High:   v.Get(`2\. high`).Float(),
			Low:    v.Get(`3\. low`).Float(),
			Close:  v.Get(`4\. close`).Float(),
			Volume: v.Get(`5\. volume`).Float(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alphavantage: %w", ErrNoData)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// aggregateDailyToWeekly converts daily bars into ISO-week bars.
func aggregateDailyToWeekly(daily model.Series) model.Series {
	if len(daily) == 0 {
		return nil
	}
	var weekly model.Series
	week := daily[0]
	for _, d := range daily[1:] {
		wy, ww := week.Time.ISOWeek()
		dy, dw := d.Time.ISOWeek()
		if wy != dy || ww != dw {
			weekly = append(weekly, week)
			week = d
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
