package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Providers       []string `yaml:"providers"`
		AlphaVantageKey string   `yaml:"alpha_vantage_key"`
		MockPrice       float64  `yaml:"mock_price"`
		HistoryBars     int      `yaml:"history_bars"`
		DefaultStrategy string   `yaml:"default_strategy"`
	} `yaml:"data_source"`
	Schedule struct {
		ScanCron    string `yaml:"scan_cron"`
		AlertCron   string `yaml:"alert_cron"`
		RankingCron string `yaml:"ranking_cron"`
		RankTopN    int    `yaml:"rank_top_n"`
		Concurrency int    `yaml:"concurrency"`
		RunOnStart  bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Watchlist struct {
		File    string   `yaml:"file"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"watchlist"`
	Alerts struct {
		File string `yaml:"file"`
	} `yaml:"alerts"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Backtest struct {
		InitialCapital float64 `yaml:"initial_capital"`
		Bars           int     `yaml:"bars"`
	} `yaml:"backtest"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env, then the YAML file, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.DataSource.AlphaVantageKey = v
	}
	if v := os.Getenv("DATA_PROVIDERS"); v != "" {
		cfg.DataSource.Providers = splitList(v)
	}
	if v := os.Getenv("DEFAULT_STRATEGY"); v != "" {
		cfg.DataSource.DefaultStrategy = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist.Symbols = splitList(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("CRON_ALERT"); v != "" {
		cfg.Schedule.AlertCron = v
	}
	if v := os.Getenv("CRON_RANKING"); v != "" {
		cfg.Schedule.RankingCron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		cfg.Schedule.RunOnStart = v == "true" || v == "1"
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		if capital, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.InitialCapital = capital
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.DataSource.Providers) == 0 {
		c.DataSource.Providers = []string{"yahoo", "alphavantage"}
	}
	if c.DataSource.HistoryBars == 0 {
		c.DataSource.HistoryBars = collector.DefaultHistoryBars
	}
	if c.DataSource.DefaultStrategy == "" {
		c.DataSource.DefaultStrategy = string(model.StrategyBalanced)
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 16 * * 1-5"
	}
	if c.Schedule.AlertCron == "" {
		c.Schedule.AlertCron = "0 */15 9-16 * * 1-5"
	}
	if c.Schedule.RankingCron == "" {
		c.Schedule.RankingCron = "0 0 8 * * 1"
	}
	if c.Schedule.RankTopN == 0 {
		c.Schedule.RankTopN = 5
	}
	if c.Schedule.Concurrency == 0 {
		c.Schedule.Concurrency = 4
	}
	if c.Watchlist.File == "" {
		c.Watchlist.File = "data/watchlist.json"
	}
	if c.Alerts.File == "" {
		c.Alerts.File = "data/alerts.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_sentinel.db"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = 10000
	}
	if c.Backtest.Bars == 0 {
		c.Backtest.Bars = 250
	}
}

var knownProviders = map[string]bool{"yahoo": true, "alphavantage": true, "mock": true}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	for _, p := range c.DataSource.Providers {
		if !knownProviders[p] {
			return fmt.Errorf("data_source.providers: unknown provider %q", p)
		}
		if p == "alphavantage" && c.DataSource.AlphaVantageKey == "" && len(c.DataSource.Providers) == 1 {
			return fmt.Errorf("data_source.alpha_vantage_key is required when alphavantage is the only provider")
		}
	}
	if c.DataSource.HistoryBars < 2 {
		return fmt.Errorf("data_source.history_bars must be at least 2")
	}
	if c.Schedule.RankTopN < 1 || c.Schedule.Concurrency < 1 {
		return fmt.Errorf("schedule.rank_top_n and schedule.concurrency must be positive")
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
