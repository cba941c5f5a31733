package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session is a half-open [Start, End) local time-of-day window, "HH:MM".
type Session struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Config holds all application configuration. It is built once at startup
// and passed explicitly to every component.
type Config struct {
	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
		BaseURL   string `yaml:"base_url"`
		DataURL   string `yaml:"data_url"`
	} `yaml:"alpaca"`
	Universe struct {
		Status   string   `yaml:"status"`
		Exchange string   `yaml:"exchange"`
		Class    string   `yaml:"class"`
		Symbols  []string `yaml:"symbols"`
	} `yaml:"universe"`
	Bars struct {
		Timeframe     string `yaml:"timeframe"`
		Limit         int    `yaml:"limit"`
		Adjustment    string `yaml:"adjustment"`
		Feed          string `yaml:"feed"`
		LookbackMonth int    `yaml:"lookback_months"`
		MinIntervalMS int    `yaml:"min_interval_ms"`
	} `yaml:"bars"`
	Aggregation struct {
		Enabled         bool      `yaml:"enabled"`
		SourceTimeframe string    `yaml:"source_timeframe"`
		Timezone        string    `yaml:"timezone"`
		Sessions        []Session `yaml:"sessions"`
	} `yaml:"aggregation"`
	Cache struct {
		Dir             string  `yaml:"dir"`
		ExpirationHours float64 `yaml:"expiration_hours"`
	} `yaml:"cache"`
	Indicators struct {
		EMAPeriod    int `yaml:"ema_period"`
		FastPeriod   int `yaml:"fast_period"`
		SlowPeriod   int `yaml:"slow_period"`
		SignalPeriod int `yaml:"signal_period"`
	} `yaml:"indicators"`
	Rule struct {
		MinBars    int     `yaml:"min_bars"`
		PremiumPct float64 `yaml:"premium_pct"`
	} `yaml:"rule"`
	Report struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"report"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Log struct {
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Debug bool   `yaml:"debug"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides and defaults. A missing YAML file is not an error.
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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		c.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		c.Alpaca.SecretKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		c.Alpaca.BaseURL = v
	}
	if v := os.Getenv("DATA_URL"); v != "" {
		c.Alpaca.DataURL = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("CACHE_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid CACHE_EXPIRATION_HOURS: %w", err)
		}
		c.Cache.ExpirationHours = hours
	}
	if v := os.Getenv("MAX_WAIT_TIME_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_WAIT_TIME_MS: %w", err)
		}
		c.Bars.MinIntervalMS = ms
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Universe.Symbols = ParseSymbolList(v)
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug = v == "true" || v == "1"
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Report.OutputDir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("METRICS_LISTEN"); v != "" {
		c.Metrics.Listen = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Alpaca.BaseURL == "" {
		c.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
	}
	if c.Alpaca.DataURL == "" {
		c.Alpaca.DataURL = "https://data.alpaca.markets"
	}
	if c.Universe.Status == "" {
		c.Universe.Status = "active"
	}
	if c.Universe.Exchange == "" {
		c.Universe.Exchange = "NYSE"
	}
	if c.Universe.Class == "" {
		c.Universe.Class = "us_equity"
	}
	if c.Bars.Timeframe == "" {
		c.Bars.Timeframe = "4H"
	}
	if c.Bars.Limit == 0 {
		c.Bars.Limit = 1000
	}
	if c.Bars.Adjustment == "" {
		c.Bars.Adjustment = "raw"
	}
	if c.Bars.Feed == "" {
		c.Bars.Feed = "sip"
	}
	if c.Bars.LookbackMonth == 0 {
		c.Bars.LookbackMonth = 3
	}
	if c.Bars.MinIntervalMS == 0 {
		c.Bars.MinIntervalMS = 333
	}
	if c.Aggregation.SourceTimeframe == "" {
		c.Aggregation.SourceTimeframe = "30Min"
	}
	if c.Aggregation.Timezone == "" {
		c.Aggregation.Timezone = "America/New_York"
	}
	if len(c.Aggregation.Sessions) == 0 {
		c.Aggregation.Sessions = []Session{
			{Start: "09:30", End: "13:30"},
			{Start: "13:30", End: "16:00"},
		}
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "./temp/"
	}
	if c.Cache.ExpirationHours == 0 {
		c.Cache.ExpirationHours = 8
	}
	if c.Indicators.EMAPeriod == 0 {
		c.Indicators.EMAPeriod = 200
	}
	if c.Indicators.FastPeriod == 0 {
		c.Indicators.FastPeriod = 12
	}
	if c.Indicators.SlowPeriod == 0 {
		c.Indicators.SlowPeriod = 26
	}
	if c.Indicators.SignalPeriod == 0 {
		c.Indicators.SignalPeriod = 9
	}
	if c.Rule.MinBars == 0 {
		c.Rule.MinBars = 200
	}
	if c.Rule.PremiumPct == 0 {
		c.Rule.PremiumPct = 3
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "output"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 7 * * 1-5"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" {
		return fmt.Errorf("alpaca.api_key is required")
	}
	if c.Alpaca.SecretKey == "" {
		return fmt.Errorf("alpaca.secret_key is required")
	}
	if c.Bars.Limit <= 0 {
		return fmt.Errorf("bars.limit must be positive")
	}
	if c.Bars.MinIntervalMS < 0 {
		return fmt.Errorf("bars.min_interval_ms must not be negative")
	}
	if c.Cache.ExpirationHours < 0 {
		return fmt.Errorf("cache.expiration_hours must not be negative")
	}
	ind := c.Indicators
	if ind.EMAPeriod <= 0 || ind.FastPeriod <= 0 || ind.SignalPeriod <= 0 || ind.SlowPeriod <= ind.FastPeriod {
		return fmt.Errorf("indicators: periods must be positive and slow_period > fast_period")
	}
	if c.Aggregation.Enabled {
		if _, err := time.LoadLocation(c.Aggregation.Timezone); err != nil {
			return fmt.Errorf("aggregation.timezone: %w", err)
		}
		for i, s := range c.Aggregation.Sessions {
			start, err := ParseClock(s.Start)
			if err != nil {
				return fmt.Errorf("aggregation.sessions[%d].start: %w", i, err)
			}
			end, err := ParseClock(s.End)
			if err != nil {
				return fmt.Errorf("aggregation.sessions[%d].end: %w", i, err)
			}
			if end <= start {
				return fmt.Errorf("aggregation.sessions[%d]: end must be after start", i)
			}
		}
	}
	return nil
}

// MinInterval is the minimum gap between the starts of two page requests.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.Bars.MinIntervalMS) * time.Millisecond
}

// CacheTTL is the age after which a cache entry is stale.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.ExpirationHours * float64(time.Hour))
}

// ParseClock parses "HH:MM" into an offset from local midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ParseSymbolList parses a comma-separated list, trimming and upper-casing entries.
func ParseSymbolList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToUpper(strings.TrimSpace(part))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
