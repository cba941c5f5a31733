package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ALPACA_API_KEY", "ALPACA_SECRET_KEY", "BASE_URL", "DATA_URL", "CACHE_DIR",
		"CACHE_EXPIRATION_HOURS", "MAX_WAIT_TIME_MS", "SYMBOLS", "DEBUG", "OUTPUT_DIR",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "CRON_SCHEDULE",
		"METRICS_LISTEN", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "4H", cfg.Bars.Timeframe)
	assert.Equal(t, 1000, cfg.Bars.Limit)
	assert.Equal(t, "raw", cfg.Bars.Adjustment)
	assert.Equal(t, "sip", cfg.Bars.Feed)
	assert.Equal(t, 333*time.Millisecond, cfg.MinInterval())
	assert.Equal(t, 8*time.Hour, cfg.CacheTTL())
	assert.Equal(t, 200, cfg.Indicators.EMAPeriod)
	assert.Len(t, cfg.Aggregation.Sessions, 2)
	assert.Equal(t, "NYSE", cfg.Universe.Exchange)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
alpaca:
  api_key: file-key
  secret_key: file-secret
bars:
  limit: 500
cache:
  expiration_hours: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("MAX_WAIT_TIME_MS", "50")
	t.Setenv("SYMBOLS", " aapl, msft ,,")
	t.Setenv("DEBUG", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Alpaca.APIKey)
	assert.Equal(t, "file-secret", cfg.Alpaca.SecretKey)
	assert.Equal(t, 500, cfg.Bars.Limit)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL())
	assert.Equal(t, 50*time.Millisecond, cfg.MinInterval())
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Universe.Symbols)
	assert.True(t, cfg.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_EXPIRATION_HOURS", "eight")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "credentials are required")

	cfg.Alpaca.APIKey = "k"
	cfg.Alpaca.SecretKey = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Indicators.SlowPeriod = cfg.Indicators.FastPeriod
	assert.Error(t, cfg.Validate())
	cfg.Indicators.SlowPeriod = 26

	cfg.Aggregation.Enabled = true
	cfg.Aggregation.Sessions = []Session{{Start: "13:30", End: "09:30"}}
	assert.Error(t, cfg.Validate())

	cfg.Aggregation.Sessions = []Session{{Start: "9h", End: "10:00"}}
	assert.Error(t, cfg.Validate())
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Minute, d)

	d, err = ParseClock(" 16:00 ")
	require.NoError(t, err)
	assert.Equal(t, 16*time.Hour, d)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}
