package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "AAPL", cfg.DataSource.DefaultTicker)
	assert.Equal(t, "2010-01-01", cfg.DataSource.StartDate)
	assert.Equal(t, 0.8, cfg.Forecast.IntervalWidth)
	assert.Equal(t, 25, cfg.Forecast.Changepoints)
	assert.Equal(t, 5, cfg.Forecast.TailRows)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"AAPL"}, cfg.Schedule.Watchlist)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime())
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9000"
data_source:
  default_ticker: MSFT
forecast:
  tail_rows: 10
cache:
  ttl: 2h
schedule:
  watchlist: [MSFT, NVDA]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "MSFT", cfg.DataSource.DefaultTicker)
	assert.Equal(t, 10, cfg.Forecast.TailRows)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"MSFT", "NVDA"}, cfg.Schedule.Watchlist)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	cfg.Forecast.IntervalWidth = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Forecast.IntervalWidth = 0.9
	cfg.Telegram.BotToken = "token"
	assert.Error(t, cfg.Validate(), "chat id is required with a bot token")

	cfg.Telegram.ChatID = "42"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.TelegramEnabled())

	cfg.DataSource.StartDate = "01/01/2010"
	assert.Error(t, cfg.Validate())
}
