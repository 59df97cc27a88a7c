package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`
	DataSource struct {
		DefaultTicker string `yaml:"default_ticker" validate:"required"`
		StartDate     string `yaml:"start_date" validate:"required,datetime=2006-01-02"`
		PolygonAPIKey string `yaml:"polygon_api_key"`
	} `yaml:"data_source"`
	Forecast struct {
		IntervalWidth float64 `yaml:"interval_width" validate:"gt=0,lt=1"`
		Changepoints  int     `yaml:"changepoints" validate:"gte=0,lte=100"`
		TailRows      int     `yaml:"tail_rows" validate:"gte=1"`
	} `yaml:"forecast"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		PrewarmCron string   `yaml:"prewarm_cron"`
		Watchlist   []string `yaml:"watchlist" validate:"dive,required"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy" validate:"omitempty,url"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
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
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.DataSource.PolygonAPIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_PREWARM"); v != "" {
		cfg.Schedule.PrewarmCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.DataSource.DefaultTicker == "" {
		cfg.DataSource.DefaultTicker = "AAPL"
	}
	if cfg.DataSource.StartDate == "" {
		cfg.DataSource.StartDate = "2010-01-01"
	}
	if cfg.Forecast.IntervalWidth == 0 {
		cfg.Forecast.IntervalWidth = 0.8
	}
	if cfg.Forecast.Changepoints == 0 {
		cfg.Forecast.Changepoints = 25
	}
	if cfg.Forecast.TailRows == 0 {
		cfg.Forecast.TailRows = 5
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Schedule.PrewarmCron == "" {
		cfg.Schedule.PrewarmCron = "0 30 6 * * 1-5"
	}
	if len(cfg.Schedule.Watchlist) == 0 {
		cfg.Schedule.Watchlist = []string{cfg.DataSource.DefaultTicker}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// StartTime returns the parsed history start date.
func (c *Config) StartTime() time.Time {
	t, err := time.Parse("2006-01-02", c.DataSource.StartDate)
	if err != nil {
		return time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// TelegramEnabled reports whether crossover alerts can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
