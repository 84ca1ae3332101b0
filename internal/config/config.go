package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"ArbiOps/internal/model"
	"ArbiOps/internal/pipeline"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Simulation struct {
		Interval        time.Duration `yaml:"interval"`
		DailySpendLimit float64       `yaml:"daily_spend_limit"`
		RiskTolerance   int           `yaml:"risk_tolerance"`
		Selector        string        `yaml:"selector"`
		Seed            uint64        `yaml:"seed"`
		Announce        *bool         `yaml:"announce"`
	} `yaml:"simulation"`
	LogSource struct {
		BaseURL         string        `yaml:"base_url"`
		APIKey          string        `yaml:"api_key"`
		Model           string        `yaml:"model"`
		Timeout         time.Duration `yaml:"timeout"`
		BreakerFailures uint32        `yaml:"breaker_failures"`
		BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
		Mock            bool          `yaml:"mock"`
	} `yaml:"log_source"`
	Backend struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backend"`
	Schedule struct {
		HealthCron        string `yaml:"health_cron"`
		OpportunitiesCron string `yaml:"opportunities_cron"`
		MarketplaceCron   string `yaml:"marketplace_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // megabytes
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
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
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LogSource.APIKey = v
	}
	if v := os.Getenv("LOG_SOURCE_URL"); v != "" {
		cfg.LogSource.BaseURL = v
	}
	if v := os.Getenv("ARBI_API_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("ARBI_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
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
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SIM_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse SIM_INTERVAL: %w", err)
		}
		cfg.Simulation.Interval = d
	}
	if v := os.Getenv("LOG_SOURCE_MOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogSource.Mock = b
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Simulation.Interval == 0 {
		c.Simulation.Interval = 3 * time.Second
	}
	if c.Simulation.DailySpendLimit == 0 {
		c.Simulation.DailySpendLimit = 500
	}
	if c.Simulation.RiskTolerance == 0 {
		c.Simulation.RiskTolerance = 35
	}
	if c.Simulation.Selector == "" {
		c.Simulation.Selector = "random"
	}
	if c.Simulation.Announce == nil {
		on := true
		c.Simulation.Announce = &on
	}
	if c.LogSource.Model == "" {
		c.LogSource.Model = "gemini-3-flash-preview"
	}
	if c.LogSource.Timeout == 0 {
		c.LogSource.Timeout = 2 * time.Second
	}
	if c.LogSource.BreakerFailures == 0 {
		c.LogSource.BreakerFailures = 3
	}
	if c.LogSource.BreakerCooldown == 0 {
		c.LogSource.BreakerCooldown = 30 * time.Second
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 15 * time.Second
	}
	if c.Schedule.HealthCron == "" {
		c.Schedule.HealthCron = "0 * * * * *"
	}
	if c.Schedule.OpportunitiesCron == "" {
		c.Schedule.OpportunitiesCron = "0 */5 * * * *"
	}
	if c.Schedule.MarketplaceCron == "" {
		c.Schedule.MarketplaceCron = "*/30 * * * * *"
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 28
	}
}

// Controls returns the initial simulation controls.
func (c *Config) Controls() model.Controls {
	return model.Controls{
		DailySpendLimit: c.Simulation.DailySpendLimit,
		RiskTolerance:   c.Simulation.RiskTolerance,
	}
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if c.Simulation.Interval < time.Second {
		return fmt.Errorf("simulation.interval must be at least 1s, got %v", c.Simulation.Interval)
	}
	if c.Simulation.Interval%time.Second != 0 {
		return fmt.Errorf("simulation.interval must be a whole number of seconds, got %v", c.Simulation.Interval)
	}
	if err := c.Controls().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if _, err := pipeline.New(c.Simulation.Selector, nil); err != nil {
		return fmt.Errorf("simulation.selector: %w", err)
	}
	if c.LogSource.Timeout <= 0 || c.LogSource.Timeout > c.Simulation.Interval {
		return fmt.Errorf("log_source.timeout must be in (0, simulation.interval], got %v", c.LogSource.Timeout)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}
