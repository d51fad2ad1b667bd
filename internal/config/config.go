package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Download DownloadConfig `yaml:"download"`
	Storage  StorageConfig  `yaml:"storage"`
	Ops      OpsConfig      `yaml:"ops"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`

	// DeveloperID is the allow-listed operator chat. Zero disables
	// operator-only features (stats commands, error reports).
	DeveloperID int64 `yaml:"developer_id" envconfig:"DEVELOPER_ID"`

	// Private restricts the bot to the developer chat.
	Private bool `yaml:"private" envconfig:"IS_BOT_PRIVATE" default:"true"`

	// APIBaseURL points at a local Bot API server for 2GB uploads.
	// Empty means the hosted api.telegram.org.
	APIBaseURL string `yaml:"api_base_url" envconfig:"BOT_API_BASE_URL"`
}

// LookupConfig holds lookup-service (vxtwitter) configuration.
type LookupConfig struct {
	BaseURL   string        `yaml:"base_url" envconfig:"LOOKUP_BASE_URL" default:"https://api.vxtwitter.com"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"LOOKUP_TIMEOUT" default:"30s"`
	UserAgent string        `yaml:"user_agent" envconfig:"LOOKUP_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// DownloadConfig holds fallback video download configuration.
type DownloadConfig struct {
	// Timeout bounds one streamed fetch. Generous: the asset may be
	// hundreds of megabytes.
	Timeout       time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"20m"`
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"DOWNLOAD_RETRY_DELAY" default:"5s"`
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" envconfig:"DOWNLOAD_MAX_RETRY_DELAY" default:"60s"`
	UserAgent     string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// StorageConfig holds filesystem and stats persistence configuration.
type StorageConfig struct {
	// DataDir receives transient video/thumbnail files during fallback
	// delivery. Contents never outlive a single delivery.
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`

	// StatsDBPath is the SQLite file carrying the delivery counters
	// across restarts.
	StatsDBPath string `yaml:"stats_db_path" envconfig:"STATS_DB_PATH" default:"data/stats.db"`
}

// OpsConfig holds the operational HTTP endpoint configuration.
type OpsConfig struct {
	// Addr is the listen address for /health and /stats. Empty disables
	// the ops server.
	Addr string `yaml:"addr" envconfig:"OPS_ADDR" default:":9847"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Bot.Private && c.Bot.DeveloperID == 0 {
		return fmt.Errorf("IS_BOT_PRIVATE requires DEVELOPER_ID")
	}
	if c.Lookup.BaseURL == "" {
		return fmt.Errorf("LOOKUP_BASE_URL is required")
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	return nil
}
