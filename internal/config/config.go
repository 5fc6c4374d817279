package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/latepost/internal/late"
	"github.com/MimeLyc/latepost/pkg/log"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// Late API:
// - LATE_API_KEY: bearer credential (required)
// - LATE_API_URL: API base URL (default: https://getlate.dev/api/v1)
// - LATE_TIMEOUT: request timeout in seconds (default: 120)
//
// Profile and accounts:
//   - LATE_PROFILE_NAME: profile resolved by name at startup (default: deendecal4)
//   - LATE_PROFILE_ID, INSTAGRAM_ACCOUNT_ID, TIKTOK_ACCOUNT_ID, YOUTUBE_ACCOUNT_ID:
//     optional explicit IDs, skip the lookup for whatever is set
//
// Schedule:
// - TIMEZONE: IANA zone of the posting windows (default: America/New_York)
// - VIDEO_DIR: directory of videos to cycle (default: used2)
// - CAMPAIGN_FILE: optional JSON file with captions and hashtags
// - CRON_EXPR: run on this schedule instead of once (optional)
// - DRY_RUN: plan and print without calling the API (default: false)
//
// Rate limiting:
// - RATE_LIMIT_PAUSE: fixed pause after a 429 (default: 60s)
// - RATE_LIMIT_HONOR_RESET: wait for X-RateLimit-Reset instead (default: false)
// - RATE_LIMIT_MAX_WAIT: upper bound when honoring the reset (default: 15m)
//
// Logging:
// - LOG_LEVEL: debug, info, warn, error (default: info)
// - LOG_FILE: rotated log file, in addition to stdout (optional)
type Config struct {
	Late      LateConfig      `json:"late"`
	Accounts  late.Accounts   `json:"accounts"`
	Schedule  ScheduleConfig  `json:"schedule"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Log       LogConfig       `json:"log"`
}

type LateConfig struct {
	APIKey      string `json:"-"`
	APIURL      string `json:"api_url"`
	Timeout     int    `json:"timeout"`
	ProfileName string `json:"profile_name"`
}

type ScheduleConfig struct {
	Timezone     string `json:"timezone"`
	VideoDir     string `json:"video_dir"`
	CampaignFile string `json:"campaign_file"`
	CronExpr     string `json:"cron_expr"`
	DryRun       bool   `json:"dry_run"`
}

type RateLimitConfig struct {
	Pause      time.Duration `json:"pause"`
	HonorReset bool          `json:"honor_reset"`
	MaxWait    time.Duration `json:"max_wait"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}

func (c *Config) LateClientConfig() *late.Config {
	return &late.Config{
		APIKey:  c.Late.APIKey,
		APIURL:  c.Late.APIURL,
		Timeout: c.Late.Timeout,
	}
}

// Option is a function type for configuring Config
type Option func(*Config)

func WithVideoDir(dir string) Option {
	return func(c *Config) {
		c.Schedule.VideoDir = dir
	}
}

func WithDryRun(dryRun bool) Option {
	return func(c *Config) {
		c.Schedule.DryRun = dryRun
	}
}

func WithCronExpr(expr string) Option {
	return func(c *Config) {
		c.Schedule.CronExpr = expr
	}
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Late: LateConfig{
			APIKey:      getEnvString("LATE_API_KEY", ""),
			APIURL:      getEnvString("LATE_API_URL", late.DefaultAPIURL),
			Timeout:     getEnvInt("LATE_TIMEOUT", 120),
			ProfileName: getEnvString("LATE_PROFILE_NAME", "deendecal4"),
		},
		Accounts: late.Accounts{
			ProfileID: getEnvString("LATE_PROFILE_ID", ""),
			Instagram: getEnvString("INSTAGRAM_ACCOUNT_ID", ""),
			TikTok:    getEnvString("TIKTOK_ACCOUNT_ID", ""),
			YouTube:   getEnvString("YOUTUBE_ACCOUNT_ID", ""),
		},
		Schedule: ScheduleConfig{
			Timezone:     getEnvString("TIMEZONE", "America/New_York"),
			VideoDir:     getEnvString("VIDEO_DIR", "used2"),
			CampaignFile: getEnvString("CAMPAIGN_FILE", ""),
			CronExpr:     getEnvString("CRON_EXPR", ""),
			DryRun:       getEnvBool("DRY_RUN", false),
		},
		RateLimit: RateLimitConfig{
			Pause:      getEnvDuration("RATE_LIMIT_PAUSE", time.Minute),
			HonorReset: getEnvBool("RATE_LIMIT_HONOR_RESET", false),
			MaxWait:    getEnvDuration("RATE_LIMIT_MAX_WAIT", 15*time.Minute),
		},
		Log: LogConfig{
			Level: getEnvString("LOG_LEVEL", "info"),
			File:  getEnvString("LOG_FILE", ""),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Debug("Config: %+v", config.Redacted())
	return config, nil
}

// Redacted returns a copy safe to log: the API key is masked.
func (c Config) Redacted() Config {
	if c.Late.APIKey != "" {
		c.Late.APIKey = "***"
	}
	return c
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Late.APIKey == "" && !c.Schedule.DryRun {
		return fmt.Errorf("LATE_API_KEY is required")
	}
	if strings.TrimSpace(c.Schedule.VideoDir) == "" {
		return fmt.Errorf("VIDEO_DIR is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Schedule.Timezone, err)
	}
	if c.Schedule.CronExpr != "" {
		if _, err := cron.ParseStandard(c.Schedule.CronExpr); err != nil {
			return fmt.Errorf("invalid CRON_EXPR: %w", err)
		}
	}
	if c.RateLimit.Pause < 0 {
		return fmt.Errorf("RATE_LIMIT_PAUSE must not be negative")
	}
	if c.RateLimit.HonorReset && c.RateLimit.MaxWait <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_WAIT must be positive when RATE_LIMIT_HONOR_RESET is set")
	}
	if c.Late.Timeout < 1 {
		return fmt.Errorf("LATE_TIMEOUT must be greater than 0")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
