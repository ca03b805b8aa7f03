// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JakeFAU/sons-crawler/internal/crawler"
	"github.com/JakeFAU/sons-crawler/internal/schedule"
)

// Fetcher modes.
const (
	FetcherHeadless = "headless"
	FetcherStatic   = "static"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlerConfig governs the search-term crawl.
type CrawlerConfig struct {
	BaseURL        string   `mapstructure:"base_url"`
	UserAgent      string   `mapstructure:"user_agent"`
	Terms          []string `mapstructure:"terms"`
	PerTermCap     int      `mapstructure:"per_term_cap"`
	PageDelayMs    int      `mapstructure:"page_delay_ms"`
	FetchTimeoutMs int      `mapstructure:"fetch_timeout_ms"`
	SelectorWaitMs int      `mapstructure:"selector_wait_ms"`
}

// FetcherConfig picks how pages are retrieved.
type FetcherConfig struct {
	Mode      string `mapstructure:"mode"`
	NoSandbox bool   `mapstructure:"no_sandbox"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig sets when crawls run.
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// TelemetryConfig controls trace export.
type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	GCPProjectID string `mapstructure:"gcp_project_id"`
}

// Load builds a Config from an optional .env file, an optional config file
// and the environment. Variables use the SONS_ prefix; PORT is also honored.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "SONS_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("crawler.base_url", crawler.DefaultBaseURL)
	v.SetDefault("crawler.user_agent", crawler.DefaultUserAgent)
	v.SetDefault("crawler.terms", crawler.DefaultTerms)
	v.SetDefault("crawler.per_term_cap", crawler.DefaultPerTermCap)
	v.SetDefault("crawler.page_delay_ms", crawler.DefaultPageDelay.Milliseconds())
	v.SetDefault("crawler.fetch_timeout_ms", crawler.DefaultFetchTimeout.Milliseconds())
	v.SetDefault("crawler.selector_wait_ms", crawler.DefaultSelectorWait.Milliseconds())
	v.SetDefault("fetcher.mode", FetcherHeadless)
	v.SetDefault("fetcher.no_sandbox", true)
	v.SetDefault("storage.backend", StorageFile)
	v.SetDefault("storage.path", "./sons.json")
	v.SetDefault("schedule.cron", schedule.DefaultSpec)
	v.SetDefault("schedule.run_on_start", true)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("telemetry.service_name", "sons-crawler")
	v.SetDefault("telemetry.gcp_project_id", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if err := c.CrawlConfig().Validate(); err != nil {
		return fmt.Errorf("crawler: %w", err)
	}
	if c.Crawler.FetchTimeoutMs <= 0 {
		return fmt.Errorf("crawler.fetch_timeout_ms must be > 0")
	}
	if c.Crawler.SelectorWaitMs < 0 {
		return fmt.Errorf("crawler.selector_wait_ms must be >= 0")
	}
	switch c.Fetcher.Mode {
	case FetcherHeadless, FetcherStatic:
	default:
		return fmt.Errorf("fetcher.mode must be %q or %q, got %q", FetcherHeadless, FetcherStatic, c.Fetcher.Mode)
	}
	switch c.Storage.Backend {
	case StorageFile:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path must be set for the file backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", StorageFile, StorageMemory, c.Storage.Backend)
	}
	if strings.TrimSpace(c.Schedule.Cron) == "" {
		return fmt.Errorf("schedule.cron must be set")
	}
	return nil
}

// CrawlConfig converts the crawler section into the crawl job's settings.
func (c Config) CrawlConfig() crawler.Config {
	return crawler.Config{
		BaseURL:    c.Crawler.BaseURL,
		Terms:      append([]string(nil), c.Crawler.Terms...),
		PerTermCap: c.Crawler.PerTermCap,
		PageDelay:  time.Duration(c.Crawler.PageDelayMs) * time.Millisecond,
	}
}

// FetchTimeout is the per-page navigation budget.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.FetchTimeoutMs) * time.Millisecond
}

// SelectorWait bounds how long a rendered page may take to show results.
func (c Config) SelectorWait() time.Duration {
	return time.Duration(c.Crawler.SelectorWaitMs) * time.Millisecond
}
