// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache and click stream (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging. LogFile additionally writes to a rotated file when set.
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitAPIEnabled bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`

	// Browser origins allowed to call the API (comma separated, "*.host" wildcards)
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Request body size limit in bytes for click ingestion (default 64KB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`

	// Reports
	ReportTimezone    string        `env:"REPORT_TIMEZONE" envDefault:"UTC"`
	ReportWeekStart   string        `env:"REPORT_WEEK_START" envDefault:"sunday"`
	ReportDefaultDays int           `env:"REPORT_DEFAULT_DAYS" envDefault:"30"`
	ReportMaxDays     int           `env:"REPORT_MAX_DAYS" envDefault:"365"`
	ReportTopN        int           `env:"REPORT_TOP_N" envDefault:"10"`
	ReportCacheTTL    time.Duration `env:"REPORT_CACHE_TTL" envDefault:"60s"`

	// Click ingestion worker
	AnalyticsWorkerEnabled   bool `env:"ANALYTICS_WORKER_ENABLED" envDefault:"true"`
	AnalyticsWorkerBatchSize int  `env:"ANALYTICS_WORKER_BATCH_SIZE" envDefault:"500"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ReportLocation loads the IANA timezone used for report bucketing.
func (c *Config) ReportLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekStart parses REPORT_WEEK_START.
func (c *Config) WeekStart() (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(c.ReportWeekStart))]
	if !ok {
		return time.Sunday, fmt.Errorf("invalid REPORT_WEEK_START %q", c.ReportWeekStart)
	}
	return day, nil
}

// Validate checks values that env parsing alone cannot.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.ReportLocation(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.WeekStart(); err != nil {
		errs = append(errs, err)
	}
	if c.ReportMaxDays < 1 {
		errs = append(errs, errors.New("REPORT_MAX_DAYS must be at least 1"))
	}
	if c.ReportDefaultDays < 1 || c.ReportDefaultDays > c.ReportMaxDays {
		errs = append(errs, errors.New("REPORT_DEFAULT_DAYS must be between 1 and REPORT_MAX_DAYS"))
	}
	if c.ReportCacheTTL < 0 {
		errs = append(errs, errors.New("REPORT_CACHE_TTL must not be negative"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
