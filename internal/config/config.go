package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	KeyRate   KeyRateConfig   `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type KeyRateConfig struct {
	URL      string `mapstructure:"KEY_RATE_URL"`
	Timeout  string `mapstructure:"KEY_RATE_TIMEOUT"`
	CacheTTL string `mapstructure:"KEY_RATE_CACHE_TTL"`
	// Fallback is used when neither the central bank nor the cache can answer.
	Fallback string `mapstructure:"KEY_RATE_FALLBACK"`
}

type SchedulerConfig struct {
	KeyRateRefresh string `mapstructure:"KEY_RATE_REFRESH_SCHEDULE"`
	Timezone       string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KEY_RATE_URL", "http://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx")
	v.SetDefault("KEY_RATE_TIMEOUT", "15s")
	v.SetDefault("KEY_RATE_CACHE_TTL", "6h")
	v.SetDefault("KEY_RATE_FALLBACK", "")
	v.SetDefault("KEY_RATE_REFRESH_SCHEDULE", "0 0 */6 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Europe/Moscow")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.KeyRate.URL == "" {
		return fmt.Errorf("KEY_RATE_URL is required")
	}

	for name, value := range map[string]string{
		"SERVER_READ_TIMEOUT":  c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT": c.Server.WriteTimeout,
		"KEY_RATE_TIMEOUT":     c.KeyRate.Timeout,
		"KEY_RATE_CACHE_TTL":   c.KeyRate.CacheTTL,
		"HEALTH_CHECK_TIMEOUT": c.Health.Timeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be greater than 0", name)
		}
	}

	if c.KeyRate.Fallback != "" {
		rate, err := decimal.NewFromString(c.KeyRate.Fallback)
		if err != nil {
			return fmt.Errorf("KEY_RATE_FALLBACK must be a valid decimal: %w", err)
		}
		if rate.IsNegative() {
			return fmt.Errorf("KEY_RATE_FALLBACK must not be negative")
		}
	}

	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Scheduler.KeyRateRefresh); err != nil {
		return fmt.Errorf("KEY_RATE_REFRESH_SCHEDULE must be a valid cron expression: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid timezone: %w", err)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// HasDatabase reports whether calculations should be persisted
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// GetKeyRateFallback returns the configured static key rate, if any
func (c *Config) GetKeyRateFallback() (decimal.Decimal, bool) {
	if c.KeyRate.Fallback == "" {
		return decimal.Zero, false
	}
	rate, _ := decimal.NewFromString(c.KeyRate.Fallback)
	return rate, true
}

// GetKeyRateTimeout returns the key rate request ceiling as duration
func (c *Config) GetKeyRateTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.KeyRate.Timeout)
	return timeout
}

// GetKeyRateCacheTTL returns how long a fetched key rate stays fresh
func (c *Config) GetKeyRateCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.KeyRate.CacheTTL)
	return ttl
}

// GetReadTimeout returns the HTTP server read timeout
func (c *Config) GetReadTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Server.ReadTimeout)
	return timeout
}

// GetWriteTimeout returns the HTTP server write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Server.WriteTimeout)
	return timeout
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// GetSchedulerLocation returns the timezone the scheduler and "today" use
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
