package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type AppConfig struct {
	ServiceName    string `env:"SERVICE_NAME" env-default:"cpfregistry"`
	ServiceVersion string `env:"SERVICE_VERSION" env-default:"1.0.0"`
	Port           string `env:"PORT" env-default:"8080"`
	GinMode        string `env:"GIN_MODE" env-default:"debug"`

	Database DatabaseConfig
	Cache    CacheConfig

	LokiURL      string `env:"LOKI_URL"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	MetricsPort  string `env:"METRICS_PORT" env-default:"9091"`

	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RateLimitConfigs map[string]RateLimitConfig

	EnforceHTTPS bool `env:"ENFORCE_HTTPS" env-default:"false"`

	Environment string `env:"ENVIRONMENT" env-default:"development"`
}

type DatabaseConfig struct {
	Driver         string `env:"DATABASE_DRIVER" env-default:"sqlite"`
	Path           string `env:"DATABASE_PATH" env-default:"database.db"`
	URL            string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`
	LogQueries     bool   `env:"DATABASE_LOG_QUERIES" env-default:"false"`
}

type CacheConfig struct {
	Enabled bool          `env:"CACHE_ENABLED" env-default:"true"`
	TTL     time.Duration `env:"CACHE_TTL" env-default:"3s"`
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		ServiceName:    "cpfregistry",
		ServiceVersion: "1.0.0",
		Port:           "8080",
		GinMode:        "debug",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "database.db",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     3 * time.Second,
		},
		OTLPEndpoint:     "localhost:4317",
		MetricsPort:      "9091",
		RateLimitEnabled: true,
		RateLimitConfigs: defaultRateLimits(),
		EnforceHTTPS:     false,
		Environment:      "development",
	}
}

// Load reads the configuration from the environment, falling back to the defaults.
func Load() (*AppConfig, error) {
	var cfg AppConfig

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.RateLimitConfigs = defaultRateLimits()

	if cfg.GinMode == "release" {
		cfg.Environment = "production"
		cfg.EnforceHTTPS = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMemory:
		return nil
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
		return nil
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}
}

func defaultRateLimits() map[string]RateLimitConfig {
	return map[string]RateLimitConfig{
		"POST /user/spreadsheet": {
			Requests: 5,
			Window:   time.Minute,
		},
		"POST /user": {
			Requests: 30,
			Window:   time.Minute,
		},
		"/user": {
			Requests: 100,
			Window:   time.Minute,
		},
	}
}
