package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	OTLP      OTLPConfig
	LogLevel  slog.Level
}

type ServerConfig struct {
	Host            string
	Port            string
	ShutdownTimeout time.Duration
}

// Addr is the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type StorageConfig struct {
	Driver      string
	DatabaseURL string
}

// CacheConfig enables the Redis product cache when Addr is set.
type CacheConfig struct {
	Addr string
	TTL  time.Duration
}

// RateLimitConfig disables rate limiting when RPS is zero.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type OTLPConfig struct {
	Endpoint    string
	ServiceName string
	Environment string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("storage_driver", DriverMemory)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_service_name", "product-catalog")
	v.SetDefault("otel_environment", "development")
	v.SetDefault("log_level", "info")
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/product-catalog")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", v.GetString("log_level"), err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server_host"),
			Port:            v.GetString("server_port"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(v.GetString("storage_driver")),
			DatabaseURL: v.GetString("database_url"),
		},
		Cache: CacheConfig{
			Addr: v.GetString("redis_addr"),
			TTL:  v.GetDuration("cache_ttl"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit_rps"),
			Burst: v.GetInt("rate_limit_burst"),
		},
		OTLP: OTLPConfig{
			Endpoint:    v.GetString("otel_exporter_otlp_endpoint"),
			ServiceName: v.GetString("otel_service_name"),
			Environment: v.GetString("otel_environment"),
		},
		LogLevel: level,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres, DriverGorm:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage driver %q requires DATABASE_URL", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit values cannot be negative")
	}
	return nil
}
