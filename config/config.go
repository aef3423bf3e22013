package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	External  ExternalConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExternalConfig holds external recipes API configuration
type ExternalConfig struct {
	URL              string        `mapstructure:"url"`
	RetryMaxAttempts int           `mapstructure:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	BreakerFailures  int           `mapstructure:"breaker_failures"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recipehub/")

	// Environment variable settings
	v.SetEnvPrefix("RECIPEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// External API defaults
	v.SetDefault("external.url", "https://dummyjson.com/recipes")
	v.SetDefault("external.retry_max_attempts", 3)
	v.SetDefault("external.retry_base_delay", "2s")
	v.SetDefault("external.connect_timeout", "5s")
	v.SetDefault("external.read_timeout", "10s")
	v.SetDefault("external.breaker_failures", 5)
	v.SetDefault("external.breaker_cooldown", "30s")

	// Cache defaults
	v.SetDefault("cache.ttl", "10m")

	// Database defaults
	v.SetDefault("database.path", "recipes.db")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.External.URL == "" {
		return fmt.Errorf("external API URL is required (set RECIPEHUB_EXTERNAL_URL)")
	}

	if config.External.RetryMaxAttempts < 1 {
		return fmt.Errorf("external retry max attempts must be at least 1, got: %d", config.External.RetryMaxAttempts)
	}

	if config.External.RetryBaseDelay < 100*time.Millisecond {
		return fmt.Errorf("external retry base delay must be at least 100ms, got: %s", config.External.RetryBaseDelay)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required (set RECIPEHUB_DATABASE_PATH)")
	}

	return nil
}
