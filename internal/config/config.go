// Package config loads runtime settings from ARSENAL_* environment variables
// and an optional arsenal.env file. Command-line flags override both.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the runtime settings.
type Config struct {
	DBPath    string `mapstructure:"DB"`
	Addr      string `mapstructure:"ADDR"`
	AdminUser string `mapstructure:"ADMIN_USER"`
	LogPath   string `mapstructure:"LOG"`

	// RedisURL selects Redis for idempotency keys. Empty keeps them in SQLite.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Metrics exposes GET /metrics.
	Metrics bool `mapstructure:"METRICS"`

	TokenExpiryHours int `mapstructure:"TOKEN_EXPIRY_HOURS"`
}

// Load reads the configuration. Each dir is searched for arsenal.env; a
// missing file is not an error.
func Load(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("arsenal")
	v.SetConfigType("env")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetEnvPrefix("ARSENAL")
	v.AutomaticEnv()

	v.SetDefault("DB", "arsenal.sqlite3")
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ADMIN_USER", "Admin")
	v.SetDefault("LOG", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("METRICS", true)
	v.SetDefault("TOKEN_EXPIRY_HOURS", 7*24)

	if len(dirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.TokenExpiryHours <= 0 {
		return nil, fmt.Errorf("TOKEN_EXPIRY_HOURS must be positive, got %d", cfg.TokenExpiryHours)
	}
	return cfg, nil
}
