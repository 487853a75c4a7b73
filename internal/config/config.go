package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the portal API service.
type Config struct {
	Port        string `env:"PORT, default=3001"`
	Origin      string `env:"ORIGIN, default=http://localhost:5173"`
	Environment string `env:"ENV, default=development"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	AppURL      string `env:"APP_URL, default=http://localhost:5173"`

	JWTSecret            string `env:"JWT_SECRET, default=default_jwt_secret"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES, default=1440"`

	PasswordResetTokenExpiry time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRY, default=1h"`

	Database DatabaseConfig
	Redis    RedisConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=3306"`
	Username string `env:"DB_USERNAME, default=root"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME, default=medunit"`
}

// DSN is the MySQL data source name.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

// RedisConfig points at the password-reset token store. An empty Addr keeps
// reset tokens in process memory.
type RedisConfig struct {
	Addr    string        `env:"REDIS_ADDR"`
	DB      int           `env:"REDIS_DB, default=0"`
	Timeout time.Duration `env:"REDIS_TIMEOUT, default=3s"`
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool { return c.Environment == "production" }

// LoadConfig loads configuration from environment variables
func LoadConfig(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTExpirationMinutes <= 0 {
		return nil, errors.New("config: JWT_EXPIRATION_MINUTES must be positive")
	}
	if cfg.Production() && cfg.JWTSecret == "default_jwt_secret" {
		return nil, errors.New("config: JWT_SECRET must be set in production")
	}
	return &cfg, nil
}
