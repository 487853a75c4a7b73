package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the CLI configuration. Flags override it.
type Config struct {
	APIURL    string        `env:"PORTAL_API_URL, default=http://localhost:3001/api"`
	TokenFile string        `env:"PORTAL_TOKEN_FILE"`
	LogLevel  string        `env:"PORTAL_LOG_LEVEL, default=warn"`
	Out       string        `env:"PORTAL_OUT, default=text"`
	Timeout   time.Duration `env:"PORTAL_TIMEOUT, default=30s"`
}

func loadConfig(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.TokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: no PORTAL_TOKEN_FILE and no home directory: %w", err)
		}
		cfg.TokenFile = filepath.Join(home, ".medunit", "token")
	}
	return &cfg, nil
}
