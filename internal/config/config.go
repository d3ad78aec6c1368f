// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DefaultSize  int   `env:"QR_DEFAULT_SIZE" envDefault:"300"`
	MaxSize      int   `env:"QR_MAX_SIZE" envDefault:"2000"`
	MaxLogoBytes int64 `env:"LOGO_MAX_BYTES" envDefault:"5242880"`

	FetchTimeout       time.Duration `env:"SOURCE_FETCH_TIMEOUT" envDefault:"10s"`
	AllowRemoteSources bool          `env:"ALLOW_REMOTE_SOURCES" envDefault:"false"`
	ParallelDecode     bool          `env:"PARALLEL_DECODE" envDefault:"true"`
}

// Load reads the .env files given (default ".env"; missing files are fine)
// and then parses the environment. Real environment variables win over
// values from .env files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges env tags cannot express.
func (c *Config) Validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("QR_MAX_SIZE must be positive, got %d", c.MaxSize)
	}
	if c.DefaultSize <= 0 || c.DefaultSize > c.MaxSize {
		return fmt.Errorf("QR_DEFAULT_SIZE must be within 1..%d, got %d", c.MaxSize, c.DefaultSize)
	}
	if c.MaxLogoBytes <= 0 {
		return fmt.Errorf("LOGO_MAX_BYTES must be positive, got %d", c.MaxLogoBytes)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
