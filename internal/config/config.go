// Package config resolves runtime configuration from defaults, an optional
// YAML file, and SUPERETTE_* environment variables, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Storage backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the full runtime configuration. Field names map to
// SUPERETTE_DB_PATH, SUPERETTE_LISTEN_ADDR, and so on.
type Config struct {
	DBPath     string `envconfig:"DB_PATH" yaml:"db_path"`
	ListenAddr string `envconfig:"LISTEN_ADDR" yaml:"listen_addr"`
	TaxRate    string `envconfig:"TAX_RATE" yaml:"tax_rate"`
	Backend    string `envconfig:"BACKEND" yaml:"backend"`
	LogLevel   string `envconfig:"LOG_LEVEL" yaml:"log_level"`
	StoreName  string `envconfig:"STORE_NAME" yaml:"store_name"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		DBPath:     "superette.db",
		ListenAddr: "127.0.0.1:8347",
		TaxRate:    "0.20",
		Backend:    BackendSQLite,
		LogLevel:   "info",
		StoreName:  "SUPERETTE POS",
	}
}

// Load builds the effective configuration. A non-empty path names a YAML
// file layered over the defaults before the environment is applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("superette", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	if c.Backend != BackendSQLite && c.Backend != BackendMemory {
		return fmt.Errorf("invalid backend %q: must be %q or %q", c.Backend, BackendSQLite, BackendMemory)
	}
	if _, err := c.Rate(); err != nil {
		return err
	}
	return nil
}

// Rate parses the configured tax rate as an exact decimal.
func (c *Config) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid tax rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid tax rate %q: cannot be negative", c.TaxRate)
	}
	return rate, nil
}
