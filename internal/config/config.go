// Package config provides configuration management for the pricing application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"optpricer/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing"`
	Quote   QuoteConfig   `mapstructure:"quote"`
	UI      UIConfig      `mapstructure:"ui"`

	// Dir is the directory the config was loaded from; the database
	// and log files live under it.
	Dir string `mapstructure:"-"`
}

// PricingConfig holds default model inputs applied when a flag is not
// given on the command line.
type PricingConfig struct {
	Rate        float64 `mapstructure:"rate"`          // risk-free rate
	CostOfCarry float64 `mapstructure:"cost_of_carry"` // dividend/carry rate
	NumPaths    int     `mapstructure:"num_paths"`     // Monte Carlo paths
	MCSteps     int     `mapstructure:"mc_steps"`      // Monte Carlo steps per path
	Seed        int64   `mapstructure:"seed"`          // Monte Carlo seed
	TreeSteps   int     `mapstructure:"tree_steps"`    // binomial lattice depth
	Style       string  `mapstructure:"style"`         // default exercise style
}

// QuoteConfig holds market data provider configuration.
type QuoteConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Period      string        `mapstructure:"period"`        // history window, e.g. "1y"
	CacheMaxAge time.Duration `mapstructure:"cache_max_age"` // reuse cached bars younger than this
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/optpricer"
	}
	return filepath.Join(home, ".config", "optpricer")
}

// DatabasePath returns the SQLite path under the config directory.
func DatabasePath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "optpricer.db")
}

// LogPath returns the log file path under the config directory.
func LogPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "logs", "optpricer.log")
}

// Load loads configuration from the specified directory, creating a
// template config file on first run. If configDir is empty, uses the
// default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := writeTemplate(configDir); err != nil {
				return nil, fmt.Errorf("creating config template: %w", err)
			}
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.Dir = configDir
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pricing.rate", 0.05)
	v.SetDefault("pricing.cost_of_carry", 0.0)
	v.SetDefault("pricing.num_paths", 10000)
	v.SetDefault("pricing.mc_steps", 252)
	v.SetDefault("pricing.seed", 120)
	v.SetDefault("pricing.tree_steps", 200)
	v.SetDefault("pricing.style", "european")

	v.SetDefault("quote.endpoint", "")
	v.SetDefault("quote.timeout", 10*time.Second)
	v.SetDefault("quote.period", "1y")
	v.SetDefault("quote.cache_max_age", 24*time.Hour)

	v.SetDefault("ui.color_enabled", true)
}

// Validate checks configuration sanity.
func (c *Config) Validate() error {
	if c.Pricing.NumPaths < 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "pricing.num_paths %d", c.Pricing.NumPaths)
	}
	if c.Pricing.MCSteps < 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "pricing.mc_steps %d", c.Pricing.MCSteps)
	}
	if c.Pricing.TreeSteps < 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "pricing.tree_steps %d", c.Pricing.TreeSteps)
	}
	if c.Pricing.Style != "european" && c.Pricing.Style != "american" {
		return errors.Wrapf(errors.ErrConfigInvalid, "pricing.style %q", c.Pricing.Style)
	}
	return nil
}

const configTemplate = `# optpricer configuration

[pricing]
# Defaults applied when the matching flag is omitted.
rate = 0.05
cost_of_carry = 0.0
num_paths = 10000
mc_steps = 252
seed = 120
tree_steps = 200
style = "european"

[quote]
# Leave endpoint empty for the default Yahoo Finance chart API.
endpoint = ""
timeout = "10s"
period = "1y"
cache_max_age = "24h"

[ui]
color_enabled = true
`

func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
