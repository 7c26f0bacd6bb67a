// Package config provides configuration management for bondcheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "bondcheck/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	RefData   RefDataConfig   `mapstructure:"refdata"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ProviderConfig holds market-data provider settings.
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RateLimit      int    `mapstructure:"rate_limit"` // requests per second
}

// HighlightConfig holds the default near-term highlighting settings.
// Both can be overridden per command with flags.
type HighlightConfig struct {
	Overnight bool `mapstructure:"overnight"`
	ExtraDays int  `mapstructure:"extra_days"`
}

// RefDataConfig holds the optional emitter reference settings.
type RefDataConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	EmitterURL string `mapstructure:"emitter_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/bondcheck"
	}
	return filepath.Join(home, ".config", "bondcheck")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.base_url", "https://iss.moex.com")
	v.SetDefault("provider.timeout_seconds", 10)
	v.SetDefault("provider.rate_limit", 10)
	v.SetDefault("highlight.overnight", false)
	v.SetDefault("highlight.extra_days", 2)
	v.SetDefault("refdata.enabled", false)
	v.SetDefault("refdata.emitter_url", "")
	v.SetDefault("logging.level", "info")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BONDCHECK_PROVIDER_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("BONDCHECK_EMITTER_URL"); v != "" {
		cfg.RefData.EmitterURL = v
		cfg.RefData.Enabled = true
	}
	if v := os.Getenv("BONDCHECK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BONDCHECK_EXTRA_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Highlight.ExtraDays = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("%w: provider base_url must not be empty", apperrors.ErrConfigInvalid)
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: provider timeout_seconds must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Provider.RateLimit <= 0 {
		return fmt.Errorf("%w: provider rate_limit must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Highlight.ExtraDays < 2 || c.Highlight.ExtraDays > 366 {
		return fmt.Errorf("%w: highlight extra_days must be between 2 and 366", apperrors.ErrConfigInvalid)
	}
	return nil
}
