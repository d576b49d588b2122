// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"courier-pricing/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing engine settings
	Pricing PricingConfig `json:"pricing"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing engine settings
type PricingConfig struct {
	// DefaultCurrency is used when a pricing table carries no currency
	DefaultCurrency string `json:"default_currency"`

	// DefaultTaxRatePercent applies when a table carries no tax rate
	DefaultTaxRatePercent string `json:"default_tax_rate_percent"`

	// MaxBatchSize caps bulk calculation requests
	MaxBatchSize int `json:"max_batch_size"`

	// Workers bounds concurrency for compare and bulk calculations
	Workers int `json:"workers"`

	// RateCardDir is the directory holding HCL rate-card files
	RateCardDir string `json:"rate_card_dir"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format"`

	// ShowBreakdown shows the itemized price breakdown
	ShowBreakdown bool `json:"show_breakdown"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	cardDir := filepath.Join(homeDir, ".courier-pricing", "ratecards")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			DefaultCurrency:       "PLN",
			DefaultTaxRatePercent: "23",
			MaxBatchSize:          100,
			Workers:               8,
			RateCardDir:           cardDir,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowBreakdown: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
