// Package config holds the engine's tunable settings.
//
// Two of the values here (FuzzyMatchFloor and FormIndicatorMin) are
// empirically chosen thresholds rather than derived constants, so they are
// deliberately configuration instead of hard-coded values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains all tunable engine settings.
type Config struct {
	// FuzzyMatchFloor is the minimum similarity ratio (0..1) for a fuzzy
	// answer-bank match to fire.
	FuzzyMatchFloor float64 `yaml:"fuzzy_match_floor"`

	// FormIndicatorMin is how many form-field indicators must be visible
	// before a page is treated as an application form (and the Apply-button
	// search is skipped).
	FormIndicatorMin int `yaml:"form_indicator_min"`

	// NavigationTimeoutMs applies to page navigation and detection passes.
	NavigationTimeoutMs float64 `yaml:"navigation_timeout_ms"`

	// FillTimeoutMs applies to individual field interactions.
	FillTimeoutMs float64 `yaml:"fill_timeout_ms"`

	// SettleDelayMs is how long to wait for a pseudo-dropdown's option list
	// to settle after typing into it.
	SettleDelayMs float64 `yaml:"settle_delay_ms"`

	// NavigationRetries is the number of retry attempts for transient
	// navigation failures.
	NavigationRetries int `yaml:"navigation_retries"`

	// Headless controls whether the browser runs without a visible window.
	Headless bool `yaml:"headless"`

	// StorageDir is where the profile, answer bank, and page captures live.
	StorageDir string `yaml:"storage_dir"`
}

// Default returns the engine defaults. The threshold values match the
// behavior the engine was tuned against.
func Default() Config {
	return Config{
		FuzzyMatchFloor:     0.7,
		FormIndicatorMin:    2,
		NavigationTimeoutMs: 30000,
		FillTimeoutMs:       5000,
		SettleDelayMs:       1000,
		NavigationRetries:   2,
		Headless:            false,
		StorageDir:          "storage",
	}
}

// Load reads a YAML config file and merges it over the defaults. A missing
// file is not an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.FuzzyMatchFloor < 0 || c.FuzzyMatchFloor > 1 {
		return fmt.Errorf("config: fuzzy_match_floor must be in [0,1], got %v", c.FuzzyMatchFloor)
	}
	if c.FormIndicatorMin < 1 {
		return fmt.Errorf("config: form_indicator_min must be >= 1, got %d", c.FormIndicatorMin)
	}
	if c.NavigationTimeoutMs <= 0 || c.FillTimeoutMs <= 0 {
		return fmt.Errorf("config: timeouts must be positive")
	}
	return nil
}
