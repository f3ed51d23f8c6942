package tvu

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// A Config holds the externally significant run options: the accumulate flag
// and the interpolation method selector, plus the split-sample and worker
// tuning knobs.
type Config struct {
	// Accumulate RSS-combines per-pass TVU values on cells touched by more
	// than one pass; otherwise the last pass wins.
	Accumulate bool `yaml:"accumulate"`
	// WafflesModule is the interpolation method passed to the external
	// gridding engine (surface, triangulate, IDW, linear, nearest, ...).
	WafflesModule string `yaml:"waffles_module"`

	HoldoutFraction float64 `yaml:"holdout_fraction"`
	Seed            uint64  `yaml:"seed"`
	MinSamples      int     `yaml:"min_samples"`
	DistanceBins    int     `yaml:"distance_bins"`
	Workers         int     `yaml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

// LoadConfig loads a Config from a yaml file, filling in defaults for
// missing values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a Config from yaml, filling in defaults for missing
// values.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if c.HoldoutFraction < 0 || 1 <= c.HoldoutFraction {
		return Config{}, fmt.Errorf("parse config: holdout_fraction %g out of range", c.HoldoutFraction)
	}
	if c.MinSamples < 0 {
		return Config{}, fmt.Errorf("parse config: min_samples %d out of range", c.MinSamples)
	}
	if c.DistanceBins < 0 {
		return Config{}, fmt.Errorf("parse config: distance_bins %d out of range", c.DistanceBins)
	}
	if c.Workers < 0 {
		return Config{}, fmt.Errorf("parse config: workers %d out of range", c.Workers)
	}
	c.applyDefaults()
	return c, nil
}

// applyDefaults replaces missing or non-positive values with defaults.
func (c *Config) applyDefaults() {
	if c.WafflesModule == "" {
		c.WafflesModule = "linear"
	}
	if c.HoldoutFraction <= 0 {
		c.HoldoutFraction = 0.2
	}
	if c.MinSamples <= 0 {
		c.MinSamples = 10
	}
	if c.DistanceBins <= 0 {
		c.DistanceBins = 10
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}
