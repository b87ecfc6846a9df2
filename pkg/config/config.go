// Package config loads and validates run configuration from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-risksim/pkg/costmodel"
	"github.com/dd0wney/cluso-risksim/pkg/distribution"
	"github.com/dd0wney/cluso-risksim/pkg/simulation"
	"github.com/dd0wney/cluso-risksim/pkg/validation"
)

var validate = validator.New()

// BucketConfig is one frequency bucket as written in a run file.
type BucketConfig struct {
	Boundary float64 `yaml:"boundary" validate:"gt=0"`
	Mass     float64 `yaml:"mass" validate:"gte=0,lte=1"`
}

// CostConfig carries the published cost summary statistics.
type CostConfig struct {
	Mean   float64 `yaml:"mean" validate:"gt=0"`
	Median float64 `yaml:"median" validate:"gte=0"`
}

// RunConfig is one complete simulation run specification.
type RunConfig struct {
	Trials    int            `yaml:"trials" validate:"min=0"`
	Threshold float64        `yaml:"threshold" validate:"gt=0"`
	Seed      int64          `yaml:"seed"`
	Workers   int            `yaml:"workers" validate:"min=0"`
	Mode      string         `yaml:"mode" validate:"omitempty,oneof=fitted pool"`
	Frequency []BucketConfig `yaml:"frequency" validate:"required,min=2,dive"`
	Cost      CostConfig     `yaml:"cost" validate:"required"`

	// MassTolerance overrides how far the frequency masses may drift from
	// summing to 1. Zero means the default.
	MassTolerance float64 `yaml:"mass_tolerance" validate:"gte=0"`
}

// Load reads and validates a run configuration file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &distribution.ConfigError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	return Parse(data)
}

// Parse decodes and validates run configuration YAML.
func Parse(data []byte) (*RunConfig, error) {
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &distribution.ConfigError{Reason: fmt.Sprintf("parse yaml: %v", err)}
	}

	if cfg.Trials == 0 {
		cfg.Trials = simulation.DefaultTrials
	}
	if cfg.Mode == "" {
		cfg.Mode = string(simulation.ModeFitted)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks both the struct tags and the cross-field invariants.
func (c *RunConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &distribution.ConfigError{Reason: err.Error()}
	}

	cv := validation.NewConfigValidator("RunConfig").
		Positive("Trials", c.Trials).
		NonNegative("Workers", c.Workers).
		PositiveFloat("Threshold", c.Threshold).
		FiniteFloat("Threshold", c.Threshold).
		PositiveFloat("Cost.Mean", c.Cost.Mean).
		NonNegativeFloat("Cost.Median", c.Cost.Median).
		Custom("Frequency", func() error {
			return c.Table().Validate(c.MassTolerance)
		})
	if cv.HasErrors() {
		return &distribution.ConfigError{Reason: cv.Validate().Error()}
	}
	return nil
}

// Table converts the configured buckets into a frequency table.
func (c *RunConfig) Table() distribution.FrequencyTable {
	table := make(distribution.FrequencyTable, len(c.Frequency))
	for i, b := range c.Frequency {
		table[i] = distribution.Bucket{Boundary: b.Boundary, Mass: b.Mass}
	}
	return table
}

// Stats returns the configured cost summary statistics.
func (c *RunConfig) Stats() costmodel.CostStats {
	return costmodel.CostStats{Mean: c.Cost.Mean, Median: c.Cost.Median}
}

// EngineOptions maps the configuration onto simulation engine options.
func (c *RunConfig) EngineOptions() simulation.Options {
	return simulation.Options{
		Trials:  c.Trials,
		Seed:    c.Seed,
		Workers: c.Workers,
		Mode:    simulation.Mode(c.Mode),
	}
}
