// Package config provides configuration loading and management for
// slmwavefront. It handles loading configuration from YAML files, provides
// default values for a typical HeNe testbed, and converts user-facing units
// and mode labels into the core's types at the boundary.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"slmwavefront/pkg/grid"
	"slmwavefront/pkg/retrieval"
)

// Config represents the application configuration loaded from YAML.
// All physical quantities use bench-friendly units (millimeters,
// nanometers); the conversion helpers translate them to SI for the core.
type Config struct {
	// Optical bench geometry
	Optics struct {
		// SamplesX and SamplesY are the sample counts of the SLM plane grid
		SamplesX int `yaml:"samplesX"`
		SamplesY int `yaml:"samplesY"`

		// ApertureHalfWidthMM and ApertureHalfHeightMM are the physical
		// half-extents of the modeled SLM plane in millimeters
		ApertureHalfWidthMM  float64 `yaml:"apertureHalfWidthMM"`
		ApertureHalfHeightMM float64 `yaml:"apertureHalfHeightMM"`

		// WavelengthNM is the illumination wavelength in nanometers
		WavelengthNM float64 `yaml:"wavelengthNM"`

		// FocalLengthMM is the focal length of the focusing element in millimeters
		FocalLengthMM float64 `yaml:"focalLengthMM"`

		// BeamWaistMM is the 1/e^2 waist radius of the modeled Gaussian
		// illumination in millimeters
		BeamWaistMM float64 `yaml:"beamWaistMM"`
	} `yaml:"optics"`

	// Retrieval loop parameters
	Retrieval struct {
		// MaxIterations is the hard cap on alternating-projection iterations
		MaxIterations int `yaml:"maxIterations"`

		// Tolerance is the relative-change threshold on the fidelity metric
		Tolerance float64 `yaml:"tolerance"`

		// Metric selects the fidelity metric: "mse" or "correlation"
		Metric string `yaml:"metric"`

		// Seed selects the initial phase seed: "none" or "vortex"
		Seed string `yaml:"seed"`

		// VortexOrder is the topological order of the vortex seed; only
		// used when Seed is "vortex"
		VortexOrder int `yaml:"vortexOrder"`

		// ApertureRadiusFactor scales the measured second-moment beam
		// radius into the target aperture radius
		ApertureRadiusFactor float64 `yaml:"apertureRadiusFactor"`
	} `yaml:"retrieval"`

	// Output parameters
	Output struct {
		// SaveConvergencePlot determines whether the metric history is
		// rendered to a PNG plot
		SaveConvergencePlot bool `yaml:"saveConvergencePlot"`

		// Verbose controls the level of progress output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values: a 633 nm HeNe
// beam focused by a 500 mm lens onto a 256x256 modeled SLM plane.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Optics.SamplesX = 256
	cfg.Optics.SamplesY = 256
	cfg.Optics.ApertureHalfWidthMM = 4.0
	cfg.Optics.ApertureHalfHeightMM = 4.0
	cfg.Optics.WavelengthNM = 633.0
	cfg.Optics.FocalLengthMM = 500.0
	cfg.Optics.BeamWaistMM = 2.0

	cfg.Retrieval.MaxIterations = 200
	cfg.Retrieval.Tolerance = 1e-6
	cfg.Retrieval.Metric = "mse"
	cfg.Retrieval.Seed = "none"
	cfg.Retrieval.VortexOrder = 1
	cfg.Retrieval.ApertureRadiusFactor = 3.0

	cfg.Output.SaveConvergencePlot = true
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

const (
	mm = 1e-3
	nm = 1e-9
)

// SLMGrid builds the SLM plane grid from the optics section.
func (cfg *Config) SLMGrid() (*grid.PlaneGrid, error) {
	return grid.NewPlaneGrid(
		cfg.Optics.SamplesX,
		cfg.Optics.SamplesY,
		cfg.Optics.ApertureHalfWidthMM*mm,
		cfg.Optics.ApertureHalfHeightMM*mm,
	)
}

// Wavelength returns the illumination wavelength in meters.
func (cfg *Config) Wavelength() float64 {
	return cfg.Optics.WavelengthNM * nm
}

// FocalLength returns the focal length in meters.
func (cfg *Config) FocalLength() float64 {
	return cfg.Optics.FocalLengthMM * mm
}

// BeamWaist returns the modeled beam waist radius in meters.
func (cfg *Config) BeamWaist() float64 {
	return cfg.Optics.BeamWaistMM * mm
}

// Convergence translates the retrieval section into the engine's typed
// configuration. Unknown metric or seed labels are rejected here rather
// than silently defaulting.
func (cfg *Config) Convergence() (retrieval.Config, error) {
	out := retrieval.Config{
		MaxIterations: cfg.Retrieval.MaxIterations,
		Tolerance:     cfg.Retrieval.Tolerance,
	}

	switch cfg.Retrieval.Metric {
	case "", "mse":
		out.Metric = retrieval.MetricMSE
	case "correlation":
		out.Metric = retrieval.MetricCorrelation
	default:
		return retrieval.Config{}, fmt.Errorf("%w: unknown metric %q", grid.ErrConfiguration, cfg.Retrieval.Metric)
	}

	switch cfg.Retrieval.Seed {
	case "", "none":
		out.Seed = retrieval.NoSeed{}
	case "vortex":
		out.Seed = retrieval.Vortex{Order: cfg.Retrieval.VortexOrder}
	default:
		return retrieval.Config{}, fmt.Errorf("%w: unknown seed mode %q", grid.ErrConfiguration, cfg.Retrieval.Seed)
	}

	return out, nil
}
