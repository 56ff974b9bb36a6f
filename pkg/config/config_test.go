package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"slmwavefront/pkg/grid"
	"slmwavefront/pkg/retrieval"
)

// TestDefaultConfig sanity-checks the HeNe testbed defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Optics.SamplesX != 256 || cfg.Optics.SamplesY != 256 {
		t.Errorf("Expected 256x256 default grid, got %dx%d", cfg.Optics.SamplesX, cfg.Optics.SamplesY)
	}
	if cfg.Optics.WavelengthNM != 633.0 {
		t.Errorf("Expected 633 nm default wavelength, got %g", cfg.Optics.WavelengthNM)
	}
	if cfg.Retrieval.Metric != "mse" || cfg.Retrieval.Seed != "none" {
		t.Errorf("Expected mse/none defaults, got %s/%s", cfg.Retrieval.Metric, cfg.Retrieval.Seed)
	}
}

// TestLoadConfigMissingFile returns defaults when the file doesn't exist.
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Optics.SamplesX != DefaultConfig().Optics.SamplesX {
		t.Errorf("Expected defaults for a missing file")
	}
}

// TestSaveLoadRoundTrip writes a modified config and reads it back.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Optics.SamplesX = 512
	cfg.Retrieval.Seed = "vortex"
	cfg.Retrieval.VortexOrder = 2

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Optics.SamplesX != 512 {
		t.Errorf("Expected SamplesX=512, got %d", loaded.Optics.SamplesX)
	}
	if loaded.Retrieval.Seed != "vortex" || loaded.Retrieval.VortexOrder != 2 {
		t.Errorf("Expected vortex/2, got %s/%d", loaded.Retrieval.Seed, loaded.Retrieval.VortexOrder)
	}
}

// TestLoadConfigMalformed surfaces YAML parse errors.
func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("optics: ["), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected an error for malformed YAML")
	}
}

// TestUnitConversions checks the mm/nm translation into SI.
func TestUnitConversions(t *testing.T) {
	cfg := DefaultConfig()

	if math.Abs(cfg.Wavelength()-633e-9) > 1e-15 {
		t.Errorf("Expected 633e-9 m, got %g", cfg.Wavelength())
	}
	if math.Abs(cfg.FocalLength()-0.5) > 1e-12 {
		t.Errorf("Expected 0.5 m, got %g", cfg.FocalLength())
	}
	if math.Abs(cfg.BeamWaist()-2e-3) > 1e-12 {
		t.Errorf("Expected 2e-3 m, got %g", cfg.BeamWaist())
	}

	g, err := cfg.SLMGrid()
	if err != nil {
		t.Fatalf("SLMGrid failed: %v", err)
	}
	if g.Nx != 256 || math.Abs(g.HalfExtentX-4e-3) > 1e-12 {
		t.Errorf("Expected 256 samples over 4e-3 m, got %d over %g", g.Nx, g.HalfExtentX)
	}
}

// TestConvergenceParsing translates labels into the closed typed modes and
// rejects unknown labels instead of silently defaulting.
func TestConvergenceParsing(t *testing.T) {
	cfg := DefaultConfig()

	conv, err := cfg.Convergence()
	if err != nil {
		t.Fatalf("Convergence failed: %v", err)
	}
	if conv.Metric != retrieval.MetricMSE {
		t.Errorf("Expected MetricMSE, got %v", conv.Metric)
	}
	if _, ok := conv.Seed.(retrieval.NoSeed); !ok {
		t.Errorf("Expected NoSeed, got %T", conv.Seed)
	}

	cfg.Retrieval.Metric = "correlation"
	cfg.Retrieval.Seed = "vortex"
	cfg.Retrieval.VortexOrder = 3
	conv, err = cfg.Convergence()
	if err != nil {
		t.Fatalf("Convergence failed: %v", err)
	}
	if conv.Metric != retrieval.MetricCorrelation {
		t.Errorf("Expected MetricCorrelation, got %v", conv.Metric)
	}
	v, ok := conv.Seed.(retrieval.Vortex)
	if !ok || v.Order != 3 {
		t.Errorf("Expected Vortex order 3, got %T %+v", conv.Seed, conv.Seed)
	}

	cfg.Retrieval.Metric = "psnr"
	if _, err := cfg.Convergence(); !errors.Is(err, grid.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for unknown metric, got %v", err)
	}

	cfg.Retrieval.Metric = "mse"
	cfg.Retrieval.Seed = "spiral"
	if _, err := cfg.Convergence(); !errors.Is(err, grid.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for unknown seed, got %v", err)
	}
}
