package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	c := NewConfig()
	c.DataFile = "studies.xlsx"
	return c
}

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()

	if c.Sheet != DefaultSheet {
		t.Errorf("expected sheet %q, got %q", DefaultSheet, c.Sheet)
	}
	if c.Chains != DefaultChains {
		t.Errorf("expected %d chains, got %d", DefaultChains, c.Chains)
	}
	if c.Iterations != DefaultIterations {
		t.Errorf("expected %d iterations, got %d", DefaultIterations, c.Iterations)
	}
	if c.Warmup != DefaultWarmup {
		t.Errorf("expected %d warmup, got %d", DefaultWarmup, c.Warmup)
	}
	if c.Seed != DefaultSeed {
		t.Errorf("expected seed %d, got %d", DefaultSeed, c.Seed)
	}
	if c.TargetAccept != DefaultTargetAccept {
		t.Errorf("expected target accept %v, got %v", DefaultTargetAccept, c.TargetAccept)
	}
	if c.Workers != DefaultWorkers {
		t.Errorf("expected %d workers, got %d", DefaultWorkers, c.Workers)
	}
	if c.PlotDir != DefaultPlotDir {
		t.Errorf("expected plot dir %q, got %q", DefaultPlotDir, c.PlotDir)
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid configuration passes", func(t *testing.T) {
		t.Parallel()

		if err := validConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing data file",
			mutate:  func(c *Config) { c.DataFile = "" },
			wantErr: ErrNoDataFile,
		},
		{
			name:    "zero chains",
			mutate:  func(c *Config) { c.Chains = 0 },
			wantErr: ErrInvalidChains,
		},
		{
			name:    "negative iterations",
			mutate:  func(c *Config) { c.Iterations = -1 },
			wantErr: ErrInvalidIterations,
		},
		{
			name:    "negative warmup",
			mutate:  func(c *Config) { c.Warmup = -1 },
			wantErr: ErrInvalidWarmup,
		},
		{
			name:    "target accept at zero",
			mutate:  func(c *Config) { c.TargetAccept = 0 },
			wantErr: ErrInvalidTargetAccept,
		},
		{
			name:    "target accept at one",
			mutate:  func(c *Config) { c.TargetAccept = 1 },
			wantErr: ErrInvalidTargetAccept,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("zero warmup is allowed", func(t *testing.T) {
		t.Parallel()

		c := validConfig()
		c.Warmup = 0
		if err := c.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestXDGDirs tests XDG path construction.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); dir == "" {
		t.Error("expected a non-empty data directory")
	}
	if dir := XDGConfigDir(); dir == "" {
		t.Error("expected a non-empty config directory")
	}
}
