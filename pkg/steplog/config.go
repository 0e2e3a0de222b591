package steplog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mecha-labs/steplog/internal/domain"
	"github.com/mecha-labs/steplog/pkg/run"
)

// Config holds the configuration for a Steplog instance.
// Zero values are replaced by defaults in SetDefaults; call Validate before
// use. New does both.
type Config struct {
	// SamplePeriod is the fixed interval between analog reads.
	// Default: 10ms (100 Hz).
	SamplePeriod time.Duration

	// Duration bounds the acquisition. Zero means unbounded: the run ends
	// on Stop() or when MaxSamples is reached.
	Duration time.Duration

	// MaxSamples caps the number of samples in a run. Default: 200.
	// Set to -1 for no cap (normalized to 0 internally).
	MaxSamples int

	// VRef is the full-scale voltage of the ADC front end. Default: 3.3.
	VRef float64

	// Resolution is the full-scale count of the ADC. Default: 4096 (12-bit).
	Resolution int32

	// DataDir is where exported run CSV files and the status file live.
	// Default: ~/.steplog/runs (falling back to ./steplog-runs).
	DataDir string

	// ServiceURL is the base URL of the run ingest service.
	// Empty disables uploads entirely.
	ServiceURL string

	// AuthKey authenticates uploads. Required when ServiceURL is set.
	AuthKey string

	// ProbeID identifies the measurement probe or rig.
	ProbeID string

	// Board is the development board model (e.g. "STM32L476 Nucleo").
	Board string

	// HTTPTimeout bounds each upload attempt. Default: 30s.
	HTTPTimeout time.Duration

	// ConfigPath is the TOML config file path, used by the config watcher
	// plugin. Optional.
	ConfigPath string
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.SamplePeriod == 0 {
		c.SamplePeriod = domain.DefaultSamplePeriod
	}
	if c.MaxSamples == 0 {
		c.MaxSamples = domain.DefaultMaxSamples
	}
	if c.MaxSamples < 0 {
		c.MaxSamples = 0
	}
	if c.VRef == 0 {
		c.VRef = run.DefaultVRef
	}
	if c.Resolution == 0 {
		c.Resolution = run.DefaultResolution
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 30 * time.Second
	}
}

// Validate checks the configuration for errors.
// All failures wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.settings().Validate(); err != nil {
		return err
	}
	if c.VRef <= 0 {
		return fmt.Errorf("%w: vref must be positive, got %v", domain.ErrInvalidConfig, c.VRef)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %d", domain.ErrInvalidConfig, c.Resolution)
	}
	if c.ServiceURL != "" && c.AuthKey == "" {
		return fmt.Errorf("%w: auth key is required when service URL is set", domain.ErrInvalidConfig)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive, got %v", domain.ErrInvalidConfig, c.HTTPTimeout)
	}
	return nil
}

// settings projects the acquisition subset of the config.
func (c *Config) settings() domain.Settings {
	return domain.Settings{
		SamplePeriod: c.SamplePeriod,
		Duration:     c.Duration,
		MaxSamples:   c.MaxSamples,
	}
}

// converter projects the ADC conversion subset of the config.
func (c *Config) converter() run.Converter {
	return run.Converter{Resolution: c.Resolution, VRef: c.VRef}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".steplog", "runs")
	}
	return "steplog-runs"
}
