package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds CLI configuration for steplog.
type Config struct {
	DataDir string

	SamplePeriod time.Duration
	Duration     time.Duration
	MaxSamples   int

	VRef       float64
	Resolution int

	ServiceURL  string
	AuthKey     string
	HTTPTimeout time.Duration

	ProbeID string
	Board   string

	// Hardware wiring; ignored when Sim is set.
	Bus         string
	Channel     int
	StimulusPin string
	Sim         bool

	// Repeat runs that many acquisition cycles (0 = one), resting Rest
	// between cycles.
	Repeat int
	Rest   time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SamplePeriod: 10 * time.Millisecond,
		MaxSamples:   200,
		VRef:         3.3,
		Resolution:   4096,
		HTTPTimeout:  30 * time.Second,
		StimulusPin:  "GPIO17",
		Rest:         2 * time.Second,
		AuthKey:      os.Getenv("STEPLOG_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.SamplePeriod <= 0 {
		return fmt.Errorf("sample period must be positive")
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max samples must not be negative")
	}
	if c.VRef <= 0 {
		return fmt.Errorf("vref must be positive")
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive")
	}
	if c.Channel < 0 || c.Channel > 3 {
		return fmt.Errorf("channel must be 0-3, got %d", c.Channel)
	}
	if c.Repeat < 0 {
		return fmt.Errorf("repeat must not be negative")
	}

	if c.DataDir == "" {
		if h, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(h, ".steplog", "runs")
		} else {
			c.DataDir = "steplog-runs"
		}
	}

	// Ensure no trailing slash
	if len(c.ServiceURL) > 0 && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
