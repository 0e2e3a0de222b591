package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	DataDir      string  `toml:"data_dir"`
	SamplePeriod string  `toml:"sample_period"`
	Duration     string  `toml:"duration"`
	MaxSamples   int     `toml:"max_samples"`
	VRef         float64 `toml:"vref"`
	Resolution   int     `toml:"resolution"`
	ServiceURL   string  `toml:"service_url"`
	AuthKey      string  `toml:"auth_key"`
	HTTPTimeout  string  `toml:"http_timeout"`
	ProbeID      string  `toml:"probe_id"`
	Board        string  `toml:"board"`
	Bus          string  `toml:"bus"`
	Channel      int     `toml:"channel"`
	StimulusPin  string  `toml:"stimulus_pin"`
	Sim          *bool   `toml:"sim"`
	Repeat       int     `toml:"repeat"`
	Rest         string  `toml:"rest"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.steplog/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".steplog", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("probe-id", fc.ProbeID, &cfg.ProbeID)
	s.setString("board", fc.Board, &cfg.Board)
	s.setString("bus", fc.Bus, &cfg.Bus)
	s.setString("stimulus-pin", fc.StimulusPin, &cfg.StimulusPin)

	if err := s.setDuration("period", fc.SamplePeriod, &cfg.SamplePeriod); err != nil {
		return err
	}
	if err := s.setDuration("duration", fc.Duration, &cfg.Duration); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("rest", fc.Rest, &cfg.Rest); err != nil {
		return err
	}

	s.setFloat("vref", fc.VRef, &cfg.VRef)

	s.setInt("max-samples", fc.MaxSamples, &cfg.MaxSamples)
	s.setInt("resolution", fc.Resolution, &cfg.Resolution)
	s.setInt("channel", fc.Channel, &cfg.Channel)
	s.setInt("repeat", fc.Repeat, &cfg.Repeat)

	s.setBool("sim", fc.Sim, &cfg.Sim)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
