package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (STEPLOG_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-dir", os.Getenv("STEPLOG_DATA_DIR"), &cfg.DataDir)
	s.setString("service-url", os.Getenv("STEPLOG_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("STEPLOG_AUTH_KEY"), &cfg.AuthKey)
	s.setString("probe-id", os.Getenv("STEPLOG_PROBE_ID"), &cfg.ProbeID)
	s.setString("board", os.Getenv("STEPLOG_BOARD"), &cfg.Board)
	s.setString("bus", os.Getenv("STEPLOG_BUS"), &cfg.Bus)
	s.setString("stimulus-pin", os.Getenv("STEPLOG_STIMULUS_PIN"), &cfg.StimulusPin)

	if err := s.setDuration("period", os.Getenv("STEPLOG_SAMPLE_PERIOD"), &cfg.SamplePeriod); err != nil {
		return err
	}
	if err := s.setDuration("duration", os.Getenv("STEPLOG_DURATION"), &cfg.Duration); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("STEPLOG_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("rest", os.Getenv("STEPLOG_REST"), &cfg.Rest); err != nil {
		return err
	}

	if err := s.setFloatFromString("vref", os.Getenv("STEPLOG_VREF"), &cfg.VRef); err != nil {
		return err
	}

	if err := s.setIntFromString("max-samples", os.Getenv("STEPLOG_MAX_SAMPLES"), &cfg.MaxSamples); err != nil {
		return err
	}
	if err := s.setIntFromString("resolution", os.Getenv("STEPLOG_RESOLUTION"), &cfg.Resolution); err != nil {
		return err
	}
	if err := s.setIntFromString("channel", os.Getenv("STEPLOG_CHANNEL"), &cfg.Channel); err != nil {
		return err
	}
	if err := s.setIntFromString("repeat", os.Getenv("STEPLOG_REPEAT"), &cfg.Repeat); err != nil {
		return err
	}

	s.setBoolFromString("sim", os.Getenv("STEPLOG_SIM"), &cfg.Sim)

	return nil
}
