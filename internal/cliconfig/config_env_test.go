package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("STEPLOG_DATA_DIR", "/env/data")
	t.Setenv("STEPLOG_SAMPLE_PERIOD", "25ms")
	t.Setenv("STEPLOG_MAX_SAMPLES", "300")
	t.Setenv("STEPLOG_VREF", "5.0")
	t.Setenv("STEPLOG_PROBE_ID", "env-probe")
	t.Setenv("STEPLOG_SIM", "true")

	var cfg Config
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.DataDir != "/env/data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.SamplePeriod != 25*time.Millisecond {
		t.Errorf("SamplePeriod = %v", cfg.SamplePeriod)
	}
	if cfg.MaxSamples != 300 {
		t.Errorf("MaxSamples = %d", cfg.MaxSamples)
	}
	if cfg.VRef != 5.0 {
		t.Errorf("VRef = %v", cfg.VRef)
	}
	if cfg.ProbeID != "env-probe" {
		t.Errorf("ProbeID = %q", cfg.ProbeID)
	}
	if !cfg.Sim {
		t.Error("Sim not applied")
	}
}

func TestApplyEnvConfigRespectsChangedFlags(t *testing.T) {
	t.Setenv("STEPLOG_DATA_DIR", "/env/data")
	t.Setenv("STEPLOG_PROBE_ID", "env-probe")

	cfg := Config{DataDir: "/flag/data", ProbeID: "flag-probe"}
	changed := map[string]bool{"data-dir": true}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.DataDir != "/flag/data" {
		t.Errorf("DataDir = %q, want flag value kept", cfg.DataDir)
	}
	if cfg.ProbeID != "env-probe" {
		t.Errorf("ProbeID = %q, want env value", cfg.ProbeID)
	}
}

func TestApplyEnvConfigInvalidDuration(t *testing.T) {
	t.Setenv("STEPLOG_SAMPLE_PERIOD", "fast")

	var cfg Config
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnvConfigInvalidInt(t *testing.T) {
	t.Setenv("STEPLOG_MAX_SAMPLES", "many")

	var cfg Config
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Fatal("expected parse error")
	}
}
