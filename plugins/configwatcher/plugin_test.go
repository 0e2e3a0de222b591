package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mecha-labs/steplog/pkg/log"
	"github.com/mecha-labs/steplog/pkg/steplog"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitForGeneration(t *testing.T, p *Plugin, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if p.Generation() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("generation = %d, want >= %d", p.Generation(), want)
}

func TestReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, `sample_period = "10ms"`+"\n")

	p := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond})
	if err := p.Initialize(context.Background(), steplog.PluginConfig{Logger: log.NewNoopLogger()}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer p.Shutdown(context.Background())

	cfg, ok := p.Latest()
	if !ok {
		t.Fatal("no config after initial load")
	}
	if cfg.SamplePeriod != 10*time.Millisecond {
		t.Fatalf("SamplePeriod = %v, want 10ms", cfg.SamplePeriod)
	}

	writeConfig(t, path, `sample_period = "20ms"`+"\n")
	waitForGeneration(t, p, 2)

	cfg, _ = p.Latest()
	if cfg.SamplePeriod != 20*time.Millisecond {
		t.Fatalf("SamplePeriod after reload = %v, want 20ms", cfg.SamplePeriod)
	}
}

func TestInvalidConfigIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, `probe_id = "bench-3"`+"\n")

	p := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond})
	if err := p.Initialize(context.Background(), steplog.PluginConfig{Logger: log.NewNoopLogger()}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer p.Shutdown(context.Background())
	waitForGeneration(t, p, 1)

	writeConfig(t, path, `sample_period = [broken`+"\n")
	time.Sleep(300 * time.Millisecond)

	if got := p.Generation(); got != 1 {
		t.Fatalf("generation = %d, want 1 (bad config kept out)", got)
	}
	cfg, ok := p.Latest()
	if !ok || cfg.ProbeID != "bench-3" {
		t.Fatalf("Latest = %+v, %v; want last good config", cfg, ok)
	}
}

func TestDisabledWithoutPath(t *testing.T) {
	p := New(Config{})
	if err := p.Initialize(context.Background(), steplog.PluginConfig{Logger: log.NewNoopLogger()}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, ok := p.Latest(); ok {
		t.Fatal("Latest reported a config with no path")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
