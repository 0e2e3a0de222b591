// Package configwatcher provides config file hot reload for steplog.
// When enabled, it watches the TOML config file for changes and keeps the
// latest good configuration available for subsequent runs. A run that is
// already acquiring is never retuned mid-flight.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mecha-labs/steplog/internal/cliconfig"
	"github.com/mecha-labs/steplog/pkg/log"
	"github.com/mecha-labs/steplog/pkg/steplog"
)

// Plugin implements config file watching.
// It monitors the steplog TOML config file and revalidates it on every
// change; Latest returns the newest configuration that parsed and
// validated cleanly.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	logger     steplog.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	debounce   *time.Timer
	latest     steplog.Config
	generation int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML config file to watch. Empty falls back to the
	// instance's ConfigPath.
	Path string

	// DebounceDelay is the delay to wait after a file change before
	// reloading. Default: 100 milliseconds.
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config watching the given path with sensible
// defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize loads the config file and starts the watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg steplog.PluginConfig) error {
	p.mu.Lock()
	if p.path == "" {
		p.path = cfg.ConfigPath
	}
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("config watcher disabled: no config path")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.reload()
	p.logger.Info("config watcher initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// Latest returns the newest configuration that parsed and validated
// cleanly, and whether one exists. Safe from any goroutine.
func (p *Plugin) Latest() (steplog.Config, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.generation > 0
}

// Generation returns the number of successful reloads so far. Callers can
// compare generations to detect a reload between runs.
func (p *Plugin) Generation() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation
}

// watchLoop watches the config file's directory for changes. Watching the
// directory rather than the file survives atomic-rename editors.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		p.logger.Error("config watcher: failed to watch directory", log.Err(err))
		return
	}

	base := filepath.Base(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, p.reload)
}

// reload parses and validates the config file, keeping it only when clean.
func (p *Plugin) reload() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("config watcher: reload failed", log.Err(err))
		return
	}

	base := cliconfig.DefaultConfig()
	if err := cliconfig.ApplyFileConfig(&base, fc, map[string]bool{}); err != nil {
		p.logger.Warn("config watcher: invalid config ignored", log.Err(err))
		return
	}
	if err := base.Validate(); err != nil {
		p.logger.Warn("config watcher: invalid config ignored", log.Err(err))
		return
	}

	next := steplog.Config{
		SamplePeriod: base.SamplePeriod,
		Duration:     base.Duration,
		MaxSamples:   base.MaxSamples,
		VRef:         base.VRef,
		Resolution:   int32(base.Resolution),
		DataDir:      base.DataDir,
		ServiceURL:   base.ServiceURL,
		AuthKey:      base.AuthKey,
		ProbeID:      base.ProbeID,
		Board:        base.Board,
		HTTPTimeout:  base.HTTPTimeout,
		ConfigPath:   p.path,
	}

	p.mu.Lock()
	p.latest = next
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	p.logger.Info("config watcher: configuration reloaded", log.Int("generation", gen))
}

// Ensure Plugin implements steplog.Plugin.
var _ steplog.Plugin = (*Plugin)(nil)
