// Package runretention provides automatic pruning of exported run files for
// steplog. When enabled, it periodically checks the data directory size and
// removes the oldest run files to prevent unbounded disk usage.
package runretention

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mecha-labs/steplog/pkg/log"
	"github.com/mecha-labs/steplog/pkg/run"
	"github.com/mecha-labs/steplog/pkg/steplog"
)

// Plugin implements run file retention.
// It periodically checks the data directory size and removes the oldest
// exported run files when it exceeds the high watermark, never touching the
// run named by the status file.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	checkInterval time.Duration
	highWatermark int64
	lowWatermark  int64

	// Runtime state
	dataDir string
	logger  steplog.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Config holds configuration options for the run retention plugin.
type Config struct {
	// CheckInterval is how often to check the data directory size.
	// Default: 1 hour.
	CheckInterval time.Duration

	// HighWatermark is the size in bytes above which pruning begins.
	// Default: 256 MiB.
	HighWatermark int64

	// LowWatermark is the target size in bytes after pruning.
	// Default: 192 MiB.
	LowWatermark int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval: time.Hour,
		HighWatermark: 256 << 20,
		LowWatermark:  192 << 20,
	}
}

// New creates a new run retention plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}
	if cfg.HighWatermark <= 0 {
		cfg.HighWatermark = 256 << 20
	}
	if cfg.LowWatermark <= 0 {
		cfg.LowWatermark = 192 << 20
	}

	return &Plugin{
		checkInterval: cfg.CheckInterval,
		highWatermark: cfg.HighWatermark,
		lowWatermark:  cfg.LowWatermark,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "runretention"
}

// Initialize sets up the plugin and starts the pruning loop.
func (p *Plugin) Initialize(ctx context.Context, cfg steplog.PluginConfig) error {
	p.mu.Lock()
	p.dataDir = cfg.DataDir
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.dataDir == "" {
		p.logger.Warn("run retention disabled: no data directory configured")
		return nil
	}

	pruneCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("run retention plugin initialized",
		log.Int64("high_watermark", p.highWatermark),
		log.Int64("low_watermark", p.lowWatermark))

	p.wg.Add(1)
	go p.pruneLoop(pruneCtx)

	return nil
}

// Shutdown stops the pruning loop.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// pruneLoop runs periodic pruning checks.
func (p *Plugin) pruneLoop(ctx context.Context) {
	defer p.wg.Done()

	// Run immediately on startup
	p.PruneOnce(ctx)

	ticker := time.NewTicker(p.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce performs a single retention check, removing the oldest run
// files until the directory drops below the low watermark.
func (p *Plugin) PruneOnce(ctx context.Context) {
	p.mu.RLock()
	dataDir := p.dataDir
	p.mu.RUnlock()
	if dataDir == "" {
		return
	}

	files, curSize, err := runFiles(dataDir)
	if err != nil {
		p.logger.Error("run retention: scan failed", log.Err(err))
		return
	}

	if curSize <= p.highWatermark {
		return
	}

	protected := statusRunPath(ctx, dataDir)

	removed := 0
	for _, f := range files {
		if ctx.Err() != nil {
			return
		}
		if curSize <= p.lowWatermark {
			break
		}
		if f.path == protected {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			p.logger.Error("run retention: remove failed",
				log.String("path", f.path),
				log.Err(err))
			continue
		}
		curSize -= f.size
		removed++
	}

	if removed > 0 {
		p.logger.Info("run retention pruned old runs",
			log.Int("removed", removed),
			log.Int64("dir_size", curSize))
	}
}

// runFile is an exported run with its size, ordered oldest first by the
// stamped filename.
type runFile struct {
	path string
	size int64
}

// runFiles lists the exported run files oldest first and the directory's
// total run file size. The timestamp in run-<stamp>-<id>.csv sorts
// lexically, so name order is age order.
func runFiles(dataDir string) ([]runFile, int64, error) {
	ents, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, 0, err
	}

	var files []runFile
	var total int64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "run-") || !strings.HasSuffix(name, ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, 0, err
		}
		files = append(files, runFile{
			path: filepath.Join(dataDir, name),
			size: info.Size(),
		})
		total += info.Size()
	}

	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, total, nil
}

// statusRunPath returns the run file named by the status file, empty when
// there is none.
func statusRunPath(ctx context.Context, dataDir string) string {
	st, err := run.NewFileRepository(dataDir).LoadStatus(ctx)
	if err != nil {
		return ""
	}
	return st.Path
}

// Ensure Plugin implements steplog.Plugin.
var _ steplog.Plugin = (*Plugin)(nil)
