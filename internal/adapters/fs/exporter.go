// Package fs provides file-system adapters: CSV export of frozen runs and
// the last-run status file.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mecha-labs/steplog/internal/ports"
	"github.com/mecha-labs/steplog/pkg/run"
)

// Exporter implements ports.RunExporter by writing runs as CSV files into a
// data directory and recording the last completed run in status.json.
type Exporter struct {
	dir    string
	repo   *run.FileRepository
	logger ports.Logger
	clock  ports.Clock
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string, clk ports.Clock, logger ports.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		repo:   run.NewFileRepository(dir),
		logger: logger,
		clock:  clk,
	}
}

// Export writes the frozen run as run-<stamp>-<id>.csv (atomic write) and
// updates the status file. Returns the path of the exported CSV.
func (e *Exporter) Export(r *run.Run) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	name := fmt.Sprintf("run-%s-%s.csv",
		r.StartedAt().UTC().Format("20060102T150405"),
		shortID(r),
	)
	path := filepath.Join(e.dir, name)

	var buf bytes.Buffer
	if err := run.EncodeCSV(&buf, r); err != nil {
		return "", fmt.Errorf("encode run: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename run: %w", err)
	}

	st := run.Status{
		RunID:       r.ID(),
		Path:        path,
		Samples:     r.Len(),
		Dropped:     r.Dropped(),
		Period:      r.Period().String(),
		CompletedAt: e.clock.Now().UTC(),
	}
	if err := e.repo.SaveStatus(context.Background(), st); err != nil {
		// The run file itself is on disk; a stale status is recoverable.
		e.logger.Error("failed to save run status", ports.Err(err))
	}

	e.logger.Info("run exported",
		ports.String("path", path),
		ports.Int("samples", r.Len()),
		ports.Int("dropped", r.Dropped()),
	)
	return path, nil
}

// shortID returns the first uuid group of the run ID, enough to keep
// filenames unique alongside the timestamp.
func shortID(r *run.Run) string {
	id := r.ID().String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
