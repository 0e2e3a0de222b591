package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mecha-labs/steplog/internal/ports"
	"github.com/mecha-labs/steplog/pkg/run"
)

type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time { return c.now }

func (c stubClock) NewTicker(d time.Duration) ports.Ticker { return nil }

type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...ports.Field) {}
func (nopLogger) Info(msg string, fields ...ports.Field)  {}
func (nopLogger) Warn(msg string, fields ...ports.Field)  {}
func (nopLogger) Error(msg string, fields ...ports.Field) {}

func frozenRun(t *testing.T) *run.Run {
	t.Helper()
	r := run.New(time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC), 10*time.Millisecond)
	for i := 1; i <= 3; i++ {
		s := run.Sample{
			Elapsed: time.Duration(i) * 10 * time.Millisecond,
			Raw:     int32(i * 100),
			Volts:   float64(i) * 0.08,
		}
		if err := r.Append(s); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	r.Freeze()
	return r
}

func TestExporter_Export(t *testing.T) {
	dir := t.TempDir()
	clk := stubClock{now: time.Date(2024, 1, 16, 12, 5, 0, 0, time.UTC)}
	exp := NewExporter(dir, clk, nopLogger{})

	r := frozenRun(t)
	path, err := exp.Export(r)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "run-20240116T120000-") || !strings.HasSuffix(base, ".csv") {
		t.Errorf("exported filename = %q", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(string(data)), run.EndSentinel) {
		t.Errorf("exported CSV does not end with sentinel:\n%s", data)
	}

	decoded, err := run.DecodeCSV(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("decoded %d samples, want 3", len(decoded))
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestExporter_UpdatesStatus(t *testing.T) {
	dir := t.TempDir()
	clk := stubClock{now: time.Date(2024, 1, 16, 12, 5, 0, 0, time.UTC)}
	exp := NewExporter(dir, clk, nopLogger{})

	r := frozenRun(t)
	path, err := exp.Export(r)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	st, err := run.NewFileRepository(dir).LoadStatus(context.Background())
	if err != nil {
		t.Fatalf("LoadStatus() error = %v", err)
	}
	if st.Path != path {
		t.Errorf("status Path = %q, want %q", st.Path, path)
	}
	if st.RunID != r.ID() {
		t.Errorf("status RunID = %v, want %v", st.RunID, r.ID())
	}
	if st.Samples != 3 || st.Dropped != 0 {
		t.Errorf("status Samples/Dropped = %d/%d, want 3/0", st.Samples, st.Dropped)
	}
	if st.Period != "10ms" {
		t.Errorf("status Period = %q, want %q", st.Period, "10ms")
	}
	if !st.CompletedAt.Equal(clk.now) {
		t.Errorf("status CompletedAt = %v, want %v", st.CompletedAt, clk.now)
	}
}
