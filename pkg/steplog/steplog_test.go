package steplog_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mecha-labs/steplog/pkg/steplog"
)

// manualClock drives the sampling loop by hand. Tick() advances the clock by
// one ticker period and delivers the tick synchronously.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	ticker *manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTicker(d time.Duration) steplog.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{period: d, ch: make(chan time.Time)}
	c.ticker = t
	return t
}

func (c *manualClock) Tick() {
	var t *manualTicker
	for t == nil {
		c.mu.Lock()
		t = c.ticker
		c.mu.Unlock()
		if t == nil {
			time.Sleep(time.Millisecond)
		}
	}

	c.mu.Lock()
	c.now = c.now.Add(t.period)
	now := c.now
	c.mu.Unlock()
	t.ch <- now
}

type manualTicker struct {
	period  time.Duration
	ch      chan time.Time
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped = true }

// recordingHandler captures every event.
type recordingHandler struct {
	mu        sync.Mutex
	states    []steplog.StateChangeEvent
	drops     []steplog.SampleDroppedEvent
	completes []steplog.RunCompleteEvent
}

func (h *recordingHandler) OnStateChange(e steplog.StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, e)
}

func (h *recordingHandler) OnSampleDropped(e steplog.SampleDroppedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drops = append(h.drops, e)
}

func (h *recordingHandler) OnRunComplete(e steplog.RunCompleteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completes = append(h.completes, e)
}

func (h *recordingHandler) Completes() []steplog.RunCompleteEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]steplog.RunCompleteEvent{}, h.completes...)
}

func (h *recordingHandler) States() []steplog.StateChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]steplog.StateChangeEvent{}, h.states...)
}

// tracePlugin records lifecycle calls into a shared trace.
type tracePlugin struct {
	name    string
	trace   *[]string
	mu      *sync.Mutex
	initErr error
}

func (p *tracePlugin) Name() string { return p.name }

func (p *tracePlugin) Initialize(ctx context.Context, cfg steplog.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.trace = append(*p.trace, p.name+" init")
	return p.initErr
}

func (p *tracePlugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.trace = append(*p.trace, p.name+" shutdown")
	return nil
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  steplog.Config
	}{
		{"negative period", steplog.Config{SamplePeriod: -time.Millisecond}},
		{"negative duration", steplog.Config{Duration: -time.Second}},
		{"service url without auth key", steplog.Config{ServiceURL: "https://ingest.example.com"}},
		{"negative vref", steplog.Config{VRef: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := steplog.New(tt.cfg); !errors.Is(err, steplog.ErrInvalidConfig) {
				t.Fatalf("New() err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRunToCompletion(t *testing.T) {
	clk := newManualClock()
	handler := &recordingHandler{}

	cfg := steplog.Config{
		SamplePeriod: 10 * time.Millisecond,
		MaxSamples:   3,
		DataDir:      t.TempDir(),
	}
	agent, err := steplog.New(cfg,
		steplog.WithClock(clk),
		steplog.WithEventHandler(handler),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if agent.Status() != steplog.StateIdle {
		t.Fatalf("initial state = %v, want idle", agent.Status())
	}

	if err := agent.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := agent.Start(context.Background()); !errors.Is(err, steplog.ErrAlreadyRunning) {
		t.Fatalf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	for i := 0; i < 3; i++ {
		clk.Tick()
	}
	<-agent.Done()

	frozen, err := agent.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if frozen.Len() != 3 {
		t.Fatalf("Len = %d, want 3", frozen.Len())
	}
	for i, s := range frozen.Samples() {
		want := time.Duration(i+1) * 10 * time.Millisecond
		if s.Elapsed != want {
			t.Errorf("sample %d elapsed = %v, want %v", i, s.Elapsed, want)
		}
	}

	// Idempotent stop: identical frozen run, nil error.
	again, err := agent.Stop()
	if err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if again != frozen {
		t.Error("second Stop returned a different run")
	}

	if err := agent.Start(context.Background()); !errors.Is(err, steplog.ErrAlreadyStopped) {
		t.Fatalf("Start after stop err = %v, want ErrAlreadyStopped", err)
	}

	// The run landed on disk: a stamped CSV plus the status file.
	matches, err := filepath.Glob(filepath.Join(cfg.DataDir, "run-*.csv"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("exported files = %v (err %v), want exactly one", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasSuffix(string(data), "End\n") {
		t.Errorf("export missing End sentinel: %q", data)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "status.json")); err != nil {
		t.Errorf("status file: %v", err)
	}

	completes := handler.Completes()
	if len(completes) != 1 {
		t.Fatalf("complete events = %d, want 1", len(completes))
	}
	if completes[0].Path != matches[0] {
		t.Errorf("complete path = %q, want %q", completes[0].Path, matches[0])
	}
	if completes[0].Uploaded {
		t.Error("Uploaded = true with no service configured")
	}

	states := handler.States()
	if len(states) != 2 {
		t.Fatalf("state events = %d, want 2", len(states))
	}
	if states[0].Previous != steplog.StateIdle || states[0].Current != steplog.StateAcquiring {
		t.Errorf("first transition = %v -> %v", states[0].Previous, states[0].Current)
	}
	if states[1].Previous != steplog.StateAcquiring || states[1].Current != steplog.StateStopped {
		t.Errorf("second transition = %v -> %v", states[1].Previous, states[1].Current)
	}
}

func TestUploadOnCompletion(t *testing.T) {
	clk := newManualClock()
	handler := &recordingHandler{}

	var mu sync.Mutex
	var requests []*http.Request
	client := clientFunc(func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, req)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	cfg := steplog.Config{
		SamplePeriod: 10 * time.Millisecond,
		MaxSamples:   2,
		DataDir:      t.TempDir(),
		ServiceURL:   "https://ingest.example.com",
		AuthKey:      "test-key",
		ProbeID:      "bench-3",
	}
	agent, err := steplog.New(cfg,
		steplog.WithClock(clk),
		steplog.WithHTTPClient(client),
		steplog.WithEventHandler(handler),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := agent.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clk.Tick()
	clk.Tick()
	<-agent.Done()

	if _, err := agent.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	mu.Lock()
	got := len(requests)
	var auth string
	if got > 0 {
		auth = requests[0].Header.Get("Authorization")
	}
	mu.Unlock()

	if got != 1 {
		t.Fatalf("upload requests = %d, want 1", got)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}

	completes := handler.Completes()
	if len(completes) != 1 || !completes[0].Uploaded {
		t.Fatalf("complete events = %+v, want one uploaded", completes)
	}
}

func TestPluginLifecycle(t *testing.T) {
	var mu sync.Mutex
	var trace []string
	a := &tracePlugin{name: "a", trace: &trace, mu: &mu}
	b := &tracePlugin{name: "b", trace: &trace, mu: &mu}

	clk := newManualClock()
	agent, err := steplog.New(
		steplog.Config{DataDir: t.TempDir()},
		steplog.WithClock(clk),
		steplog.WithPlugin(a),
		steplog.WithPlugin(b),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := agent.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := agent.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	mu.Lock()
	got := fmt.Sprintf("%v", trace)
	mu.Unlock()
	want := "[a init b init b shutdown a shutdown]"
	if got != want {
		t.Fatalf("trace = %v, want %v", got, want)
	}
}

func TestPluginInitFailureAbortsStart(t *testing.T) {
	var mu sync.Mutex
	var trace []string
	a := &tracePlugin{name: "a", trace: &trace, mu: &mu}
	b := &tracePlugin{name: "b", trace: &trace, mu: &mu, initErr: errors.New("bad wiring")}

	agent, err := steplog.New(
		steplog.Config{DataDir: t.TempDir()},
		steplog.WithClock(newManualClock()),
		steplog.WithPlugin(a),
		steplog.WithPlugin(b),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := agent.Start(context.Background()); err == nil {
		t.Fatal("Start succeeded despite plugin failure")
	}
	if agent.Status() != steplog.StateIdle {
		t.Fatalf("state = %v, want idle", agent.Status())
	}
	if _, err := agent.Stop(); !errors.Is(err, steplog.ErrNotRunning) {
		t.Fatalf("Stop err = %v, want ErrNotRunning", err)
	}

	mu.Lock()
	got := fmt.Sprintf("%v", trace)
	mu.Unlock()
	want := "[a init b init a shutdown]"
	if got != want {
		t.Fatalf("trace = %v, want %v", got, want)
	}
}

// clientFunc adapts a function to steplog.HTTPClient.
type clientFunc func(*http.Request) (*http.Response, error)

func (f clientFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }
