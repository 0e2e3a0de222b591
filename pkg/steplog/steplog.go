package steplog

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	clockAdapter "github.com/mecha-labs/steplog/internal/adapters/clock"
	"github.com/mecha-labs/steplog/internal/adapters/fs"
	httpAdapter "github.com/mecha-labs/steplog/internal/adapters/http"
	"github.com/mecha-labs/steplog/internal/adapters/sim"
	"github.com/mecha-labs/steplog/internal/app"
	"github.com/mecha-labs/steplog/internal/ports"
	"github.com/mecha-labs/steplog/pkg/log"
	"github.com/mecha-labs/steplog/pkg/run"
)

// maxUploadAttempts bounds the post-run upload retry loop so Stop cannot
// block indefinitely on an unreachable service.
const maxUploadAttempts = 3

// Steplog is an embeddable step-response acquisition agent.
// Use New() to create an instance, then Start() to begin acquiring.
//
// An instance records exactly one run: the lifecycle is Idle -> Acquiring ->
// Stopped with Stopped terminal. Create a fresh instance per run.
type Steplog struct {
	config   Config
	opts     options
	recorder *app.Recorder
	exporter ports.RunExporter
	sender   ports.RunSender
	metadata ports.SendMetadata
	logger   log.Logger
	plugins  []Plugin
	emitter  *eventEmitterWrapper

	mu        sync.Mutex
	pluginsUp bool
	cancel    context.CancelFunc

	shutdownOnce sync.Once

	// finished closes after the post-run pipeline (export + upload) ends.
	finished chan struct{}
}

// New creates a Steplog instance with the given configuration.
// The instance is created Idle; call Start() to begin acquiring.
// Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Steplog, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	o := defaultOptions(httpClient)
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	var clk ports.Clock
	if o.clock != nil {
		clk = o.clock
	} else {
		clk = clockAdapter.New()
	}

	// Without an injected reader the instance runs against the simulated
	// plant, which also provides the stimulus.
	reader := o.reader
	stimulus := o.stimulus
	if reader == nil {
		simCfg := sim.DefaultConfig()
		simCfg.Converter = cfg.converter()
		plant := sim.NewPlant(simCfg, clk)
		reader = plant
		if stimulus == nil {
			stimulus = plant
		}
		logger.Info("no analog reader injected, using simulated plant")
	}

	recorder, err := app.NewRecorder(cfg.settings(), app.RecorderDeps{
		Reader:   reader,
		Stimulus: stimulus,
		Clock:    clk,
		Logger:   logger,
		Emitter:  emitter,
		Drops:    emitter,
	})
	if err != nil {
		return nil, err
	}

	var sender ports.RunSender
	if cfg.ServiceURL != "" {
		sender = httpAdapter.NewRunSender(o.httpClient, logger)
	}

	return &Steplog{
		config:   cfg,
		opts:     o,
		recorder: recorder,
		exporter: fs.NewExporter(cfg.DataDir, clk, logger),
		sender:   sender,
		metadata: ports.SendMetadata{
			ProbeID:    cfg.ProbeID,
			Board:      cfg.Board,
			Hostname:   hostname(),
			OSArch:     runtime.GOOS + "/" + runtime.GOARCH,
			AuthKey:    cfg.AuthKey,
			ServiceURL: cfg.ServiceURL,
		},
		logger:   logger,
		plugins:  o.plugins,
		emitter:  emitter,
		finished: make(chan struct{}),
	}, nil
}

// Start begins the acquisition in the background.
// Returns immediately after starting the sampling goroutine.
// Returns ErrAlreadyRunning while acquiring and ErrAlreadyStopped after the
// run has finished. Canceling ctx ends the acquisition like Stop does.
func (s *Steplog) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.recorder.Status() {
	case app.StateAcquiring:
		return ErrAlreadyRunning
	case app.StateStopped:
		return ErrAlreadyStopped
	}

	runCtx, cancel := context.WithCancel(ctx)

	pluginCfg := PluginConfig{
		DataDir:    s.config.DataDir,
		ConfigPath: s.config.ConfigPath,
		ServiceURL: s.config.ServiceURL,
		ProbeID:    s.config.ProbeID,
		Board:      s.config.Board,
		AuthKey:    s.config.AuthKey,
		Logger:     s.logger,
	}
	for i, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			s.shutdownPlugins(s.plugins[:i])
			cancel()
			return err
		}
		s.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	if err := s.recorder.Start(runCtx); err != nil {
		s.shutdownPlugins(s.plugins)
		cancel()
		return err
	}

	s.cancel = cancel
	s.pluginsUp = true

	go s.awaitCompletion()

	return nil
}

// Stop ends the acquisition and returns the frozen run.
//
// It freezes the run, waits for the post-run export/upload pipeline, and
// shuts down plugins in reverse order. Idempotent: a second Stop returns the
// same frozen run with nil error. Returns ErrNotRunning before Start.
func (s *Steplog) Stop() (*run.Run, error) {
	frozen, err := s.recorder.Stop()
	if err != nil {
		return nil, err
	}

	// Export and upload finish before plugins go away.
	<-s.finished

	s.mu.Lock()
	up := s.pluginsUp
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if up {
		s.shutdownOnce.Do(func() {
			s.shutdownPlugins(s.plugins)
		})
	}

	return frozen, nil
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Steplog) Status() State {
	return convertState(s.recorder.Status())
}

// Run returns the frozen run once the instance has stopped, nil before.
func (s *Steplog) Run() *run.Run {
	return s.recorder.Run()
}

// Done returns a channel closed when the acquisition and its post-run
// export/upload pipeline have finished, whether by Stop, duration expiry,
// the sample cap, or context cancellation.
func (s *Steplog) Done() <-chan struct{} {
	return s.finished
}

// awaitCompletion runs the post-run pipeline once acquisition ends:
// export the frozen run, upload it when a service is configured, and emit
// the completion event.
func (s *Steplog) awaitCompletion() {
	<-s.recorder.Done()
	frozen := s.recorder.Run()

	var path string
	if p, err := s.exporter.Export(frozen); err != nil {
		s.logger.Error("run export failed", log.Err(err))
	} else {
		path = p
	}

	uploaded := s.upload(frozen)

	if s.emitter.handler != nil {
		s.emitter.handler.OnRunComplete(RunCompleteEvent{
			Run:      frozen,
			Path:     path,
			Uploaded: uploaded,
		})
	}

	close(s.finished)
}

// upload ships the run to the ingest service with capped, backed-off
// retries. Returns true when the run was accepted.
func (s *Steplog) upload(frozen *run.Run) bool {
	if s.sender == nil || frozen.Len() == 0 {
		return false
	}

	// The run context is already canceled by the time the pipeline runs,
	// so uploads get their own context.
	ctx := context.Background()
	backoff := app.NewBackoff(app.DefaultBackoffInitial, app.DefaultBackoffMax)

	for attempt := 1; attempt <= maxUploadAttempts; attempt++ {
		err := s.sender.Send(ctx, frozen, s.metadata)
		if err == nil {
			return true
		}
		s.logger.Warn("run upload failed",
			log.Int("attempt", attempt),
			log.Err(err))
		if attempt < maxUploadAttempts {
			if err := backoff.Sleep(ctx); err != nil {
				return false
			}
		}
	}
	return false
}

func (s *Steplog) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

// hostname returns the current hostname.
func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSampleDropped(elapsed time.Duration, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnSampleDropped(SampleDroppedEvent{
		Elapsed: elapsed,
		Err:     err,
	})
}
