// Package steplog provides an embeddable step-response acquisition agent
// for lab DAQ boards.
//
// Steplog drives a step stimulus into a plant, samples the response on a
// fixed timer cadence, and persists the timestamped samples for later
// plotting and model fitting. It can be used as a standalone CLI
// application or embedded as a library in other Go programs.
//
// # Basic Usage
//
// To embed steplog in your application:
//
//	cfg := steplog.Config{
//	    SamplePeriod: 10 * time.Millisecond,
//	    MaxSamples:   200,
//	    DataDir:      "/var/lib/steplog/runs",
//	}
//
//	agent, err := steplog.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := agent.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... wait for the run to complete or decide to end it ...
//
//	frozen, err := agent.Stop()
//	if err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//	_ = frozen.Samples()
//
// # Configuration
//
// Create a [Config]; every field has a sensible default set via
// [Config.SetDefaults]. The defaults record 200 samples at 100 Hz through a
// 12-bit, 3.3 V front end.
//
// # Capabilities
//
// The analog input, stimulus output, and clock are injected capabilities:
//
//	agent, err := steplog.New(cfg,
//	    steplog.WithAnalogReader(adc),
//	    steplog.WithStimulusDriver(pin),
//	)
//
// Without an injected reader the instance samples a simulated first-order
// plant, so examples and tests run without hardware.
//
// # Event Handling
//
// To receive notifications about steplog operations, implement
// [EventHandler] and pass it via [WithEventHandler]. Events are called
// synchronously from steplog goroutines; implementations should return
// quickly to avoid delaying the next tick.
//
// # Lifecycle States
//
// An instance is in one of three states: [StateIdle], [StateAcquiring], or
// [StateStopped]. Stopped is terminal: an instance records exactly one run,
// and a new run needs a new instance. Use [Steplog.Status] to query the
// current state.
//
// # Plugins
//
// Steplog supports optional plugins for extended functionality:
//
//	import "github.com/mecha-labs/steplog/plugins/configwatcher"
//	import "github.com/mecha-labs/steplog/plugins/runretention"
//
//	agent, err := steplog.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig(cfgPath)),
//	    runretention.WithRunRetention(runretention.DefaultConfig()),
//	)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules and
// [CompatibilityMatrix] to check minimum compatible versions.
package steplog
