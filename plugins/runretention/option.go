package runretention

import "github.com/mecha-labs/steplog/pkg/steplog"

// WithRunRetention returns a steplog Option that enables automatic pruning
// of exported run files. When enabled, the plugin periodically checks the
// data directory size and removes the oldest runs when it exceeds the
// configured high watermark.
//
// Usage:
//
//	agent, err := steplog.New(cfg,
//	    runretention.WithRunRetention(runretention.Config{
//	        CheckInterval: time.Hour,
//	        HighWatermark: 256 << 20,
//	        LowWatermark:  192 << 20,
//	    }),
//	)
func WithRunRetention(cfg Config) steplog.Option {
	plugin := New(cfg)
	return steplog.WithPlugin(plugin)
}

// WithDefaultRunRetention returns a steplog Option that enables run pruning
// with default settings (check hourly, high watermark 256 MiB, low
// watermark 192 MiB).
//
// Usage:
//
//	agent, err := steplog.New(cfg, runretention.WithDefaultRunRetention())
func WithDefaultRunRetention() steplog.Option {
	return WithRunRetention(DefaultConfig())
}
