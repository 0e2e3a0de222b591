package configwatcher

import "github.com/mecha-labs/steplog/pkg/steplog"

// WithConfigWatcher returns a steplog Option that enables config file
// watching. The latest good configuration is retrievable from the plugin
// and applied to subsequent runs.
//
// Usage:
//
//	watcher := configwatcher.New(configwatcher.DefaultConfig(cfgPath))
//	agent, err := steplog.New(cfg, steplog.WithPlugin(watcher))
//
// or, when the plugin handle is not needed:
//
//	agent, err := steplog.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig(cfgPath)),
//	)
func WithConfigWatcher(cfg Config) steplog.Option {
	plugin := New(cfg)
	return steplog.WithPlugin(plugin)
}
