package steplog

import (
	"context"

	"github.com/mecha-labs/steplog/pkg/log"
)

// Plugin extends a Steplog instance with optional functionality.
// Plugins are initialized in registration order when Start is called and
// shut down in reverse order when Stop is called. An initialization failure
// aborts Start.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called when the instance starts. The context is the
	// run context; it is canceled when the acquisition ends.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called when the instance stops.
	Shutdown(ctx context.Context) error
}

// PluginConfig carries the instance configuration a plugin may need.
type PluginConfig struct {
	DataDir    string
	ConfigPath string
	ServiceURL string
	ProbeID    string
	Board      string
	AuthKey    string
	Logger     log.Logger
}

// BasePlugin provides no-op implementations of the Plugin methods other
// than Name. Embed it to implement only what you need.
type BasePlugin struct{}

func (BasePlugin) Initialize(ctx context.Context, cfg PluginConfig) error { return nil }
func (BasePlugin) Shutdown(ctx context.Context) error                     { return nil }
