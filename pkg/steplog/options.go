package steplog

import (
	"net/http"

	"github.com/mecha-labs/steplog/internal/ports"
	"github.com/mecha-labs/steplog/pkg/log"
)

// Re-exported types for convenient access without importing sub-packages.
type (
	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger

	// LogField is the structured log field type from pkg/log.
	LogField = log.Field

	// HTTPClient is the interface for making HTTP requests.
	// *http.Client satisfies it.
	HTTPClient = ports.HTTPClient

	// AnalogReader is the analog input capability.
	AnalogReader = ports.AnalogReader

	// Reading is a single analog reading.
	Reading = ports.Reading

	// StimulusDriver is the step output capability.
	StimulusDriver = ports.StimulusDriver

	// Clock is the timing capability.
	Clock = ports.Clock

	// Ticker is the periodic tick capability produced by a Clock.
	Ticker = ports.Ticker
)

// Option configures optional behavior of a Steplog instance.
type Option func(*options)

// options holds the optional configuration for a Steplog instance.
type options struct {
	httpClient   ports.HTTPClient
	logger       log.Logger
	eventHandler EventHandler
	plugins      []Plugin
	reader       ports.AnalogReader
	stimulus     ports.StimulusDriver
	clock        ports.Clock
}

// defaultOptions returns options with sensible defaults.
func defaultOptions(client *http.Client) options {
	return options{
		httpClient: client,
		logger:     log.NewNoopLogger(),
	}
}

// WithHTTPClient sets a custom HTTP client for run uploads.
// If not provided, a default client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for steplog events.
// Events are called synchronously; handlers should return quickly.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the instance starts.
// Plugins are initialized in registration order and shut down in reverse
// order. Built-in plugins provide their own options, like
// configwatcher.WithConfigWatcher and runretention.WithRunRetention.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithAnalogReader injects the analog input capability.
// If not provided, a simulated first-order plant is used.
func WithAnalogReader(reader AnalogReader) Option {
	return func(o *options) {
		o.reader = reader
	}
}

// WithStimulusDriver injects the stimulus output capability.
// If not provided alongside a custom reader, the step is assumed to be
// applied externally.
func WithStimulusDriver(driver StimulusDriver) Option {
	return func(o *options) {
		o.stimulus = driver
	}
}

// WithClock injects the timing capability. Tests use a fake clock here;
// production uses the wall clock default.
func WithClock(clk Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}
