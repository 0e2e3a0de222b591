package ports

import (
	"context"

	"github.com/mecha-labs/steplog/pkg/run"
)

// RunSender transmits a frozen run to the ingest service.
// Implementations handle serialization, HTTP communication, and authentication.
type RunSender interface {
	// Send transmits the run to the remote service.
	// Returns nil on success, error on failure. Retry policy is the caller's
	// concern.
	Send(ctx context.Context, r *run.Run, metadata SendMetadata) error
}

// SendMetadata provides context for the send operation.
// This information is included in HTTP headers for server-side tracking.
type SendMetadata struct {
	// ProbeID identifies the measurement probe or rig
	ProbeID string

	// Board is the development board model (e.g., "STM32L476 Nucleo")
	Board string

	// Hostname is the agent's hostname
	Hostname string

	// OSArch is the operating system and architecture (e.g., "linux/arm64")
	OSArch string

	// AuthKey is the API authentication key
	AuthKey string

	// ServiceURL is the base URL of the ingest service
	ServiceURL string
}

// RunExporter writes a frozen run to local storage.
type RunExporter interface {
	// Export writes the run and returns the path of the exported file.
	Export(r *run.Run) (string, error)
}
