// Package http provides the HTTP adapter that ships frozen runs to the
// ingest service.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mecha-labs/steplog/internal/ports"
	"github.com/mecha-labs/steplog/pkg/run"
)

const runsEndpoint = "/v1/ingest/runs"

// runManifest is the JSON descriptor accompanying the CSV body.
type runManifest struct {
	RunID     uuid.UUID `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	PeriodMs  float64   `json:"period_ms"`
	Samples   int       `json:"samples"`
	Dropped   int       `json:"dropped"`
}

// RunSender implements ports.RunSender using HTTP multipart uploads.
type RunSender struct {
	client ports.HTTPClient
	logger ports.Logger
}

// NewRunSender creates a new HTTP run sender.
func NewRunSender(client ports.HTTPClient, logger ports.Logger) *RunSender {
	return &RunSender{
		client: client,
		logger: logger,
	}
}

// Send transmits the frozen run to the remote service as a multipart request:
// a "manifest" JSON field plus the CSV-encoded samples as the "samples" file.
func (s *RunSender) Send(ctx context.Context, r *run.Run, metadata ports.SendMetadata) error {
	if r.Len() == 0 {
		return nil
	}

	manifest := runManifest{
		RunID:     r.ID(),
		StartedAt: r.StartedAt(),
		PeriodMs:  float64(r.Period()) / float64(time.Millisecond),
		Samples:   r.Len(),
		Dropped:   r.Dropped(),
	}

	// Build multipart request body
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPart, err := writer.CreateFormField("manifest")
	if err != nil {
		return fmt.Errorf("create manifest field: %w", err)
	}
	if _, err := manifestPart.Write(manifestJSON); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	samplesPart, err := writer.CreateFormFile("samples", r.ID().String()+".csv")
	if err != nil {
		return fmt.Errorf("create samples field: %w", err)
	}
	if err := run.EncodeCSV(samplesPart, r); err != nil {
		return fmt.Errorf("encode samples: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart: %w", err)
	}

	// Build request
	url := metadata.ServiceURL + runsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	// Set headers
	req.Header.Set("Authorization", "Bearer "+metadata.AuthKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Agent-Hostname", metadata.Hostname)
	req.Header.Set("X-Agent-OSArch", metadata.OSArch)
	req.Header.Set("X-Steplog-Probe-Id", metadata.ProbeID)
	req.Header.Set("X-Steplog-Board", metadata.Board)

	// Send request
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// Check response
	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
