package types

import (
	"encoding/json"

	"reelsmith/engine"
)

// ReelRequest is one reel-generation job as it arrives from Kafka, the
// HTTP API or a batch input file. Keys address objects in the media
// bucket; in local mode they are treated as filesystem paths instead.
type ReelRequest struct {
	RequestID     string            `json:"request_id"`
	EventID       string            `json:"event_id,omitempty"`
	BackgroundKey string            `json:"background_key"`
	ImageKeys     []string          `json:"image_keys"`
	OverlayConfig json.RawMessage   `json:"overlay_config"`
	TemplateVars  map[string]string `json:"template_vars,omitempty"`
	OutputKey     string            `json:"output_key"`
}

// Request lifecycle states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// ReelStatus is the persisted state of a request, including the engine's
// per-overlay outcomes once the job finished.
type ReelStatus struct {
	RequestID string                  `json:"request_id"`
	State     string                  `json:"state"`
	OutputKey string                  `json:"output_key,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Overlays  []engine.OverlayOutcome `json:"overlays,omitempty"`
}

// SubmitResponse is the HTTP API's acknowledgement for a submitted job.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
