// Package models holds the wire types exchanged over HARDY's HTTP and
// WebSocket surface. Internal algorithm types live in internal/align;
// these are the JSON shapes a caller actually sends and receives.
package models

import "time"

// SegmentInput is one caller-supplied transcript segment with
// unreliable LLM-produced timestamps.
type SegmentInput struct {
	SpeakerID string `json:"speakerId" binding:"required"`
	Text      string `json:"text" binding:"required"`
	StartMs   int    `json:"startMs"`
	EndMs     int    `json:"endMs"`
}

// AlignRequest is the body of POST /align.
type AlignRequest struct {
	AudioBase64  string         `json:"audio_base64" binding:"required"`
	LanguageHint string         `json:"language_hint,omitempty"`
	Segments     []SegmentInput `json:"segments" binding:"required,min=1,dive"`
}

// SegmentOutput is one reprojected segment in the aligned response.
type SegmentOutput struct {
	SpeakerID  string  `json:"speakerId"`
	Text       string  `json:"text"`
	StartMs    int     `json:"startMs"`
	EndMs      int     `json:"endMs"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// AlignResponse is the body returned by POST /align.
type AlignResponse struct {
	JobID             string          `json:"job_id"`
	Segments          []SegmentOutput `json:"segments"`
	AverageConfidence float64         `json:"average_confidence"`
}

// HealthResponse is the body returned by GET /health. ReplicateConfigured
// preserves the original service's wire field name: it now reports
// whether the MCP-based forced-alignment client is connected, not
// whether a Replicate API key is present, but external callers built
// against the original contract key off this exact field name.
type HealthResponse struct {
	Status              string `json:"status"`
	ReplicateConfigured bool   `json:"replicate_configured"`
}

// JobSummary is one entry in the GET /jobs listing.
type JobSummary struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	SegmentCount      int        `json:"segment_count"`
	AverageConfidence float64    `json:"average_confidence,omitempty"`
	Error             string     `json:"error,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// LogEntryResponse is one entry in the GET /jobs/:id/logs listing.
type LogEntryResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}
