package session

import (
	"strings"

	"github.com/kmoseng/handoff/internal/errors"
)

// Request is the inbound capture payload.
// Only Summary is required; the other fields default to empty lists.
type Request struct {
	// Summary is a free-text description of the session
	Summary string `json:"summary"`

	// Decisions records decisions made during the session
	Decisions []string `json:"decisions,omitempty"`

	// NextSteps records planned follow-up work
	NextSteps []string `json:"next_steps,omitempty"`

	// Blockers records anything blocking progress
	Blockers []string `json:"blockers,omitempty"`

	// Tags is a list of short labels for categorization
	Tags []string `json:"tags,omitempty"`
}

// Record is one captured session as persisted. Records are append-only:
// created once per accepted request and never mutated.
type Record struct {
	// SessionID is a ULID that uniquely identifies this capture
	SessionID string `json:"session_id"`

	// Request is the validated payload
	Request

	// CapturedAt is the Unix timestamp assigned at write time
	CapturedAt int64 `json:"captured_at"`
}

// Validate checks the request and normalizes optional fields.
// A missing or blank summary is a validation failure; absent optional
// fields become empty slices, never an error.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Summary) == "" {
		return errors.NewValidationFailed("summary", "summary is required and must not be empty")
	}

	if r.Decisions == nil {
		r.Decisions = []string{}
	}
	if r.NextSteps == nil {
		r.NextSteps = []string{}
	}
	if r.Blockers == nil {
		r.Blockers = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}

	return nil
}
