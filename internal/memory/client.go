// Package memory holds the client for the external memory service.
// The service owns durable indexing of captured sessions; captures treat it
// as best-effort and never block on its availability.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kmoseng/handoff/internal/session"
)

// Client is the narrow interface to the memory service.
// Store may fail independently of local persistence.
type Client interface {
	Store(ctx context.Context, rec *session.Record) error
}

// entry is the wire format the memory service accepts at POST /v1/entries.
type entry struct {
	SessionID  string   `json:"session_id"`
	Summary    string   `json:"summary"`
	Decisions  []string `json:"decisions,omitempty"`
	NextSteps  []string `json:"next_steps,omitempty"`
	Blockers   []string `json:"blockers,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	CapturedAt int64    `json:"captured_at"`
}

// HTTP is the production Client, talking JSON over HTTP.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP memory client. The timeout bounds each Store call;
// a hung memory service fails the call instead of stalling the capture.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Store sends the record to the memory service.
func (c *HTTP) Store(ctx context.Context, rec *session.Record) error {
	body, err := json.Marshal(entry{
		SessionID:  rec.SessionID,
		Summary:    rec.Summary,
		Decisions:  rec.Decisions,
		NextSteps:  rec.NextSteps,
		Blockers:   rec.Blockers,
		Tags:       rec.Tags,
		CapturedAt: rec.CapturedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/entries", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("memory service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a little of the body for the log line, then discard
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("memory service returned %d: %s", resp.StatusCode, snippet)
	}

	return nil
}

// Disabled is the Client used when no memory service is configured.
// Store reports success so captures behave as local-only.
type Disabled struct{}

// Store is a no-op.
func (Disabled) Store(ctx context.Context, rec *session.Record) error {
	return nil
}

// FromConfig returns an HTTP client for the given base URL, or Disabled
// when the URL is empty.
func FromConfig(baseURL string, timeoutMS int) Client {
	if baseURL == "" {
		return Disabled{}
	}
	return NewHTTP(baseURL, time.Duration(timeoutMS)*time.Millisecond)
}
