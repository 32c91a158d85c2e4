// Package capture implements the capture request lifecycle: validate the
// payload, assign a session ID, write to the local store and the memory
// service, and reduce both outcomes into one result.
package capture

import (
	"context"
	"crypto/rand"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kmoseng/handoff/internal/errors"
	"github.com/kmoseng/handoff/internal/memory"
	"github.com/kmoseng/handoff/internal/session"
	"github.com/kmoseng/handoff/internal/store"
)

// Result reports the outcome of one capture. Local persistence is the
// durability guarantee; remote indexing is best-effort, so Success tracks
// StoredLocal only.
type Result struct {
	Success      bool   `json:"success"`
	SessionID    string `json:"session_id"`
	StoredLocal  bool   `json:"stored_local"`
	StoredRemote bool   `json:"stored_remote"`
}

// Capturer orchestrates the dual write. Both collaborators are injected
// so tests can substitute fakes.
type Capturer struct {
	store  store.Store
	memory memory.Client
}

// New creates a Capturer.
func New(s store.Store, m memory.Client) *Capturer {
	return &Capturer{store: s, memory: m}
}

// Capture validates the request, persists it, and offers it to the memory
// service. Store and memory failures are recorded in the Result, never
// returned as errors. Each call is independent, so the
// Capturer is safe for concurrent use whenever its collaborators are.
func (c *Capturer) Capture(ctx context.Context, req session.Request) (*Result, error) {
	// No session ID is generated and no stores are touched on invalid input
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := newSessionID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	rec := &session.Record{
		SessionID:  id,
		Request:    req,
		CapturedAt: time.Now().Unix(),
	}

	result := &Result{SessionID: id}

	if err := c.store.Put(ctx, rec); err != nil {
		log.Printf("local store failed for session %s: %v", id, err)
	} else {
		result.StoredLocal = true
	}

	// Attempted regardless of the local outcome; a single attempt, no retry
	if err := c.memory.Store(ctx, rec); err != nil {
		log.Printf("memory service store failed for session %s: %v", id, err)
	} else {
		result.StoredRemote = true
	}

	result.Success = result.StoredLocal
	return result, nil
}

// newSessionID generates a collision-resistant ULID.
func newSessionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
