package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kmoseng/handoff/internal/capture"
	"github.com/kmoseng/handoff/internal/session"
)

// fakeStore is an in-memory store keyed by session id.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*session.Record
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*session.Record{}}
}

func (f *fakeStore) Put(ctx context.Context, rec *session.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records[rec.SessionID] = rec
	return nil
}

// fakeMemory fails on demand.
type fakeMemory struct {
	err error
}

func (f *fakeMemory) Store(ctx context.Context, rec *session.Record) error {
	return f.err
}

func setupTest(t *testing.T, st *fakeStore, mem *fakeMemory) http.Handler {
	t.Helper()
	if st == nil {
		st = newFakeStore()
	}
	if mem == nil {
		mem = &fakeMemory{}
	}
	srv := NewServer(capture.New(st, mem), "test", "127.0.0.1", 0)
	return srv.Handler
}

func postCapture(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/capture", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) capture.Result {
	t.Helper()
	var result capture.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return result
}

func TestHandleCapture_FullPayload(t *testing.T) {
	st := newFakeStore()
	handler := setupTest(t, st, nil)

	rec := postCapture(t, handler, `{
		"summary": "Implementing auth feature",
		"decisions": ["Use JWT tokens"],
		"next_steps": ["Add refresh tokens"],
		"tags": ["auth"]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	result := decodeResult(t, rec)
	if !result.Success {
		t.Error("success should be true")
	}
	if !result.StoredLocal {
		t.Error("stored_local should be true")
	}
	if result.SessionID == "" {
		t.Error("session_id should be present")
	}

	stored, ok := st.records[result.SessionID]
	if !ok {
		t.Fatal("record not found in store")
	}
	if stored.Summary != "Implementing auth feature" {
		t.Errorf("stored Summary = %q", stored.Summary)
	}
	if len(stored.Decisions) != 1 || stored.Decisions[0] != "Use JWT tokens" {
		t.Errorf("stored Decisions = %v", stored.Decisions)
	}
}

func TestHandleCapture_MinimalPayload(t *testing.T) {
	handler := setupTest(t, nil, nil)

	rec := postCapture(t, handler, `{"summary": "Minimal capture"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	result := decodeResult(t, rec)
	if !result.Success || result.SessionID == "" {
		t.Errorf("result = %+v, want success with session id", result)
	}
}

func TestHandleCapture_EmptyObject(t *testing.T) {
	st := newFakeStore()
	handler := setupTest(t, st, nil)

	rec := postCapture(t, handler, `{}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var resp struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error.Code != "VALIDATION_FAILED" {
		t.Errorf("error code = %q, want VALIDATION_FAILED", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "summary" {
		t.Errorf("details.field = %v, want summary", resp.Error.Details["field"])
	}

	// No session is created
	if len(st.records) != 0 {
		t.Errorf("store has %d records, want 0", len(st.records))
	}
}

func TestHandleCapture_MissingSummaryWithOtherFields(t *testing.T) {
	handler := setupTest(t, nil, nil)

	rec := postCapture(t, handler, `{"tags": ["auth"], "decisions": ["Use JWT tokens"]}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleCapture_Blockers(t *testing.T) {
	handler := setupTest(t, nil, nil)

	rec := postCapture(t, handler, `{
		"summary": "Working on feature",
		"blockers": ["Need API key", "Waiting for review"]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if result := decodeResult(t, rec); !result.Success {
		t.Error("success should be true")
	}
}

func TestHandleCapture_UnknownFieldsIgnored(t *testing.T) {
	handler := setupTest(t, nil, nil)

	rec := postCapture(t, handler, `{"summary": "Minimal capture", "unexpected": 42}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleCapture_MalformedJSON(t *testing.T) {
	handler := setupTest(t, nil, nil)

	rec := postCapture(t, handler, `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCapture_MemoryFailureStays200(t *testing.T) {
	handler := setupTest(t, nil, &fakeMemory{err: fmt.Errorf("index down")})

	rec := postCapture(t, handler, `{"summary": "Minimal capture"}`)

	// Memory failures never surface as HTTP error statuses
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	result := decodeResult(t, rec)
	if !result.Success || !result.StoredLocal {
		t.Errorf("result = %+v, want local success unaffected", result)
	}
	if result.StoredRemote {
		t.Error("stored_remote should be false")
	}
}

func TestHandleCapture_StoreFailureStays200(t *testing.T) {
	st := newFakeStore()
	st.err = fmt.Errorf("disk full")
	handler := setupTest(t, st, nil)

	rec := postCapture(t, handler, `{"summary": "Minimal capture"}`)

	// Store failures are data in the result, not HTTP errors
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	result := decodeResult(t, rec)
	if result.Success || result.StoredLocal {
		t.Errorf("result = %+v, want success=false stored_local=false", result)
	}
	if result.SessionID == "" {
		t.Error("session_id is still returned once generated")
	}
}

func TestHandleCapture_DistinctSessionIDs(t *testing.T) {
	handler := setupTest(t, nil, nil)
	body := `{"summary": "Minimal capture"}`

	first := decodeResult(t, postCapture(t, handler, body))
	second := decodeResult(t, postCapture(t, handler, body))

	if first.SessionID == second.SessionID {
		t.Errorf("identical payloads must yield distinct session ids, both %q", first.SessionID)
	}
}

func TestHandleCapture_MethodNotAllowed(t *testing.T) {
	handler := setupTest(t, nil, nil)

	req := httptest.NewRequest("GET", "/capture", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	handler := setupTest(t, nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s, want status ok", rec.Body.String())
	}
}

func TestMiddleware_Headers(t *testing.T) {
	handler := setupTest(t, nil, nil)

	rec := postCapture(t, handler, `{"summary": "Minimal capture"}`)

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}
}

func TestMiddleware_EchoesRequestID(t *testing.T) {
	handler := setupTest(t, nil, nil)

	req := httptest.NewRequest("POST", "/capture", strings.NewReader(`{"summary": "Minimal capture"}`))
	req.Header.Set("X-Request-Id", "test-req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "test-req-1" {
		t.Errorf("X-Request-Id = %q, want test-req-1", got)
	}
}
