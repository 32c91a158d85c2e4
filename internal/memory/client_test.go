package memory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kmoseng/handoff/internal/session"
)

func testRecord() *session.Record {
	return &session.Record{
		SessionID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Request: session.Request{
			Summary:   "Implementing auth feature",
			Decisions: []string{"Use JWT tokens"},
			Tags:      []string{"auth"},
		},
		CapturedAt: time.Now().Unix(),
	}
}

func TestHTTP_Store(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody entry

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)
	if err := c.Store(context.Background(), testRecord()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if gotPath != "/v1/entries" {
		t.Errorf("path = %q, want /v1/entries", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody.SessionID != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("SessionID = %q, want the record id", gotBody.SessionID)
	}
	if gotBody.Summary != "Implementing auth feature" {
		t.Errorf("Summary = %q, want the record summary", gotBody.Summary)
	}
}

func TestHTTP_Store_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)
	err := c.Store(context.Background(), testRecord())
	if err == nil {
		t.Fatal("Store should fail on 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestHTTP_Store_Unreachable(t *testing.T) {
	// Closed server: connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewHTTP(srv.URL, time.Second)
	if err := c.Store(context.Background(), testRecord()); err == nil {
		t.Fatal("Store should fail when the service is unreachable")
	}
}

func TestHTTP_Store_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	c := NewHTTP(srv.URL, 50*time.Millisecond)

	start := time.Now()
	err := c.Store(context.Background(), testRecord())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Store should fail on timeout")
	}
	if elapsed > 2*time.Second {
		t.Errorf("Store took %v, timeout not enforced", elapsed)
	}
}

func TestDisabled_Store(t *testing.T) {
	if err := (Disabled{}).Store(context.Background(), testRecord()); err != nil {
		t.Errorf("Disabled.Store should never fail, got: %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig("", 1000).(Disabled); !ok {
		t.Error("empty URL should produce the Disabled client")
	}
	if _, ok := FromConfig("http://localhost:7700", 1000).(*HTTP); !ok {
		t.Error("non-empty URL should produce the HTTP client")
	}
}
