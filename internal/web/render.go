package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/kmoseng/handoff/internal/errors"
)

// renderJSON writes data as a JSON response with the given status.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes a structured error response. HandoffError carries its
// own HTTP status; anything else is treated as internal.
func renderError(w http.ResponseWriter, err error) {
	hErr, ok := err.(*errors.HandoffError)
	if !ok {
		hErr = errors.NewInternal(nil)
	}

	errorObj := map[string]any{
		"code":    hErr.Code,
		"message": hErr.Message,
	}
	// Internal details stay out of responses to avoid leaking paths or SQL
	if hErr.Code != errors.ErrInternal && hErr.Details != nil {
		errorObj["details"] = hErr.Details
	}

	renderJSON(w, hErr.Status, map[string]any{"error": errorObj})
}

// requestID tags each request with an ID for log correlation and echoes it
// in the X-Request-Id response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		log.Printf("%s %s request_id=%s", r.Method, r.URL.Path, id)
		next.ServeHTTP(w, r)
	})
}
