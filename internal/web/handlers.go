package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/kmoseng/handoff/internal/capture"
	"github.com/kmoseng/handoff/internal/errors"
	"github.com/kmoseng/handoff/internal/session"
)

// maxBodyBytes bounds the capture request body.
const maxBodyBytes = 1 << 20

// Handlers contains HTTP route handlers for the capture API.
type Handlers struct {
	capturer *capture.Capturer
	version  string
}

// HandleCapture handles POST /capture — persist one session context.
// Validation failures return 422; once validation passes the status is
// always 200 and storage outcomes are reported in the body flags.
func (h *Handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		renderError(w, errors.NewInvalidRequest("failed to read request body"))
		return
	}

	// Unknown fields are ignored; only malformed JSON is rejected
	var req session.Request
	if err := json.Unmarshal(body, &req); err != nil {
		renderError(w, errors.NewInvalidRequest("request body must be a JSON object"))
		return
	}

	result, err := h.capturer.Capture(r.Context(), req)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleHealthz handles GET /healthz.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
	})
}
