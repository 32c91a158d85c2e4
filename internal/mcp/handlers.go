package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kmoseng/handoff/internal/capture"
	"github.com/kmoseng/handoff/internal/errors"
	"github.com/kmoseng/handoff/internal/session"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	capturer *capture.Capturer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(capturer *capture.Capturer) *Handlers {
	return &Handlers{capturer: capturer}
}

// CaptureRequest represents the arguments for session_capture.
type CaptureRequest struct {
	Summary   string   `json:"summary"`
	Decisions []string `json:"decisions,omitempty"`
	NextSteps []string `json:"next_steps,omitempty"`
	Blockers  []string `json:"blockers,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// HandleCapture handles the session_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.capturer.Capture(ctx, session.Request{
		Summary:   input.Summary,
		Decisions: input.Decisions,
		NextSteps: input.NextSteps,
		Blockers:  input.Blockers,
		Tags:      input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if hErr, ok := err.(*errors.HandoffError); ok {
		errorObj := map[string]any{
			"code":    hErr.Code,
			"message": hErr.Message,
			"status":  hErr.Status,
		}
		if hErr.Code != errors.ErrInternal && hErr.Details != nil {
			errorObj["details"] = hErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
