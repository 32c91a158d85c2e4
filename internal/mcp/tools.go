package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// captureToolDef defines the session_capture tool.
var captureToolDef = mcp.NewTool("session_capture",
	mcp.WithDescription("Capture the current session context (summary, decisions, next steps, blockers, tags) for later retrieval. Returns the generated session_id and per-store outcome flags."),
	mcp.WithString("summary",
		mcp.Required(),
		mcp.Description("Free-text summary of the session. Required and must not be empty."),
	),
	mcp.WithArray("decisions",
		mcp.Description("Decisions made during the session."),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("next_steps",
		mcp.Description("Planned follow-up work."),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("blockers",
		mcp.Description("Anything blocking progress."),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("tags",
		mcp.Description("Short labels for categorization."),
		mcp.Items(map[string]any{"type": "string"}),
	),
)
