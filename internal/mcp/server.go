package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kmoseng/handoff/internal/capture"
)

// NewServer creates a new MCP server with the capture tool registered.
func NewServer(capturer *capture.Capturer, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"handoff",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(capturer)
	s.AddTool(captureToolDef, h.HandleCapture)

	return s
}

// Run starts the MCP server using stdio transport.
func Run(capturer *capture.Capturer, version string) error {
	s := NewServer(capturer, version)
	return server.ServeStdio(s)
}
