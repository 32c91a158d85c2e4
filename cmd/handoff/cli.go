package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kmoseng/handoff/internal/capture"
	"github.com/kmoseng/handoff/internal/config"
	"github.com/kmoseng/handoff/internal/errors"
	"github.com/kmoseng/handoff/internal/mcp"
	"github.com/kmoseng/handoff/internal/memory"
	"github.com/kmoseng/handoff/internal/session"
	"github.com/kmoseng/handoff/internal/store"
	"github.com/kmoseng/handoff/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "handoff",
		Usage:   "Session context capture service",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(db, cfg),
			captureCmd(db, cfg),
			mcpCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newCapturer wires the orchestrator from config.
func newCapturer(db *sql.DB, cfg *config.Config) *capture.Capturer {
	return capture.New(
		store.NewSQLite(db),
		memory.FromConfig(cfg.MemoryURL, cfg.MemoryTimeoutMS),
	)
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP capture server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Bind address (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			bind := cfg.HTTPBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := cfg.HTTPPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv := web.NewServer(newCapturer(db, cfg), Version, bind, port)
			return web.Run(srv)
		},
	}
}

// captureCmd creates the capture command.
func captureCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Capture a session context (flags, or a JSON body piped via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: "Session summary"},
			&cli.StringSliceFlag{Name: "decision", Aliases: []string{"d"}, Usage: "Decision made (repeatable)"},
			&cli.StringSliceFlag{Name: "next-step", Aliases: []string{"n"}, Usage: "Planned next step (repeatable)"},
			&cli.StringSliceFlag{Name: "blocker", Usage: "Current blocker (repeatable)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
		},
		Action: func(c *cli.Context) error {
			var req session.Request

			if stdinHasData() {
				body, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if body != "" {
					if err := json.Unmarshal([]byte(body), &req); err != nil {
						return outputError(errors.NewInvalidRequest("stdin must contain a JSON capture request"))
					}
				}
			}

			// Flags override the piped body field by field
			if c.IsSet("summary") {
				req.Summary = c.String("summary")
			}
			if c.IsSet("decision") {
				req.Decisions = c.StringSlice("decision")
			}
			if c.IsSet("next-step") {
				req.NextSteps = c.StringSlice("next-step")
			}
			if c.IsSet("blocker") {
				req.Blockers = c.StringSlice("blocker")
			}
			if tags := c.String("tags"); tags != "" {
				req.Tags = parseTags(tags)
			}

			result, err := newCapturer(db, cfg).Capture(context.Background(), req)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(result)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(newCapturer(db, cfg), Version)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if hErr, ok := err.(*errors.HandoffError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
