// Package mcp provides a Model Context Protocol server for filekitty.
// It exposes context rendering, folder trees, Python symbol listing,
// and history operations as MCP tools that any MCP-capable agent can use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bastet/filekitty/internal/history"
)

// NewServer creates an MCP server with all filekitty tools registered.
func NewServer(version string, store *history.Store) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "filekitty",
		Version: version,
	}, nil)
	registerTools(server, store)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for write tools (additive, not destructive).
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all filekitty tools to the server.
func registerTools(server *mcp.Server, store *history.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "context",
		Description: "Render a set of files as a Markdown context document " +
			"(optionally prefixed with a folder tree) without saving history.",
		Annotations: readOnlyAnnotations(),
	}, handleContext())

	mcp.AddTool(server, &mcp.Tool{
		Name: "capture",
		Description: "Render a set of files as a Markdown context document and " +
			"save the selection as a history snapshot.",
		Annotations: writeAnnotations(),
	}, handleCapture(store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tree",
		Description: "Render a Markdown folder tree for a directory.",
		Annotations: readOnlyAnnotations(),
	}, handleTree())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "symbols",
		Description: "List the top-level classes, functions, and imports of a Python file.",
		Annotations: readOnlyAnnotations(),
	}, handleSymbols())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "history",
		Description: "List history snapshots: IDs, timestamps, file counts, and the cursor position.",
		Annotations: readOnlyAnnotations(),
	}, handleHistory(store))

	mcp.AddTool(server, &mcp.Tool{
		Name: "stale",
		Description: "Check whether the files of a snapshot (current by default) " +
			"changed or disappeared since it was captured.",
		Annotations: readOnlyAnnotations(),
	}, handleStale(store))
}
