package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	filekittymcp "github.com/bastet/filekitty/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run filekitty as a Model Context Protocol (MCP) server over stdio.

This exposes filekitty operations as MCP tools that any MCP-capable
agent environment can use (Claude Code, Cursor, Windsurf, Gemini CLI,
etc).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "filekitty": {
        "command": "filekitty",
        "args": ["serve"]
      }
    }
  }

Available tools: context, capture, tree, symbols, history, stale`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := openStore(settings)
			if err != nil {
				return err
			}
			server := filekittymcp.NewServer(buildVersion(), store)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
