// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the hoist normalization pipeline as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/asyncapi-tools/hoist"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `hoist MCP server — hoists inline AsyncAPI schemas into components.schemas,
resolves discriminator mappings and channel references, and merges
equivalent duplicates.

Configuration: All defaults are configurable via HOIST_* environment
variables set in your MCP client config. The Go MCP SDK does not support
initializationOptions; use env vars instead.

Key settings:
- HOIST_MAX_SCAN_FILES (default: 20000) — cap on the fallback directory
  scan the discriminator resolver runs when a mapping value can't be
  resolved by exact or origin-relative path
- HOIST_EXCLUDE_DIRS — comma-separated directory names to prune during
  that scan, in addition to the engine's fixed exclusions`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "hoist", Version: hoist.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "hoist_normalize",
		Description: "Hoist inline schemas in an AsyncAPI document into components.schemas, resolve discriminator mappings and operation channel references, and merge equivalent/duplicate schemas under a single canonical name. Takes the document as JSON and an optional working-directory hint used to resolve discriminator-mapping file references on demand. Returns the normalized document and a summary of what changed.",
	}, handleNormalize)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
