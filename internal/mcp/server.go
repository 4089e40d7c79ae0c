// ABOUTME: MCP stdio server lifecycle shared by the docqa CLI and the standalone server binary
// ABOUTME: Registers the document tools and serves until stdin closes or the context is cancelled
package mcp

import (
	"context"
	"fmt"

	"github.com/harper/docqa/internal/app"
	"github.com/harper/docqa/internal/logging"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ServerName is advertised to MCP clients
const ServerName = "docqa Document QA"

// NewServer creates an MCP server with all document tools registered
func NewServer(a *app.App, version string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(ServerName, version)
	RegisterTools(server, a)
	return server
}

// ServeStdio runs server on stdin/stdout until it exits or ctx is cancelled
func ServeStdio(ctx context.Context, server *mcpserver.MCPServer) error {
	logging.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logging.Info("shutdown signal received")
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
