// ABOUTME: Main entry point for the docqa MCP server with stdio transport
// ABOUTME: Loads config, opens storage and the provider client, and serves the document tools
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/docqa/internal/app"
	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/mcp"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		logging.Debug("no .env file found", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		logging.Error("invalid logging configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logging.Error("failed to initialize", "err", err)
		os.Exit(1)
	}

	err = mcp.ServeStdio(ctx, mcp.NewServer(a, version))
	if closeErr := a.Close(); closeErr != nil {
		logging.Warn("error closing storage", "err", closeErr)
	}
	if err != nil {
		logging.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
