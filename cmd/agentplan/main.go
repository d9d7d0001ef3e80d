// agentplan: hierarchical work planning MCP server.
//
// A universal MCP server that gives AI coding tools a persistent,
// hierarchical work plan (project → phase → task → subtask) with a
// rolling view that collapses completed work into summaries.
//
// Usage:
//
//	agentplan serve    # Start MCP server (stdio transport)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	planserver "github.com/agentplan/agentplan/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("agentplan v%s\n", planserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := planserver.New(os.Getenv("AGENTPLAN_CONFIG"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Serve until the client closes stdin or an interrupt arrives; the
	// context cancellation stops the listen loop so cleanup runs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `agentplan v%s — hierarchical work planning MCP server

Usage:
  agentplan serve    Start the MCP server (stdio transport)

Environment:
  AGENTPLAN_CONFIG   Path to the YAML config file
                     (default: ~/.agentplan/config.yaml)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "agentplan": {
        "command": "agentplan",
        "args": ["serve"]
      }
    }
  }
`, planserver.Version)
}
