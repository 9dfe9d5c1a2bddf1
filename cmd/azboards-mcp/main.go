// azboards-mcp: Azure Boards work item MCP server.
//
// Exposes work item tracking tools (create/search/update/link/attach)
// over MCP stdio, backed by the Azure DevOps REST API.
//
// Usage:
//
//	azboards-mcp serve      # Start the MCP server (stdio transport)
//	azboards-mcp version    # Print the version
//
// Configuration (environment):
//
//	AZBOARDS_ORG_URL   organization URL, e.g. https://dev.azure.com/myorg (required)
//	AZBOARDS_PAT       personal access token (required)
//	AZBOARDS_PROJECT   default project (optional; first org project otherwise)
//	AZBOARDS_VERBOSE   wire logging on stderr (optional)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	azserver "github.com/HendryAvila/azboards-mcp/internal/server"
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
		fmt.Printf("azboards-mcp v%s\n", azserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, err := azserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	// stdout carries the MCP stdio transport; all diagnostics go to
	// stderr.
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `azboards-mcp v%s - Azure Boards work item MCP server

Usage:
  azboards-mcp serve      Start the MCP server (stdio transport)
  azboards-mcp version    Print the version

Configuration:
  AZBOARDS_ORG_URL   Organization URL, e.g. https://dev.azure.com/myorg (required)
  AZBOARDS_PAT       Personal access token (required)
  AZBOARDS_PROJECT   Default project (optional)
  AZBOARDS_VERBOSE   Enable wire logging on stderr (optional)

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "azboards": {
        "command": "azboards-mcp",
        "args": ["serve"],
        "env": {
          "AZBOARDS_ORG_URL": "https://dev.azure.com/myorg",
          "AZBOARDS_PAT": "..."
        }
      }
    }
  }
`, azserver.Version)
}
