package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/docs"
	"github.com/kolapsis/vizdocs/internal/mcp/handlers"
)

// Deps holds shared dependencies injected into MCP handlers.
type Deps struct {
	Docs       handlers.Fetcher
	Updates    *docs.UpdateStream
	Detector   handlers.InstalledDetector
	Limits     config.LimitsConfig
	Extraction config.ExtractionConfig
	Version    string
}

// NewServer creates and configures the MCP server with both tools
// registered.
func NewServer(deps *Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"Vizdocs",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	registerTools(s, deps)

	return s
}
