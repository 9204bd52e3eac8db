// Package mcpserver exposes the repository analysis operations as MCP
// tools over stdio transport.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repolens/repolens/internal/service"
)

// Server wraps the MCP server and registers all repolens analysis tools.
// The snapshot store lives for the lifetime of the server, so analysis
// IDs stay valid across tool calls.
type Server struct {
	server *mcp.Server
	svc    *service.Service
}

// NewServer creates an MCP server backed by the given analysis service.
func NewServer(svc *service.Service, version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "repolens",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, svc: svc}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the six analysis tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_repository",
		Description: describeAnalyzeRepository(),
	}, s.handleAnalyzeRepository)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_code_metrics",
		Description: describeGetCodeMetrics(),
	}, s.handleGetCodeMetrics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_smells",
		Description: describeDetectSmells(),
	}, s.handleDetectSmells)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_contributors",
		Description: describeAnalyzeContributors(),
	}, s.handleAnalyzeContributors)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_hotspots",
		Description: describeGetHotspots(),
	}, s.handleGetHotspots)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_report",
		Description: describeGenerateReport(),
	}, s.handleGenerateReport)
}
