// Package mcp exposes the insight pipeline as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/portfolio-ai/internal/api"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server whose tools run insight requests.
type Server struct {
	runner api.Runner
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server backed by runner.
func NewServer(runner api.Runner) *Server {
	s := &Server{runner: runner}

	s.mcp = server.NewMCPServer(
		"portfolioai",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateReportTool, s.handleGenerateReport)
	s.mcp.AddTool(suggestActionsTool, s.handleSuggestActions)
	s.mcp.AddTool(explainIndicatorTool, s.handleExplainIndicator)
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(askTool, s.handleAsk)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
