package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/version"
)

// Server wraps the MCP server with the bridge's command registry
type Server struct {
	mcpServer *server.MCPServer
	registry  *commands.Registry

	// cloudAPIKey is used by cloud tools called without an api_key
	cloudAPIKey string

	// tools lists registered tool names in registration order
	tools []string
}

// Option configures a Server
type Option func(*Server)

// WithCloudAPIKey sets the key cloud tools fall back to
func WithCloudAPIKey(key string) Option {
	return func(s *Server) { s.cloudAPIKey = key }
}

// NewServer creates a new MCP server exposing registry as tools
func NewServer(registry *commands.Registry, opts ...Option) *Server {
	s := &Server{registry: registry}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		"lightbridge",
		version.Version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// Tools returns the registered tool names
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
