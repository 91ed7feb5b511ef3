package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/version"
)

// Server is the MCP server for pdfagent.
type Server struct {
	ports  *Ports
	server *mcp.Server
	logger *zap.Logger
}

// NewServer creates an MCP server with every tool registered.
func NewServer(ports *Ports, logger *zap.Logger) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "pdfagent",
		Version: version.Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
		logger: logger,
	}
	s.registerTools()

	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
