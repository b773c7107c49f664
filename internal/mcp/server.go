// Package mcp exposes the fitness data to assistants over the Model Context
// Protocol. Every write goes through the repository, so a running UI sees
// the change like any other.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sadopc/feet/internal/repository"
)

// Server wraps the MCP server with repository access.
type Server struct {
	mcpServer *mcp.Server
	repo      *repository.Repository
}

func NewServer(repo *repository.Repository, version string) (*Server, error) {
	if version == "" {
		version = "dev"
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "feet",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve runs the server over stdio until ctx is done or the client hangs up.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
