// Package mcp exposes extraction and search over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/srcmeta/srcmeta/internal/pipeline"
	"github.com/srcmeta/srcmeta/internal/storage"
)

// Server manages the MCP server lifecycle over stdio.
type Server struct {
	orch  *pipeline.Orchestrator
	store *storage.Store
	mcp   *server.MCPServer
	log   *slog.Logger
}

// NewServer wires the extraction and search tools into an MCP server.
// store may be nil, in which case srcmeta_search is not registered.
func NewServer(orch *pipeline.Orchestrator, store *storage.Store, version string, logger *slog.Logger) *Server {
	s := &Server{
		orch:  orch,
		store: store,
		log:   logger.With("component", "mcp"),
	}

	mcpServer := server.NewMCPServer(
		"srcmeta-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	AddExtractTool(mcpServer, orch)
	if store != nil {
		AddSearchTool(mcpServer, store)
	}

	s.mcp = mcpServer
	return s
}

// Serve starts the stdio server and blocks until a shutdown signal arrives.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving MCP on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.log.Info("shutdown signal received")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
