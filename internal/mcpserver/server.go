package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/scan"
)

// Saver downloads a resume into a directory.
type Saver interface {
	Save(ctx context.Context, name, dir string) (string, error)
}

// Lister reads recorded scans.
type Lister interface {
	List(ctx context.Context, origin string) ([]*history.Record, error)
}

// Options wires the server to the backend and the scan journal.
type Options struct {
	Scanner *scan.Scanner
	Saver   Saver
	// History is optional; list-scans reports history as disabled when nil.
	History Lister
	// Origin filters list-scans to the configured backend.
	Origin string
	// OutputDir receives resumes fetched by get-resume when the caller does
	// not pass a directory.
	OutputDir string
	Version   string
}

// Server exposes the resume scanning tools over MCP, either on stdio or on a
// local streamable HTTP endpoint.
type Server struct {
	opts       Options
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server // Standard HTTP server that uses the listener
	port       int
	mu         sync.Mutex
}

// New creates a server with its tools registered.
func New(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{opts: opts}
	s.mcpServer = server.NewMCPServer(
		"resumescan",
		opts.Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves MCP on the given streams until ctx is cancelled or the
// input is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.Debug("Serving MCP on stdio")
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// Start starts the MCP HTTP server on addr. An empty addr picks a random
// local port. Returns the bound port.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	if addr == "" {
		addr = "127.0.0.1:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// Pass the listener directly to avoid a TOCTOU race on the port.
	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{
		Handler: mux,
	}
	s.httpServer = mcpHandler

	logger.Debug("Starting MCP server on port %d", s.port)

	// Capture stdServer for the goroutine to avoid racing with Stop().
	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Debug("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop stops the MCP HTTP server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil // Already stopped
	}

	logger.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
