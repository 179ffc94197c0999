package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/telemetry"
	"github.com/patchbaylabs/patchbay/pkg/version"
)

// ServerName is the implementation name reported to MCP hosts.
const ServerName = "patchbay"

// Server exposes the enabled connectors' tools and the built-in resources
// over the Model Context Protocol.
type Server struct {
	mcp      *mcp.Server
	registry *connector.Registry
	metrics  *telemetry.ToolMetrics
	logger   *slog.Logger

	instructions string
	tools        []connector.ToolInfo
}

// Option configures the server at construction time.
type Option func(*Server)

// WithLogger sets the server logger. In stdio mode the logger must not
// write to stdout, which carries the JSON-RPC stream.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a telemetry collector. Tool invocations are recorded
// into it and the metrics resource is served from its snapshots.
func WithMetrics(metrics *telemetry.ToolMetrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithInstructions sets the usage instructions reported to hosts on
// initialize.
func WithInstructions(instructions string) Option {
	return func(s *Server) {
		s.instructions = instructions
	}
}

// NewServer creates an MCP server serving every connector in registry.
// Tool registration happens here; a returned server is ready to Run.
func NewServer(registry *connector.Registry, opts ...Option) (*Server, error) {
	if registry == nil {
		return nil, errors.New("connector registry is required")
	}

	s := &Server{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var serverOpts *mcp.ServerOptions
	if s.instructions != "" {
		serverOpts = &mcp.ServerOptions{Instructions: s.instructions}
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		serverOpts,
	)

	reg := &connector.Registration{
		Server:  s.mcp,
		Logger:  s.logger,
		Metrics: s.metrics,
	}
	if err := registry.RegisterAll(reg); err != nil {
		return nil, fmt.Errorf("registering connectors: %w", err)
	}
	s.tools = reg.Tools()

	s.registerResources()

	s.logger.Debug("MCP server ready",
		slog.Int("connectors", registry.Len()),
		slog.Int("tools", len(s.tools)))

	return s, nil
}

// MCPServer returns the underlying SDK server for transports not covered
// by Run and ServeHTTP.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Registry returns the connector registry the server was built from.
func (s *Server) Registry() *connector.Registry {
	return s.registry
}

// ListTools returns every registered tool in registration order.
func (s *Server) ListTools() []connector.ToolInfo {
	out := make([]connector.ToolInfo, len(s.tools))
	copy(out, s.tools)
	return out
}

// Run serves MCP over stdio until ctx is canceled. This is the transport
// hosts use when they launch patchbay themselves.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server",
		slog.String("transport", "stdio"),
		slog.Int("connectors", s.registry.Len()),
		slog.Int("tools", len(s.tools)))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error",
			slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("MCP server stopped")
	return nil
}
