package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/schema"
	"github.com/spetersoncode/a2ui/tool"
)

// SchemaURI is the resource URI of the published UI schema.
const SchemaURI = "a2ui://schema"

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
	schema  json.RawMessage
	logger  *slog.Logger
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithSchema publishes the UI message schema, wrapped as a list schema,
// as the resource at SchemaURI.
func WithSchema(s json.RawMessage) ServerOption {
	return func(c *serverConfig) {
		c.schema = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		c.logger = l
	}
}

// NewServer creates an MCP server exposing the tools in registry. Tools
// run with a fresh context per call and no session state.
func NewServer(registry *tool.Registry, opts ...ServerOption) (*server.MCPServer, error) {
	cfg := &serverConfig{
		name:    "a2ui-mcp-server",
		version: "1.0.0",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	serverOpts := []server.ServerOption{server.WithToolCapabilities(true)}
	if cfg.schema != nil {
		serverOpts = append(serverOpts, server.WithResourceCapabilities(false, false))
	}
	s := server.NewMCPServer(cfg.name, cfg.version, serverOpts...)

	tools, err := registry.Tools(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	for _, t := range tools {
		s.AddTool(ToMCPTool(t), createMCPHandler(cfg, t))
	}

	if cfg.schema != nil {
		wrapped, err := schema.Wrap(cfg.schema)
		if err != nil {
			return nil, err
		}
		s.AddResource(
			mcp.NewResource(SchemaURI, "A2UI schema",
				mcp.WithResourceDescription("JSON Schema for the list of messages accepted by "+a2ui.ToolName),
				mcp.WithMIMEType("application/schema+json"),
			),
			func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				return []mcp.ResourceContents{mcp.TextResourceContents{
					URI:      SchemaURI,
					MIMEType: "application/schema+json",
					Text:     string(wrapped),
				}}, nil
			},
		)
	}

	return s, nil
}

// createMCPHandler wraps a tool as an MCP tool handler.
func createMCPHandler(cfg *serverConfig, t tool.Tool) server.ToolHandlerFunc {
	name := t.Declaration().Name
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cfg.logger.Debug("MCP tool call", "tool", name)
		tc := tool.NewContext(cfg.name, "", nil)
		return ToMCPCallToolResult(t.Invoke(ctx, tc, req.GetArguments())), nil
	}
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
// This is the standard transport for MCP servers invoked as subprocesses.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	s, err := NewServer(registry, opts...)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}

// ServeHTTP starts an MCP server on addr using the streamable HTTP
// transport.
func ServeHTTP(addr string, registry *tool.Registry, opts ...ServerOption) error {
	s, err := NewServer(registry, opts...)
	if err != nil {
		return err
	}
	return server.NewStreamableHTTPServer(s).Start(addr)
}
