package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/tool"
)

// RemoteToolset offers the tools of an MCP server to agents. Calls are
// proxied to the server.
//
// RemoteToolset is safe for concurrent use. The tool list is cached
// locally and can be refreshed with [RemoteToolset.Refresh].
type RemoteToolset struct {
	client *client.Client
	mu     sync.RWMutex
	tools  map[string]a2ui.Tool
}

var _ tool.Toolset = (*RemoteToolset)(nil)

// NewRemoteToolset connects to an MCP server via stdio.
// The command is the path to the MCP server executable, and args are passed to it.
func NewRemoteToolset(ctx context.Context, command string, env []string, args ...string) (*RemoteToolset, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}
	return newRemoteToolsetFromClient(ctx, c)
}

// NewRemoteToolsetSSE connects to an MCP server via SSE.
func NewRemoteToolsetSSE(ctx context.Context, baseURL string) (*RemoteToolset, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}
	return newRemoteToolsetFromClient(ctx, c)
}

// NewRemoteToolsetHTTP connects to an MCP server via streamable HTTP.
func NewRemoteToolsetHTTP(ctx context.Context, baseURL string) (*RemoteToolset, error) {
	c, err := client.NewStreamableHttpClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP MCP client: %w", err)
	}
	return newRemoteToolsetFromClient(ctx, c)
}

// NewRemoteToolsetFromClient creates a RemoteToolset from an existing MCP
// client. It starts and initializes the client, then fetches the tools.
func NewRemoteToolsetFromClient(ctx context.Context, c *client.Client) (*RemoteToolset, error) {
	return newRemoteToolsetFromClient(ctx, c)
}

func newRemoteToolsetFromClient(ctx context.Context, c *client.Client) (*RemoteToolset, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "a2ui-mcp-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	r := &RemoteToolset{
		client: c,
		tools:  make(map[string]a2ui.Tool),
	}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection to the MCP server.
func (r *RemoteToolset) Close() error {
	return r.client.Close()
}

// Refresh fetches the current list of tools from the MCP server.
func (r *RemoteToolset) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools = make(map[string]a2ui.Tool, len(result.Tools))
	for _, t := range result.Tools {
		r.tools[t.Name] = FromMCPTool(t)
	}
	return nil
}

// Tools returns the server's tools sorted by name.
func (r *RemoteToolset) Tools(context.Context, tool.ReadonlyContext) ([]tool.Tool, error) {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, &remoteTool{decl: r.tools[name], toolset: r})
	}
	return tools, nil
}

// Names returns the names of all available tools, sorted.
func (r *RemoteToolset) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of available tools.
func (r *RemoteToolset) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Has reports whether the server offers a tool with the given name.
func (r *RemoteToolset) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Call invokes a tool on the MCP server. Transport failures are reported
// in the result like tool failures.
func (r *RemoteToolset) Call(ctx context.Context, name string, args map[string]any) map[string]any {
	result, err := r.client.CallTool(ctx, ToMCPCallToolRequest(name, args))
	if err != nil {
		return map[string]any{a2ui.ErrorKey: err.Error()}
	}
	return FromMCPCallToolResult(result)
}

type remoteTool struct {
	decl    a2ui.Tool
	toolset *RemoteToolset
}

func (t *remoteTool) Declaration() a2ui.Tool { return t.decl }

func (t *remoteTool) Invoke(ctx context.Context, _ *tool.Context, args map[string]any) map[string]any {
	return t.toolset.Call(ctx, t.decl.Name, args)
}
