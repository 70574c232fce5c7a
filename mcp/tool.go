// Package mcp bridges tools and MCP (Model Context Protocol).
//
// It works in both directions:
//
//   - Server: expose a [tool.Registry] as an MCP server. Registering the UI
//     tool lets any MCP client validate UI messages against a catalog, and
//     [WithSchema] publishes the wrapped schema as a resource.
//   - Client: connect to an MCP server and offer its tools to agents
//     through [RemoteToolset].
//
// # Exposing Tools as an MCP Server
//
//	registry := tool.NewRegistry().Add(
//	    tool.NewSendUITool(tool.Static(schema)),
//	)
//
//	if err := mcp.ServeStdio(registry, mcp.WithSchema(schema)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Consuming MCP Servers
//
//	remote, err := mcp.NewRemoteToolsetSSE(ctx, "http://localhost:8080/mcp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//
//	a := agent.NewLLM("assistant", model, agent.WithToolsets(remote))
package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/tool"
)

// ToMCPTool converts a tool's declaration to an MCP Tool.
// The declared parameters are used as the MCP Tool's RawInputSchema.
func ToMCPTool(t tool.Tool) mcp.Tool {
	decl := t.Declaration()
	return mcp.NewToolWithRawSchema(decl.Name, decl.Description, decl.Parameters)
}

// ToMCPTools converts a slice of tools to MCP Tools.
func ToMCPTools(tools []tool.Tool) []mcp.Tool {
	result := make([]mcp.Tool, len(tools))
	for i, t := range tools {
		result[i] = ToMCPTool(t)
	}
	return result
}

// FromMCPTool converts an MCP Tool to a tool declaration.
// It extracts the JSON schema from either RawInputSchema or InputSchema.
func FromMCPTool(t mcp.Tool) a2ui.Tool {
	var schema json.RawMessage

	if len(t.RawInputSchema) > 0 {
		schema = t.RawInputSchema
	} else {
		data, err := json.Marshal(t.InputSchema)
		if err == nil {
			schema = data
		}
	}

	return a2ui.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// ToMCPCallToolRequest builds an MCP call of the named tool.
func ToMCPCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	if args == nil {
		args = map[string]any{}
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// ToMCPCallToolResult converts a tool result to an MCP result. A result
// carrying an error becomes an error result; anything else is returned as
// structured content with a JSON text fallback.
func ToMCPCallToolResult(result map[string]any) *mcp.CallToolResult {
	if msg, failed := result[a2ui.ErrorKey]; failed {
		return mcp.NewToolResultError(fmt.Sprint(msg))
	}
	if result == nil {
		result = map[string]any{}
	}
	return mcp.NewToolResultStructuredOnly(result)
}

// FromMCPCallToolResult converts an MCP result to a tool result.
// Structured content is used as is; text content that holds a JSON object
// is decoded, and other text is returned under "result".
func FromMCPCallToolResult(result *mcp.CallToolResult) map[string]any {
	if result == nil {
		return map[string]any{a2ui.ErrorKey: "empty MCP result"}
	}

	text := resultText(result)
	if result.IsError {
		return map[string]any{a2ui.ErrorKey: text}
	}

	if obj, ok := result.StructuredContent.(map[string]any); ok {
		return obj
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"result": text}
}

// resultText concatenates the text of an MCP result.
func resultText(result *mcp.CallToolResult) string {
	var textParts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			textParts = append(textParts, content.Text)
		case *mcp.TextContent:
			textParts = append(textParts, content.Text)
		default:
			// non-text content is passed on as JSON
			if data, err := json.Marshal(content); err == nil {
				textParts = append(textParts, string(data))
			}
		}
	}
	return strings.Join(textParts, "\n")
}
