// Command mcp serves the A2UI tool to MCP clients.
//
// The send_a2ui_json_to_client tool validates UI messages against the schema
// composed from the manifest's default catalog, and the wrapped schema is
// published as a resource so clients can prompt with it. Without
// A2UI_MCP_ADDR the server speaks MCP over stdin/stdout; with it, the
// streamable HTTP transport is served on that address.
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	A2UI_CATALOG_MANIFEST  - Catalog manifest (required)
//	A2UI_MCP_ADDR          - Listen address for streamable HTTP, e.g. :8090
//	A2UI_LOG_LEVEL         - debug, info, warn, or error (default: info)
//
// Configuration for Claude Desktop (~/Library/Application Support/Claude/claude_desktop_config.json):
//
//	{
//	    "mcpServers": {
//	        "a2ui": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/a2ui",
//	            "env": {"A2UI_CATALOG_MANIFEST": "./catalog/testdata/manifest.yaml"}
//	        }
//	    }
//	}
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spetersoncode/a2ui/catalog"
	"github.com/spetersoncode/a2ui/mcp"
	"github.com/spetersoncode/a2ui/schema"
	"github.com/spetersoncode/a2ui/tool"
)

func main() {
	godotenv.Load()

	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("A2UI_LOG_LEVEL"))); err != nil {
		level = slog.LevelInfo
	}
	// stdout carries the protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	path := os.Getenv("A2UI_CATALOG_MANIFEST")
	if path == "" {
		return fmt.Errorf("A2UI_CATALOG_MANIFEST is required")
	}
	catalogs, err := catalog.LoadManifest(path)
	if err != nil {
		return err
	}
	res, err := catalog.NewNegotiator(catalogs, catalog.WithLogger(logger)).Resolve(nil)
	if err != nil {
		return err
	}

	registry := tool.NewRegistry().Add(
		tool.NewSendUITool(tool.Static(res.Schema), tool.WithLogger(logger)),
		tool.Func("time", "Get the current time", timeParams, timeHandler),
	)
	opts := []mcp.ServerOption{
		mcp.WithName("a2ui-mcp"),
		mcp.WithVersion("1.0.0"),
		mcp.WithSchema(res.Schema),
		mcp.WithLogger(logger),
	}

	if addr := os.Getenv("A2UI_MCP_ADDR"); addr != "" {
		logger.Info("serving MCP over HTTP", "addr", addr, "catalog", res.CatalogID)
		return mcp.ServeHTTP(addr, registry, opts...)
	}
	logger.Info("serving MCP over stdio", "catalog", res.CatalogID)
	return mcp.ServeStdio(registry, opts...)
}

type timeArgs struct {
	Format string `json:"format"`
}

var timeParams = schema.Object().
	Field("format", schema.String().Desc("Time format: rfc3339, unix, or human").Enum("rfc3339", "unix", "human")).
	MustBuild()

// timeHandler gives UI messages something live to show.
func timeHandler(_ context.Context, _ *tool.Context, args timeArgs) (map[string]any, error) {
	now := time.Now()
	switch strings.ToLower(args.Format) {
	case "rfc3339":
		return map[string]any{"time": now.Format(time.RFC3339)}, nil
	case "unix":
		return map[string]any{"time": now.Unix()}, nil
	default:
		return map[string]any{"time": now.Format("Monday, January 2, 2006 at 3:04 PM MST")}, nil
	}
}
