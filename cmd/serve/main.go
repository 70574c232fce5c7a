// Command serve runs an A2UI-capable agent over both A2A and AG-UI.
//
// In agent mode it serves a contact lookup agent that can answer with rich
// UI: clients that activate the A2UI extension get a catalog negotiated
// from their capabilities, and the agent validates every UI message
// against it before sending. In orchestrator mode it fronts remote A2A
// agents, routing each request, and every UI event, to the agent that owns
// it.
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	A2UI_PORT              - Server port (default: 10002)
//	A2UI_BASE_URL          - Public URL advertised on the card (default: http://localhost:$A2UI_PORT)
//	A2UI_LOG_LEVEL         - debug, info, warn, or error (default: info)
//	A2UI_MODE              - agent or orchestrator (default: agent)
//	A2UI_MODEL             - Model id (default: gemini-2.5-flash)
//	A2UI_PROVIDER          - Provider for model ids not known to the model package
//	A2UI_CATALOG_MANIFEST  - Catalog manifest (required in agent mode)
//	A2UI_SUBAGENTS         - Comma-separated sub-agent URLs (required in orchestrator mode)
//	A2UI_MCP_SERVERS       - Comma-separated streamable HTTP MCP server URLs
//	A2UI_DEMO_TOOLS        - Enable the demo contact tools (default: true)
//	A2UI_MAX_STEPS         - Max agent iterations (default: 10)
//	A2UI_TIMEOUT           - Agent timeout (default: 2m)
//	A2UI_SESSION_TTL       - Redis session expiry (default: 24h)
//	REDIS_ADDR             - Keep sessions in Redis instead of memory
//	REDIS_PASSWORD, REDIS_DB
//	ANTHROPIC_API_KEY, OPENAI_API_KEY, GOOGLE_API_KEY
//
// Usage:
//
//	GOOGLE_API_KEY=... A2UI_CATALOG_MANIFEST=./catalog/testdata/manifest.yaml go run ./cmd/serve
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/agent"
	"github.com/spetersoncode/a2ui/agui"
	"github.com/spetersoncode/a2ui/catalog"
	"github.com/spetersoncode/a2ui/executor"
	"github.com/spetersoncode/a2ui/extension"
	"github.com/spetersoncode/a2ui/mcp"
	"github.com/spetersoncode/a2ui/orchestrator"
	"github.com/spetersoncode/a2ui/provider"
	"github.com/spetersoncode/a2ui/route"
	"github.com/spetersoncode/a2ui/session"
	"github.com/spetersoncode/a2ui/tool"
)

const contactInstruction = `You are a helpful contact lookup assistant. Use get_contact_info to find
people in the company directory. When the client supports UI, present the
results as a contact card or a list of contacts; otherwise answer in text.`

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	chat, err := cfg.ChatModel()
	if err != nil {
		return err
	}
	m, err := provider.New(ctx, provider.Config{
		Model: chat,
		APIKeys: provider.APIKeys{
			Anthropic: cfg.AnthropicKey,
			OpenAI:    cfg.OpenAIKey,
			Google:    cfg.GoogleKey,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	sessions := newSessions(cfg, logger)

	var a2aHandler, aguiHandler http.Handler
	switch cfg.Mode {
	case ModeOrchestrator:
		o, err := orchestrator.Build(ctx, orchestrator.Config{
			BaseURL:      cfg.BaseURL,
			SubAgentURLs: cfg.SubAgents,
			Model:        m,
			Logger:       logger,
		})
		if err != nil {
			return err
		}
		a2aHandler = a2a.NewHandler(o.Card, o.Executor(sessions), a2a.WithHandlerLogger(logger))
		aguiHandler = agui.NewHandler(o.Agent, sessions,
			agui.WithPreparer(executor.ForwardUI()),
			agui.WithRecorder(route.NewRecorder(logger)),
			agui.WithLogger(logger),
		)

	default:
		catalogs, err := catalog.LoadManifest(cfg.CatalogManifest)
		if err != nil {
			return err
		}
		negotiator := catalog.NewNegotiator(catalogs, catalog.WithLogger(logger))

		toolsets := []tool.Toolset{executor.NewUIToolset(tool.WithLogger(logger))}
		if cfg.EnableDemoTools {
			toolsets = append(toolsets, tool.StaticToolset(DemoTools()))
		}
		for _, url := range cfg.MCPServers {
			remote, err := mcp.NewRemoteToolsetHTTP(ctx, url)
			if err != nil {
				return err
			}
			defer remote.Close()
			logger.Info("connected MCP server", "url", url, "tools", remote.Names())
			toolsets = append(toolsets, remote)
		}

		a := agent.NewLLM("contact_agent", m,
			agent.WithDescription("Finds colleagues in the company directory and shows their contact details."),
			agent.WithInstruction(contactInstruction),
			agent.WithToolsets(toolsets...),
			agent.WithMaxSteps(cfg.MaxSteps),
			agent.WithTimeout(cfg.Timeout),
			agent.WithLogger(logger),
		)
		preparer := executor.Chain(executor.BaseURL(cfg.BaseURL), executor.NewUIPreparer(negotiator, logger))

		a2aHandler = a2a.NewHandler(contactCard(cfg, catalogs),
			executor.New(a, sessions, executor.WithPreparer(preparer), executor.WithLogger(logger)),
			a2a.WithHandlerLogger(logger),
		)
		aguiHandler = agui.NewHandler(a, sessions, agui.WithPreparer(preparer), agui.WithLogger(logger))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/agent", corsMiddleware(aguiHandler))
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/", corsMiddleware(a2aHandler))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting",
		"mode", cfg.Mode,
		"model", chat.String(),
		"a2a", cfg.BaseURL,
		"agui", cfg.BaseURL+"/api/agent",
	)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newSessions(cfg *Config, logger *slog.Logger) session.Service {
	if cfg.RedisAddr == "" {
		return session.NewMemoryService()
	}
	logger.Info("using redis sessions", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	client := session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	return session.NewRedisService(client, session.WithTTL(cfg.SessionTTL))
}

func contactCard(cfg *Config, catalogs *catalog.Catalogs) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               "Contact Lookup Agent",
		Description:        "Finds colleagues in the company directory and shows their contact details.",
		URL:                cfg.BaseURL,
		Version:            "1.0.0",
		ProtocolVersion:    a2a.ProtocolVersion,
		DefaultInputModes:  orchestrator.ContentTypes,
		DefaultOutputModes: orchestrator.ContentTypes,
		Capabilities: a2a.AgentCapabilities{
			Streaming:  true,
			Extensions: []a2a.AgentExtension{extension.AgentExtension(catalogs.IDs(), true)},
		},
		Skills: []a2a.AgentSkill{{
			ID:          "find_contact",
			Name:        "Find Contact Tool",
			Description: "Helps find contact information for colleagues (e.g., email, location, team).",
			Tags:        []string{"contact", "directory", "people", "finder"},
			Examples:    []string{"Who is David Chen in marketing?", "Find Sarah Lee from engineering"},
		}},
	}
}
