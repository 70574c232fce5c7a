package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spetersoncode/a2ui/model"
)

// Server modes.
const (
	ModeAgent        = "agent"
	ModeOrchestrator = "orchestrator"
)

// Config holds the server configuration loaded from environment variables.
type Config struct {
	// Server
	Port     string
	BaseURL  string
	LogLevel string // debug, info, warn, error

	// Mode selects a UI agent or an orchestrator of remote agents.
	Mode string

	// Model selection
	Model    string
	Provider string // for model ids not known to the model package

	// API Keys
	AnthropicKey string
	OpenAIKey    string
	GoogleKey    string

	// UI catalogs
	CatalogManifest string

	// Orchestrator
	SubAgents []string

	// MCP servers whose tools the agent may call
	MCPServers []string

	// Sessions are kept in Redis when RedisAddr is set, in memory otherwise.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// Agent config
	MaxSteps        int
	Timeout         time.Duration
	EnableDemoTools bool
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load()

	port := getEnvOrDefault("A2UI_PORT", "10002")
	cfg := &Config{
		Port:            port,
		BaseURL:         getEnvOrDefault("A2UI_BASE_URL", "http://localhost:"+port),
		LogLevel:        getEnvOrDefault("A2UI_LOG_LEVEL", "info"),
		Mode:            getEnvOrDefault("A2UI_MODE", ModeAgent),
		Model:           getEnvOrDefault("A2UI_MODEL", model.DefaultGeminiModel.String()),
		Provider:        os.Getenv("A2UI_PROVIDER"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		GoogleKey:       os.Getenv("GOOGLE_API_KEY"),
		CatalogManifest: os.Getenv("A2UI_CATALOG_MANIFEST"),
		SubAgents:       getEnvList("A2UI_SUBAGENTS"),
		MCPServers:      getEnvList("A2UI_MCP_SERVERS"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvIntOrDefault("REDIS_DB", 0),
		SessionTTL:      getEnvDurationOrDefault("A2UI_SESSION_TTL", 24*time.Hour),
		MaxSteps:        getEnvIntOrDefault("A2UI_MAX_STEPS", 10),
		Timeout:         getEnvDurationOrDefault("A2UI_TIMEOUT", 2*time.Minute),
		EnableDemoTools: getEnvBoolOrDefault("A2UI_DEMO_TOOLS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAgent:
		if c.CatalogManifest == "" {
			return fmt.Errorf("A2UI_CATALOG_MANIFEST is required in agent mode")
		}
	case ModeOrchestrator:
		if len(c.SubAgents) == 0 {
			return fmt.Errorf("A2UI_SUBAGENTS is required in orchestrator mode")
		}
	default:
		return fmt.Errorf("unknown mode: %s (must be agent or orchestrator)", c.Mode)
	}

	m, err := c.ChatModel()
	if err != nil {
		return err
	}
	switch m.Provider() {
	case model.ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for %s", m)
		}
	case model.ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for %s", m)
		}
	case model.ProviderGoogle:
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for %s", m)
		}
	}

	return nil
}

// ChatModel resolves the configured model.
func (c *Config) ChatModel() (model.ChatModel, error) {
	if m, ok := model.Lookup(c.Model); ok {
		return m, nil
	}
	switch p := model.Provider(c.Provider); p {
	case model.ProviderAnthropic, model.ProviderOpenAI, model.ProviderGoogle:
		return model.Custom(c.Model, p), nil
	case "":
		return model.ChatModel{}, fmt.Errorf("unknown model %s: set A2UI_PROVIDER (anthropic, openai, or google)", c.Model)
	default:
		return model.ChatModel{}, fmt.Errorf("unknown provider: %s (must be anthropic, openai, or google)", c.Provider)
	}
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
