// Package provider selects and configures the model SDK that backs an agent.
//
// A Model generates one response for a request assembled by the agent loop.
// Calls are retried on transient failures:
//
//	m, err := provider.New(ctx, provider.Config{
//	    Model:   model.DefaultGeminiModel,
//	    APIKeys: provider.APIKeys{Google: os.Getenv("GOOGLE_API_KEY")},
//	})
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/internal/provider/anthropic"
	"github.com/spetersoncode/a2ui/internal/provider/google"
	"github.com/spetersoncode/a2ui/internal/provider/openai"
	"github.com/spetersoncode/a2ui/internal/retry"
	"github.com/spetersoncode/a2ui/model"
)

// Model generates a response for a request.
type Model interface {
	Generate(ctx context.Context, req *model.Request) (*model.Response, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, req *model.Request) (*model.Response, error)

// Generate calls f.
func (f ModelFunc) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	return f(ctx, req)
}

// APIKeys holds provider credentials.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// Config selects a model and its credentials.
type Config struct {
	Model     model.ChatModel
	APIKeys   APIKeys
	MaxTokens int64
	// MaxAttempts bounds retries of transient failures. 0 uses the default.
	MaxAttempts int
	Logger      *slog.Logger
}

// ErrMissingAPIKey is returned when the selected provider has no key.
var ErrMissingAPIKey = errors.New("provider: missing API key")

// New creates the Model for cfg.Model, wrapped with retries.
func New(ctx context.Context, cfg Config) (Model, error) {
	var (
		m   Model
		err error
	)
	switch p := cfg.Model.Provider(); p {
	case model.ProviderAnthropic:
		if cfg.APIKeys.Anthropic == "" {
			return nil, a2ui.NewConfigurationError(string(p), ErrMissingAPIKey)
		}
		opts := []anthropic.ClientOption{anthropic.WithModel(cfg.Model.String())}
		if cfg.MaxTokens > 0 {
			opts = append(opts, anthropic.WithMaxTokens(cfg.MaxTokens))
		}
		m = anthropic.New(cfg.APIKeys.Anthropic, opts...)
	case model.ProviderOpenAI:
		if cfg.APIKeys.OpenAI == "" {
			return nil, a2ui.NewConfigurationError(string(p), ErrMissingAPIKey)
		}
		m = openai.New(cfg.APIKeys.OpenAI, openai.WithModel(cfg.Model.String()))
	case model.ProviderGoogle:
		if cfg.APIKeys.Google == "" {
			return nil, a2ui.NewConfigurationError(string(p), ErrMissingAPIKey)
		}
		m, err = google.New(ctx, cfg.APIKeys.Google, google.WithModel(cfg.Model.String()))
		if err != nil {
			return nil, a2ui.NewConfigurationError("create google client", err)
		}
	default:
		return nil, a2ui.NewConfigurationError(fmt.Sprintf("unknown provider %q for model %s", p, cfg.Model), nil)
	}

	rc := retry.DefaultConfig()
	if cfg.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.MaxAttempts
	}
	return withRetry(m, rc, cfg.Logger), nil
}

// withRetry wraps m so transient failures are retried per cfg.
func withRetry(m Model, cfg retry.Config, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("retrying model call", "attempt", attempt, "delay", delay, "error", err)
	}
	return ModelFunc(func(ctx context.Context, req *model.Request) (*model.Response, error) {
		return retry.Do(ctx, cfg, func(ctx context.Context) (*model.Response, error) {
			return m.Generate(ctx, req)
		})
	})
}
