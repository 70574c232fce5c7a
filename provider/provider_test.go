package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/internal/retry"
	"github.com/spetersoncode/a2ui/model"
)

func TestNew_MissingKey(t *testing.T) {
	for _, m := range []model.ChatModel{model.DefaultClaudeModel, model.DefaultGPTModel, model.DefaultGeminiModel} {
		t.Run(string(m.Provider()), func(t *testing.T) {
			_, err := New(context.Background(), Config{Model: m})
			require.Error(t, err)
			assert.True(t, a2ui.IsConfiguration(err))
			assert.True(t, errors.Is(err, ErrMissingAPIKey))
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Model: model.Custom("x", "acme")})
	assert.True(t, a2ui.IsConfiguration(err))
}

func TestNew_AnthropicAndOpenAI(t *testing.T) {
	m, err := New(context.Background(), Config{
		Model:   model.DefaultClaudeModel,
		APIKeys: APIKeys{Anthropic: "test-key"},
	})
	require.NoError(t, err)
	assert.NotNil(t, m)

	m, err = New(context.Background(), Config{
		Model:   model.DefaultGPTModel,
		APIKeys: APIKeys{OpenAI: "test-key"},
	})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestWithRetry(t *testing.T) {
	cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	want := &model.Response{Content: genai.NewContentFromText("ok", genai.RoleModel)}

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		m := withRetry(ModelFunc(func(ctx context.Context, req *model.Request) (*model.Response, error) {
			calls++
			if calls < 3 {
				return nil, a2ui.NewTransientError("overloaded", 529, nil)
			}
			return want, nil
		}), cfg, nil)

		got, err := m.Generate(context.Background(), &model.Request{})
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		m := withRetry(ModelFunc(func(ctx context.Context, req *model.Request) (*model.Response, error) {
			calls++
			return nil, a2ui.NewPermanentError("bad request", 400, nil)
		}), cfg, nil)

		_, err := m.Generate(context.Background(), &model.Request{})
		assert.True(t, a2ui.IsPermanent(err))
		assert.Equal(t, 1, calls)
	})
}
