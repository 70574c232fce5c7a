package part

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
)

func beginRendering(surfaceID string) map[string]any {
	return map[string]any{"beginRendering": map[string]any{"surfaceId": surfaceID, "root": "root"}}
}

func TestNew(t *testing.T) {
	p := New(beginRendering("s1"))
	assert.Equal(t, "data", p.Kind)
	assert.Equal(t, a2ui.MIMEType, p.Metadata[a2ui.MIMETypeKey])
	assert.True(t, IsUI(p))

	kind, ok := Kind(p)
	require.True(t, ok)
	assert.Equal(t, a2ui.KindBeginRendering, kind)

	msg, ok := Message(p)
	require.True(t, ok)
	assert.Equal(t, "s1", msg.SurfaceID())
}

func TestIsUI(t *testing.T) {
	tests := []struct {
		name string
		part a2a.Part
		want bool
	}{
		{"tagged UI message", New(beginRendering("s")), true},
		{"untagged UI message", a2a.NewDataPart(beginRendering("s")), true},
		{"pointer data part", ptr(a2a.NewDataPart(beginRendering("s"))), true},
		{"user action", a2a.NewDataPart(map[string]any{"userAction": map[string]any{"name": "click"}}), true},
		{"tag without UI shape", a2a.NewDataPartWithMetadata(map[string]any{"a": 1}, map[string]any{a2ui.MIMETypeKey: a2ui.MIMEType}), false},
		{"two envelope keys", a2a.NewDataPart(map[string]any{"beginRendering": map[string]any{"surfaceId": "s"}, "x": 1}), false},
		{"missing surface id", a2a.NewDataPart(map[string]any{"surfaceUpdate": map[string]any{}}), false},
		{"text part", a2a.NewTextPart(`{"beginRendering":{"surfaceId":"s"}}`), false},
		{"nil pointer", (*a2a.DataPart)(nil), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUI(tt.part))
		})
	}
}

func ptr(p a2a.DataPart) *a2a.DataPart { return &p }

func TestToModel(t *testing.T) {
	t.Run("UI part becomes its JSON text", func(t *testing.T) {
		wire := New(beginRendering("s1"))
		got := ToModel(wire)
		require.NotNil(t, got)
		want, err := json.Marshal(wire)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), got.Text)
	})

	t.Run("other parts use the fallback", func(t *testing.T) {
		got := ToModel(a2a.NewTextPart("hello"))
		require.NotNil(t, got)
		assert.Equal(t, "hello", got.Text)
	})

	t.Run("custom fallback", func(t *testing.T) {
		c := &Converter{ToModelFallback: func(a2a.Part) *genai.Part { return genai.NewPartFromText("custom") }}
		assert.Equal(t, "custom", c.ToModel(a2a.NewTextPart("x")).Text)
	})
}

func TestToWire(t *testing.T) {
	msgs := []any{
		beginRendering("s1"),
		map[string]any{"surfaceUpdate": map[string]any{"surfaceId": "s1", "components": []any{}}},
	}

	t.Run("tool result yields one part per message", func(t *testing.T) {
		p := genai.NewPartFromFunctionResponse(a2ui.ToolName, map[string]any{a2ui.ResultKey: msgs})
		got := ToWire(p)
		require.Len(t, got, 2)
		for i, m := range msgs {
			assert.Equal(t, New(m), got[i])
		}
	})

	t.Run("tool error yields nothing", func(t *testing.T) {
		p := genai.NewPartFromFunctionResponse(a2ui.ToolName, map[string]any{a2ui.ErrorKey: "bad"})
		assert.Empty(t, ToWire(p))
	})

	t.Run("empty result yields nothing", func(t *testing.T) {
		p := genai.NewPartFromFunctionResponse(a2ui.ToolName, map[string]any{})
		assert.Empty(t, ToWire(p))
	})

	t.Run("raw tool call yields nothing", func(t *testing.T) {
		p := genai.NewPartFromFunctionCall(a2ui.ToolName, map[string]any{a2ui.ToolArgName: "[]"})
		assert.Empty(t, ToWire(p))
	})

	t.Run("other tool response uses the fallback", func(t *testing.T) {
		p := genai.NewPartFromFunctionResponse("lookup", map[string]any{"ok": true})
		got := ToWire(p)
		require.Len(t, got, 1)
		_, ok := got[0].(a2a.DataPart)
		assert.True(t, ok)
	})

	t.Run("stashed UI part is restored", func(t *testing.T) {
		wire := New(beginRendering("s1"))
		got := ToWire(ToModel(wire))
		require.Len(t, got, 1)
		assert.True(t, IsUI(got[0]))
		assert.Equal(t, "s1", mustMessage(t, got[0]).SurfaceID())
	})

	t.Run("JSON text that is not a UI part stays text", func(t *testing.T) {
		got := ToWire(genai.NewPartFromText(`{"kind":"data","data":{"a":1}}`))
		require.Len(t, got, 1)
		_, ok := got[0].(a2a.TextPart)
		assert.True(t, ok)
	})

	t.Run("plain text", func(t *testing.T) {
		got := ToWire(genai.NewPartFromText("hello"))
		require.Len(t, got, 1)
		assert.Equal(t, a2a.NewTextPart("hello"), got[0])
	})

	t.Run("nothing to convert", func(t *testing.T) {
		assert.Empty(t, ToWire(nil))
		assert.Empty(t, ToWire(&genai.Part{}))
	})
}

func mustMessage(t *testing.T, p a2a.Part) a2ui.Message {
	t.Helper()
	m, ok := Message(p)
	require.True(t, ok)
	return m
}
