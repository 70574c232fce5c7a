package tool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/model"
	"github.com/spetersoncode/a2ui/schema"
	"github.com/spetersoncode/a2ui/session"
)

// textSchema accepts {"type":"Text","text":"..."} messages.
var textSchema = schema.Object().
	Field("type", schema.String().Required()).
	Field("text", schema.String().Required()).
	MustBuild()

func newTC() *Context {
	return NewContext("agent", "e-1", session.State{})
}

func TestProviders(t *testing.T) {
	ctx := context.Background()

	v, err := Static(true).Resolve(ctx, nil)
	require.NoError(t, err)
	assert.True(t, v)

	st := session.State{}.Apply(map[string]json.RawMessage{"flag": json.RawMessage("true")})
	computed := ProviderFunc[bool](func(ctx context.Context, rc ReadonlyContext) (bool, error) {
		return rc.State().GetBool("flag"), nil
	})
	v, err = computed.Resolve(ctx, NewContext("a", "i", st))
	require.NoError(t, err)
	assert.True(t, v)

	failing := ProviderFunc[bool](func(context.Context, ReadonlyContext) (bool, error) {
		return false, errors.New("boom")
	})
	_, err = failing.Resolve(ctx, newTC())
	assert.EqualError(t, err, "boom")
}

func TestSendUITool_Declaration(t *testing.T) {
	decl := NewSendUITool(Static(textSchema)).Declaration()
	assert.Equal(t, a2ui.ToolName, decl.Name)
	assert.Contains(t, decl.Description, a2ui.SchemaBeginMarker)
	assert.Contains(t, decl.Description, a2ui.SchemaEndMarker)
	assert.Equal(t, "string", gjson.GetBytes(decl.Parameters, "properties.a2ui_json.type").String())
	assert.Equal(t, `["a2ui_json"]`, gjson.GetBytes(decl.Parameters, "required").Raw)
}

func TestSendUITool_BeforeModelTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("appends wrapped schema between markers", func(t *testing.T) {
		req := &model.Request{}
		err := NewSendUITool(Static(textSchema)).BeforeModelTurn(ctx, newTC(), req)
		require.NoError(t, err)
		require.Len(t, req.Instructions, 1)

		instr := req.Instructions[0]
		assert.True(t, strings.HasPrefix(instr, "\n"+a2ui.SchemaBeginMarker+"\n"))
		assert.True(t, strings.HasSuffix(instr, "\n"+a2ui.SchemaEndMarker+"\n"))

		body := strings.TrimSuffix(strings.TrimPrefix(instr, "\n"+a2ui.SchemaBeginMarker+"\n"), "\n"+a2ui.SchemaEndMarker+"\n")
		wrapped, err := schema.Wrap(textSchema)
		require.NoError(t, err)
		assert.JSONEq(t, string(wrapped), body)
	})

	t.Run("empty schema is a configuration error", func(t *testing.T) {
		err := NewSendUITool(Static(json.RawMessage(`{}`))).BeforeModelTurn(ctx, newTC(), &model.Request{})
		assert.True(t, a2ui.IsConfiguration(err))
	})

	t.Run("provider error", func(t *testing.T) {
		p := ProviderFunc[json.RawMessage](func(context.Context, ReadonlyContext) (json.RawMessage, error) {
			return nil, errors.New("no schema")
		})
		err := NewSendUITool(p).BeforeModelTurn(ctx, newTC(), &model.Request{})
		assert.EqualError(t, err, "no schema")
	})
}

func TestSendUITool_Invoke(t *testing.T) {
	ctx := context.Background()
	tool := NewSendUITool(Static(textSchema))
	prefix := "Failed to call A2UI tool " + a2ui.ToolName + ": "

	t.Run("valid list", func(t *testing.T) {
		tc := newTC()
		got := tool.Invoke(ctx, tc, map[string]any{a2ui.ToolArgName: `[{"type":"Text","text":"Hello"}]`})
		require.NotContains(t, got, a2ui.ErrorKey)
		assert.Equal(t, []any{map[string]any{"type": "Text", "text": "Hello"}}, got[a2ui.ResultKey])
		assert.True(t, tc.Actions.SkipSummarization)
	})

	t.Run("bare object is promoted", func(t *testing.T) {
		bare := tool.Invoke(ctx, newTC(), map[string]any{a2ui.ToolArgName: `{"type":"Text","text":"Hello"}`})
		list := tool.Invoke(ctx, newTC(), map[string]any{a2ui.ToolArgName: `[{"type":"Text","text":"Hello"}]`})
		assert.Equal(t, list, bare)
	})

	t.Run("missing argument", func(t *testing.T) {
		for _, args := range []map[string]any{{}, {a2ui.ToolArgName: ""}, {a2ui.ToolArgName: 42}} {
			tc := newTC()
			got := tool.Invoke(ctx, tc, args)
			require.Contains(t, got, a2ui.ErrorKey)
			assert.NotContains(t, got, a2ui.ResultKey)
			assert.Equal(t, prefix+ErrMissingPayload.Error(), got[a2ui.ErrorKey])
			assert.False(t, tc.Actions.SkipSummarization)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		got := tool.Invoke(ctx, newTC(), map[string]any{a2ui.ToolArgName: `[{"type":`})
		msg, _ := got[a2ui.ErrorKey].(string)
		assert.True(t, strings.HasPrefix(msg, prefix+"invalid JSON"), msg)
	})

	t.Run("schema violation names the field", func(t *testing.T) {
		tc := newTC()
		got := tool.Invoke(ctx, tc, map[string]any{a2ui.ToolArgName: `{"type":"Text"}`})
		msg, _ := got[a2ui.ErrorKey].(string)
		assert.True(t, strings.HasPrefix(msg, prefix+"schema validation failed: "), msg)
		assert.Contains(t, msg, "text")
		assert.NotContains(t, got, a2ui.ResultKey)
		assert.False(t, tc.Actions.SkipSummarization)
	})

	t.Run("empty schema is reported, not raised", func(t *testing.T) {
		got := NewSendUITool(Static(json.RawMessage(`{}`))).Invoke(ctx, newTC(), map[string]any{a2ui.ToolArgName: `[]`})
		assert.Equal(t, prefix+"A2UI schema is empty", got[a2ui.ErrorKey])
	})

	t.Run("nil context", func(t *testing.T) {
		got := tool.Invoke(ctx, nil, map[string]any{a2ui.ToolArgName: `[]`})
		assert.Equal(t, []any{}, got[a2ui.ResultKey])
	})
}

type recordingValidator struct {
	violations []schema.Violation
	calls      int
}

func (v *recordingValidator) Validate(instance any, s json.RawMessage) ([]schema.Violation, error) {
	v.calls++
	return v.violations, nil
}

func TestSendUITool_InjectedValidator(t *testing.T) {
	v := &recordingValidator{violations: []schema.Violation{
		{Location: "/0", Message: "first"},
		{Location: "/1", Message: "second"},
	}}
	got := NewSendUITool(Static(textSchema), WithValidator(v)).
		Invoke(context.Background(), newTC(), map[string]any{a2ui.ToolArgName: `[]`})

	assert.Equal(t, 1, v.calls)
	assert.Equal(t, "Failed to call A2UI tool send_a2ui_json_to_client: schema validation failed: at '/0': first", got[a2ui.ErrorKey])
}

func TestUIToolset(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled", func(t *testing.T) {
		tools, err := NewUIToolset(Static(true), Static(textSchema)).Tools(ctx, newTC())
		require.NoError(t, err)
		require.Len(t, tools, 1)
		assert.Equal(t, a2ui.ToolName, tools[0].Declaration().Name)
	})

	t.Run("disabled", func(t *testing.T) {
		tools, err := NewUIToolset(Static(false), Static(textSchema)).Tools(ctx, newTC())
		require.NoError(t, err)
		assert.Empty(t, tools)
	})

	t.Run("nil context is disabled", func(t *testing.T) {
		called := false
		enabled := ProviderFunc[bool](func(context.Context, ReadonlyContext) (bool, error) {
			called = true
			return true, nil
		})
		tools, err := NewUIToolset(enabled, Static(textSchema)).Tools(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, tools)
		assert.False(t, called)
	})

	t.Run("provider error", func(t *testing.T) {
		enabled := ProviderFunc[bool](func(context.Context, ReadonlyContext) (bool, error) {
			return false, errors.New("state unavailable")
		})
		_, err := NewUIToolset(enabled, Static(textSchema)).Tools(ctx, newTC())
		assert.Error(t, err)
	})
}

type lookupArgs struct {
	Query string `json:"query"`
}

var lookupParams = schema.Object().Field("query", schema.String().Required()).MustBuild()

func lookupTool(name string) Tool {
	return Func(name, "Look things up", lookupParams,
		func(ctx context.Context, tc *Context, args lookupArgs) (map[string]any, error) {
			if args.Query == "" {
				return nil, errors.New("empty query")
			}
			return map[string]any{"result": "found " + args.Query}, nil
		})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("add and lookup", func(t *testing.T) {
		r := NewRegistry().Add(lookupTool("b"), lookupTool("a"))
		assert.Equal(t, 2, r.Len())
		assert.Equal(t, []string{"a", "b"}, r.Names())
		_, ok := r.Get("a")
		assert.True(t, ok)

		tools, err := r.Tools(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "a", tools[0].Declaration().Name)
	})

	t.Run("duplicate", func(t *testing.T) {
		r := NewRegistry().Add(lookupTool("a"))
		err := r.Register(lookupTool("a"))
		var dup *ErrToolAlreadyRegistered
		assert.True(t, errors.As(err, &dup))
		assert.Panics(t, func() { r.Add(lookupTool("a")) })
	})

	t.Run("execute", func(t *testing.T) {
		r := NewRegistry().Add(lookupTool("lookup"))
		resp, err := r.Execute(ctx, newTC(), &genai.FunctionCall{ID: "c1", Name: "lookup", Args: map[string]any{"query": "x"}})
		require.NoError(t, err)
		assert.Equal(t, "c1", resp.ID)
		assert.Equal(t, "lookup", resp.Name)
		assert.Equal(t, "found x", resp.Response["result"])
	})

	t.Run("handler error becomes error result", func(t *testing.T) {
		r := NewRegistry().Add(lookupTool("lookup"))
		resp, err := r.Execute(ctx, newTC(), &genai.FunctionCall{Name: "lookup"})
		require.NoError(t, err)
		assert.Equal(t, "empty query", resp.Response[a2ui.ErrorKey])
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewRegistry().Execute(ctx, newTC(), &genai.FunctionCall{Name: "nope"})
		var nf *ErrToolNotFound
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "nope", nf.Name)
		assert.Contains(t, err.Error(), "no tools registered")

		_, err = NewRegistry().Add(lookupTool("lookup")).Execute(ctx, newTC(), &genai.FunctionCall{Name: "nope"})
		assert.Contains(t, err.Error(), "have lookup")
	})

	t.Run("UI tool through the registry", func(t *testing.T) {
		r := NewRegistry().Add(NewSendUITool(Static(textSchema)))
		resp, err := r.Execute(ctx, newTC(), genai.NewPartFromFunctionCall(a2ui.ToolName,
			map[string]any{a2ui.ToolArgName: `{"type":"Text","text":"hi"}`}).FunctionCall)
		require.NoError(t, err)
		assert.Contains(t, resp.Response, a2ui.ResultKey)
	})
}

func TestPrepare(t *testing.T) {
	req := &model.Request{}
	tools := []Tool{lookupTool("lookup"), NewSendUITool(Static(textSchema))}
	require.NoError(t, Prepare(context.Background(), newTC(), req, tools))

	require.Len(t, req.Tools, 2)
	assert.Equal(t, "lookup", req.Tools[0].Name)
	assert.Equal(t, a2ui.ToolName, req.Tools[1].Name)
	require.Len(t, req.Instructions, 1)
	assert.Contains(t, req.Instructions[0], a2ui.SchemaBeginMarker)

	err := Prepare(context.Background(), newTC(), &model.Request{}, []Tool{NewSendUITool(Static(json.RawMessage(`null`)))})
	assert.True(t, a2ui.IsConfiguration(err))
}
