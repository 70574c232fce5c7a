package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/event"
	"github.com/spetersoncode/a2ui/model"
	"github.com/spetersoncode/a2ui/provider"
	"github.com/spetersoncode/a2ui/schema"
	"github.com/spetersoncode/a2ui/session"
	"github.com/spetersoncode/a2ui/tool"
)

// scripted replays responses in order and records the requests it saw.
type scripted struct {
	mu        sync.Mutex
	responses []*model.Response
	requests  []*model.Request
}

func (s *scripted) model() provider.Model {
	return provider.ModelFunc(func(_ context.Context, req *model.Request) (*model.Response, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.requests = append(s.requests, req)
		if len(s.responses) == 0 {
			return nil, errors.New("script exhausted")
		}
		resp := s.responses[0]
		s.responses = s.responses[1:]
		return resp, nil
	})
}

func (s *scripted) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func text(s string) *model.Response {
	return &model.Response{Content: genai.NewContentFromText(s, genai.RoleModel)}
}

func call(name string, args map[string]any) *model.Response {
	return &model.Response{Content: genai.NewContentFromParts(
		[]*genai.Part{genai.NewPartFromFunctionCall(name, args)}, genai.RoleModel)}
}

func newSession(t *testing.T, input string) *session.Session {
	t.Helper()
	ctx := context.Background()
	sess, err := session.Open(ctx, session.NewMemoryService(), "")
	require.NoError(t, err)
	if input != "" {
		require.NoError(t, sess.Append(ctx, session.NewContentEvent("", session.UserAuthor,
			genai.NewContentFromText(input, genai.RoleUser))))
	}
	return sess
}

func drain(ch <-chan event.Event) []event.Event {
	var out []event.Event
	for e := range ch {
		out = append(out, e)
	}
	return out
}

func types(events []event.Event) []event.Type {
	out := make([]event.Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func last(events []event.Event) event.Event {
	return events[len(events)-1]
}

func TestLLM_Complete(t *testing.T) {
	s := &scripted{responses: []*model.Response{text("Hello!")}}
	sess := newSession(t, "hi")
	a := NewLLM("greeter", s.model(), WithInstruction("Be nice."))

	events := drain(a.Run(context.Background(), NewInvocation(sess)))
	assert.Equal(t, []event.Type{
		event.RunStart, event.StepStart, event.MessageEnd, event.StepEnd, event.RunEnd,
	}, types(events))
	assert.Equal(t, string(TerminationComplete), last(events).Message)
	assert.Equal(t, "Hello!", events[2].Text())
	for _, e := range events {
		assert.Equal(t, "greeter", e.Author)
	}

	require.Len(t, s.requests, 1)
	assert.Equal(t, "Be nice.", s.requests[0].SystemInstruction())
	require.Len(t, s.requests[0].Contents, 1)

	history, err := sess.Events(context.Background())
	require.NoError(t, err)
	contents := session.Contents(history)
	require.Len(t, contents, 2)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
}

func TestLLM_ToolLoop(t *testing.T) {
	params := schema.Object().Field("city", schema.String().Required()).MustBuild()
	weather := tool.Func("weather", "Get the weather", params,
		func(_ context.Context, _ *tool.Context, args struct {
			City string `json:"city"`
		}) (map[string]any, error) {
			return map[string]any{"forecast": "sunny in " + args.City}, nil
		})

	s := &scripted{responses: []*model.Response{
		call("weather", map[string]any{"city": "Paris"}),
		call("missing", nil),
		text("It is sunny."),
	}}
	a := NewLLM("forecaster", s.model(), WithTools(weather))

	events := drain(a.Run(context.Background(), NewInvocation(newSession(t, "weather?"))))
	assert.Equal(t, string(TerminationComplete), last(events).Message)
	require.Equal(t, 3, s.calls())

	assert.Equal(t, "weather", s.requests[0].Tools[0].Name)

	// second request sees the call and its result
	second := s.requests[1].Contents
	require.Len(t, second, 3)
	resp := second[2].Parts[0].FunctionResponse
	require.NotNil(t, resp)
	assert.Equal(t, "sunny in Paris", resp.Response["forecast"])

	// unknown tools are reported, not fatal
	third := s.requests[2].Contents
	assert.Contains(t, third[len(third)-1].Parts[0].FunctionResponse.Response, a2ui.ErrorKey)
}

func TestLLM_UIToolSkipsSummarization(t *testing.T) {
	textSchema := schema.Object().
		Field("type", schema.String().Required()).
		Field("text", schema.String().Required()).
		MustBuild()
	ui := tool.NewUIToolset(tool.Static(true), tool.Static(textSchema))

	s := &scripted{responses: []*model.Response{
		call(a2ui.ToolName, map[string]any{a2ui.ToolArgName: `[{"type":"Text","text":"Hello"}]`}),
		text("should not be reached"),
	}}
	a := NewLLM("ui", s.model(), WithToolsets(ui))

	events := drain(a.Run(context.Background(), NewInvocation(newSession(t, "show me"))))
	assert.Equal(t, string(TerminationSkipSummarization), last(events).Message)
	assert.Equal(t, 1, s.calls())
	assert.Contains(t, s.requests[0].SystemInstruction(), a2ui.SchemaBeginMarker)

	var results []*genai.FunctionResponse
	for _, e := range events {
		if e.Type == event.ToolCallResult {
			results = append(results, e.FunctionResponses()...)
		}
	}
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Response, a2ui.ResultKey)
}

func TestLLM_Transfer(t *testing.T) {
	sub := &scripted{responses: []*model.Response{text("contacts here")}}
	contacts := NewLLM("contacts", sub.model(), WithDescription("Finds contacts."))

	root := &scripted{responses: []*model.Response{
		call(a2ui.TransferToolName, map[string]any{a2ui.TransferAgentArg: "contacts"}),
	}}
	a := NewLLM("root", root.model(), WithSubAgents(contacts))

	events := drain(a.Run(context.Background(), NewInvocation(newSession(t, "find alex"))))
	assert.Equal(t, string(TerminationTransfer), last(events).Message)
	assert.Equal(t, "root", last(events).Author)

	var transfer, reply *event.Event
	for i := range events {
		switch {
		case events[i].Type == event.Transfer:
			transfer = &events[i]
		case events[i].Type == event.MessageEnd && events[i].Author == "contacts":
			reply = &events[i]
		}
	}
	require.NotNil(t, transfer)
	assert.Equal(t, "contacts", transfer.TransferTo)
	require.NotNil(t, reply)
	assert.Equal(t, "contacts here", reply.Text())

	req := root.requests[0]
	assert.Contains(t, req.SystemInstruction(), "Agent name: contacts")
	require.Len(t, req.Tools, 1)
	assert.Equal(t, a2ui.TransferToolName, req.Tools[0].Name)
}

func TestLLM_TransferToUnknownAgent(t *testing.T) {
	s := &scripted{responses: []*model.Response{
		call(a2ui.TransferToolName, map[string]any{a2ui.TransferAgentArg: "nobody"}),
		text("sorry"),
	}}
	sub := NewLLM("known", (&scripted{}).model())
	a := NewLLM("root", s.model(), WithSubAgents(sub))

	events := drain(a.Run(context.Background(), NewInvocation(newSession(t, "x"))))
	assert.Equal(t, string(TerminationComplete), last(events).Message)
	assert.Equal(t, 2, s.calls())
}

func TestLLM_BeforeModelShortCircuit(t *testing.T) {
	sub := &scripted{responses: []*model.Response{text("routed")}}
	target := NewLLM("charts", sub.model())

	s := &scripted{}
	a := NewLLM("root", s.model(),
		WithSubAgents(target),
		WithBeforeModel(func(context.Context, session.State, *model.Request) (*model.Response, bool) {
			return call(a2ui.TransferToolName, map[string]any{a2ui.TransferAgentArg: "charts"}), true
		}),
	)

	events := drain(a.Run(context.Background(), NewInvocation(newSession(t, "click"))))
	assert.Equal(t, string(TerminationTransfer), last(events).Message)
	assert.Equal(t, 0, s.calls())
	assert.Equal(t, 1, sub.calls())
}

func TestLLM_MaxSteps(t *testing.T) {
	echo := tool.NewFunc(a2ui.Tool{Name: "echo"}, func(context.Context, *tool.Context, map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})
	s := &scripted{responses: []*model.Response{call("echo", nil), call("echo", nil), call("echo", nil)}}
	a := NewLLM("looper", s.model(), WithTools(echo), WithMaxSteps(2))

	events := drain(a.Run(context.Background(), NewInvocation(newSession(t, "go"))))
	assert.Equal(t, event.RunEnd, last(events).Type)
	assert.Equal(t, string(TerminationMaxSteps), last(events).Message)
	assert.Equal(t, 2, s.calls())
}

func TestLLM_ModelError(t *testing.T) {
	a := NewLLM("broken", (&scripted{}).model())
	events := drain(a.Run(context.Background(), NewInvocation(newSession(t, "hi"))))
	assert.Equal(t, event.RunError, last(events).Type)
	assert.EqualError(t, last(events).Error, "script exhausted")
}

func TestLLM_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewLLM("idle", (&scripted{}).model())
	events := drain(a.Run(ctx, NewInvocation(newSession(t, "hi"))))
	// a cancelled context may drop events; whatever arrives ends the run
	for _, e := range events {
		assert.NotEqual(t, event.MessageEnd, e.Type)
	}
}

func TestSubAgents(t *testing.T) {
	s := NewSubAgents()
	require.NoError(t, s.Add(NewLLM("b", nil, WithDescription("Second."))))
	require.NoError(t, s.Add(NewLLM("a", nil, WithDescription("First."))))
	assert.ErrorIs(t, s.Add(NewLLM("a", nil)), ErrAgentExists)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, s.Names())
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "First.", got.Description())
	_, ok = s.Get("c")
	assert.False(t, ok)

	assert.Contains(t, s.Instruction(), "Agent name: a\nAgent description: First.")

	decl := s.TransferTool()
	assert.Equal(t, a2ui.TransferToolName, decl.Name)
	assert.Equal(t, `["b","a"]`, gjson.GetBytes(decl.Parameters, "properties.agent_name.enum").Raw)
	assert.Equal(t, `["agent_name"]`, gjson.GetBytes(decl.Parameters, "required").Raw)
}
