package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/event"
	"github.com/spetersoncode/a2ui/model"
	"github.com/spetersoncode/a2ui/provider"
	"github.com/spetersoncode/a2ui/session"
	"github.com/spetersoncode/a2ui/tool"
)

// Agent runs one invocation and reports its progress as events.
// The channel is closed when the run ends; callers must drain it.
type Agent interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) <-chan event.Event
}

// Invocation is one run of an agent over a session. The user's input has
// already been appended to the session when the run starts.
type Invocation struct {
	ID      string
	Session *session.Session
}

// NewInvocation creates an invocation with a fresh id.
func NewInvocation(sess *session.Session) *Invocation {
	return &Invocation{ID: session.NewInvocationID(), Session: sess}
}

// BeforeModelFunc may answer a model turn itself. Returning true skips
// the model call and uses the returned response.
type BeforeModelFunc func(ctx context.Context, state session.State, req *model.Request) (*model.Response, bool)

// LLM is an agent driven by a language model. Each turn it assembles a
// request from the session history, its instruction and its tools, calls
// the model, executes the requested tools, and repeats until the model
// stops calling tools, a tool ends the turn, or control is transferred to
// a sub-agent.
type LLM struct {
	name        string
	description string
	instruction string
	model       provider.Model
	toolsets    []tool.Toolset
	subAgents   *SubAgents
	beforeModel []BeforeModelFunc
	maxSteps    int
	timeout     time.Duration
	logger      *slog.Logger

	handlerTimeout time.Duration
}

// NewLLM creates an LLM agent.
func NewLLM(name string, m provider.Model, opts ...LLMOption) *LLM {
	a := &LLM{
		name:      name,
		model:     m,
		subAgents: NewSubAgents(),
		maxSteps:  DefaultMaxSteps,
		logger:    slog.Default(),

		handlerTimeout: DefaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("agent", name)
	return a
}

// Name returns the agent name.
func (a *LLM) Name() string { return a.name }

// Description returns the agent description.
func (a *LLM) Description() string { return a.description }

// SubAgents returns the agents control can be transferred to.
func (a *LLM) SubAgents() *SubAgents { return a.subAgents }

// Run executes the agent loop.
func (a *LLM) Run(ctx context.Context, inv *Invocation) <-chan event.Event {
	ch := event.NewChannel()
	go a.runLoop(ctx, inv, ch)
	return ch
}

func (a *LLM) runLoop(ctx context.Context, inv *Invocation, ch chan<- event.Event) {
	defer close(ch)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	emit := func(e event.Event) bool {
		e.Author = a.name
		e.InvocationID = inv.ID
		return event.Emit(ctx, ch, e)
	}
	fail := func(step int, err error) {
		a.logger.Error("agent run failed", "step", step, "error", err)
		emit(event.Event{Type: event.RunError, Step: step, Error: err})
	}

	emit(event.Event{Type: event.RunStart})

	for step := 1; ; step++ {
		if reason := a.checkTermination(ctx, step); reason != "" {
			if reason == TerminationTimeout || reason == TerminationCancelled {
				fail(step, fmt.Errorf("%s: %w", reason, ctx.Err()))
				return
			}
			emit(event.Event{Type: event.RunEnd, Step: step, Message: string(reason)})
			return
		}

		emit(event.Event{Type: event.StepStart, Step: step})

		state, tools, resp, err := a.callModel(ctx, inv)
		if err != nil {
			fail(step, err)
			return
		}

		content := resp.Content
		if content == nil {
			content = &genai.Content{}
		}
		content.Role = genai.RoleModel
		if err := a.record(ctx, inv, content); err != nil {
			fail(step, err)
			return
		}
		emit(event.Event{Type: event.MessageEnd, Step: step, Content: content})

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			emit(event.Event{Type: event.StepEnd, Step: step})
			emit(event.Event{Type: event.RunEnd, Step: step, Message: string(TerminationComplete)})
			return
		}

		tc := tool.NewContext(a.name, inv.ID, state)
		responses, target := a.executeCalls(ctx, tc, tools, calls)
		results := genai.NewContentFromParts(responses, genai.RoleUser)
		if err := a.record(ctx, inv, results); err != nil {
			fail(step, err)
			return
		}
		emit(event.Event{Type: event.ToolCallResult, Step: step, Content: results})
		emit(event.Event{Type: event.StepEnd, Step: step})

		if target != nil {
			emit(event.Event{Type: event.Transfer, Step: step, TransferTo: target.Name()})
			a.logger.Info("transferring to sub-agent", "target", target.Name())
			if !a.forward(ctx, inv, target, ch) {
				return
			}
			emit(event.Event{Type: event.RunEnd, Step: step, Message: string(TerminationTransfer)})
			return
		}

		if tc.Actions.SkipSummarization {
			emit(event.Event{Type: event.RunEnd, Step: step, Message: string(TerminationSkipSummarization)})
			return
		}
	}
}

// callModel builds the request for one turn and produces the response,
// either from a before-model callback or from the model.
func (a *LLM) callModel(ctx context.Context, inv *Invocation) (session.State, *tool.Registry, *model.Response, error) {
	state, err := inv.Session.State(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read session state: %w", err)
	}
	history, err := inv.Session.Events(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read session events: %w", err)
	}

	rc := tool.NewContext(a.name, inv.ID, state)
	req := &model.Request{Contents: session.Contents(history)}
	if a.instruction != "" {
		req.AppendInstructions(a.instruction)
	}
	if a.subAgents.Len() > 0 {
		req.AppendInstructions(a.subAgents.Instruction())
		req.Tools = append(req.Tools, a.subAgents.TransferTool())
	}

	tools, err := tool.Collect(ctx, rc, a.toolsets...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("collect tools: %w", err)
	}
	registry := tool.NewRegistry()
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return nil, nil, nil, err
		}
	}
	if err := tool.Prepare(ctx, rc, req, tools); err != nil {
		return nil, nil, nil, err
	}

	for _, cb := range a.beforeModel {
		if resp, ok := cb(ctx, state, req); ok {
			a.logger.Debug("model turn answered by callback")
			return state, registry, resp, nil
		}
	}

	resp, err := a.model.Generate(ctx, req)
	if err != nil {
		return nil, nil, nil, err
	}
	return state, registry, resp, nil
}

// executeCalls runs the requested tools in order. A transfer call selects
// the returned target; it is answered without running anything.
func (a *LLM) executeCalls(ctx context.Context, tc *tool.Context, tools *tool.Registry, calls []*genai.FunctionCall) ([]*genai.Part, Agent) {
	var (
		parts  []*genai.Part
		target Agent
	)
	for _, call := range calls {
		if call.Name == a2ui.TransferToolName {
			name, _ := call.Args[a2ui.TransferAgentArg].(string)
			sub, ok := a.subAgents.Get(name)
			result := map[string]any{"result": "transferred to " + name}
			if !ok {
				result = map[string]any{a2ui.ErrorKey: fmt.Sprintf("agent %q not found", name)}
			} else if target == nil {
				target = sub
			}
			parts = append(parts, functionResponse(call, result))
			continue
		}

		resp, err := a.execute(ctx, tc, tools, call)
		if err != nil {
			// unknown tools are reported to the model, which can recover
			a.logger.Warn("tool call failed", "tool", call.Name, "error", err)
			parts = append(parts, functionResponse(call, map[string]any{a2ui.ErrorKey: err.Error()}))
			continue
		}
		parts = append(parts, &genai.Part{FunctionResponse: resp})
	}
	return parts, target
}

func (a *LLM) execute(ctx context.Context, tc *tool.Context, tools *tool.Registry, call *genai.FunctionCall) (*genai.FunctionResponse, error) {
	if a.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.handlerTimeout)
		defer cancel()
	}
	return tools.Execute(ctx, tc, call)
}

// forward runs target on the same invocation and relays its events. It
// reports whether the target finished without error.
func (a *LLM) forward(ctx context.Context, inv *Invocation, target Agent, ch chan<- event.Event) bool {
	ok := true
	for e := range target.Run(ctx, inv) {
		switch e.Type {
		case event.RunStart, event.RunEnd:
			continue
		case event.RunError:
			ok = false
		}
		event.Emit(ctx, ch, e)
	}
	return ok
}

func (a *LLM) record(ctx context.Context, inv *Invocation, content *genai.Content) error {
	if len(content.Parts) == 0 {
		return nil
	}
	if err := inv.Session.Append(ctx, session.NewContentEvent(inv.ID, a.name, content)); err != nil {
		return fmt.Errorf("record content: %w", err)
	}
	return nil
}

func (a *LLM) checkTermination(ctx context.Context, step int) TerminationReason {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return TerminationTimeout
		}
		return TerminationCancelled
	}
	if a.maxSteps > 0 && step > a.maxSteps {
		return TerminationMaxSteps
	}
	return ""
}

func functionResponse(call *genai.FunctionCall, response map[string]any) *genai.Part {
	return &genai.Part{FunctionResponse: &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: response,
	}}
}
