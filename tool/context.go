package tool

import (
	"context"

	"github.com/spetersoncode/a2ui/session"
)

// ReadonlyContext is the view of the current invocation available to
// providers and request processors.
type ReadonlyContext interface {
	AgentName() string
	InvocationID() string
	State() session.State
}

// Actions are requests a tool makes of the agent loop.
type Actions struct {
	// SkipSummarization ends the turn without another model call to
	// narrate the tool result.
	SkipSummarization bool
}

// Context is the per-invocation context handed to a tool.
type Context struct {
	agentName    string
	invocationID string
	state        session.State

	Actions Actions
}

// NewContext creates a tool context over a state snapshot.
func NewContext(agentName, invocationID string, state session.State) *Context {
	return &Context{
		agentName:    agentName,
		invocationID: invocationID,
		state:        state,
	}
}

// AgentName returns the name of the agent running the tool.
func (c *Context) AgentName() string { return c.agentName }

// InvocationID returns the invocation id.
func (c *Context) InvocationID() string { return c.invocationID }

// State returns the session state snapshot.
func (c *Context) State() session.State { return c.state }

// Provider yields a value of type T for an invocation. Constant and
// computed providers are resolved the same way.
type Provider[T any] interface {
	Resolve(ctx context.Context, rc ReadonlyContext) (T, error)
}

type static[T any] struct {
	value T
}

func (s static[T]) Resolve(context.Context, ReadonlyContext) (T, error) {
	return s.value, nil
}

// Static returns a provider that always yields v.
func Static[T any](v T) Provider[T] {
	return static[T]{value: v}
}

// ProviderFunc computes a value per invocation.
type ProviderFunc[T any] func(ctx context.Context, rc ReadonlyContext) (T, error)

// Resolve calls f.
func (f ProviderFunc[T]) Resolve(ctx context.Context, rc ReadonlyContext) (T, error) {
	return f(ctx, rc)
}
