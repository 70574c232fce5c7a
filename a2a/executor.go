package a2a

import (
	"context"
	"sync"
)

// Executor handles A2A task execution.
// Implementations convert the inbound message, run the agent, and convert
// the results back to A2A format.
type Executor interface {
	// Execute runs a task synchronously and returns the final task.
	Execute(ctx context.Context, req SendMessageRequest) (*Task, error)
}

// StreamExecutor is an Executor that can also stream updates.
type StreamExecutor interface {
	Executor

	// ExecuteStream runs a task and streams status and artifact updates.
	// The channel closes when execution completes.
	ExecuteStream(ctx context.Context, req SendMessageRequest) <-chan Event
}

// SendMessageRequest represents an A2A message/send request.
type SendMessageRequest struct {
	Message       Message                   `json:"message"`
	Configuration *SendMessageConfiguration `json:"configuration,omitempty"`
	Metadata      map[string]any            `json:"metadata,omitempty"`
}

// SendMessageConfiguration contains options for the send request.
type SendMessageConfiguration struct {
	// AcceptedOutputModes specifies the output formats the client can handle.
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`

	// HistoryLength controls how much conversation context to include.
	HistoryLength *int `json:"historyLength,omitempty"`

	// Blocking waits for task completion before returning.
	Blocking bool `json:"blocking,omitempty"`
}

// ContextID returns the request's context id, or "".
func (r SendMessageRequest) ContextID() string {
	if r.Message.ContextID != nil {
		return *r.Message.ContextID
	}
	return ""
}

// TaskID returns the request's task id, or "".
func (r SendMessageRequest) TaskID() string {
	if r.Message.TaskID != nil {
		return *r.Message.TaskID
	}
	return ""
}

// CallContext carries transport details of one server call: the extension
// URIs the client requested and those the executor activated.
// It is safe for concurrent use.
type CallContext struct {
	// RequestedExtensions are the URIs named in the extensions header.
	RequestedExtensions []string
	// BaseURL is the scheme and host the request was addressed to.
	BaseURL string

	mu        sync.Mutex
	activated []string
}

// Activate records uri as active for this call.
func (c *CallContext) Activate(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.activated {
		if a == uri {
			return
		}
	}
	c.activated = append(c.activated, uri)
}

// Activated returns the URIs activated so far.
func (c *CallContext) Activated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.activated...)
}

type callContextKey struct{}

// WithCallContext attaches cc to ctx.
func WithCallContext(ctx context.Context, cc *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey{}, cc)
}

// CallContextFrom returns the call context attached to ctx, or nil.
func CallContextFrom(ctx context.Context) *CallContext {
	cc, _ := ctx.Value(callContextKey{}).(*CallContext)
	return cc
}
