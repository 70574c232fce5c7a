// Package event defines the events agents emit while they run.
//
// Every agent, local or remote, reports its progress as a stream of
// [Event] values. Transports map the stream to their own wire format: the
// A2A executor turns content into task status updates, and the AG-UI
// handler turns it into AG-UI events.
package event

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events.
const (
	// RunStart signals the beginning of an agent run.
	RunStart Type = "run_start"

	// RunEnd signals successful completion. Message holds the
	// termination reason.
	RunEnd Type = "run_end"

	// RunError signals a fatal error.
	RunError Type = "run_error"
)

// Step lifecycle events.
const (
	// StepStart signals the beginning of a model turn.
	StepStart Type = "step_start"

	// StepEnd signals the end of a model turn.
	StepEnd Type = "step_end"
)

// Content events.
const (
	// MessageEnd carries a complete model response: text and function calls.
	MessageEnd Type = "message_end"

	// ToolCallResult carries the function responses of one turn.
	ToolCallResult Type = "tool_call_result"
)

// Control events.
const (
	// Transfer signals that control passed to the agent named in TransferTo.
	Transfer Type = "transfer"

	// StateDelta carries session state changes made during the run.
	StateDelta Type = "state_delta"
)

// Event is a single occurrence during an agent run.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// Author is the name of the agent that produced the event.
	Author string

	// InvocationID identifies the run.
	InvocationID string

	// Step is the model turn number (1-indexed).
	Step int

	// Content holds the model response for MessageEnd, or the function
	// responses for ToolCallResult.
	Content *genai.Content

	// StateDelta holds the changes for StateDelta events.
	StateDelta map[string]any

	// TransferTo names the receiving agent for Transfer events.
	TransferTo string

	// Error is set for RunError events.
	Error error

	// Message contains additional context, such as a termination reason.
	Message string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Parts returns the content parts of the event.
func (e Event) Parts() []*genai.Part {
	if e.Content == nil {
		return nil
	}
	return e.Content.Parts
}

// FunctionCalls returns the function calls carried by the event.
func (e Event) FunctionCalls() []*genai.FunctionCall {
	var calls []*genai.FunctionCall
	for _, p := range e.Parts() {
		if p != nil && p.FunctionCall != nil {
			calls = append(calls, p.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns the function responses carried by the event.
func (e Event) FunctionResponses() []*genai.FunctionResponse {
	var responses []*genai.FunctionResponse
	for _, p := range e.Parts() {
		if p != nil && p.FunctionResponse != nil {
			responses = append(responses, p.FunctionResponse)
		}
	}
	return responses
}

// Text returns the concatenated text parts of the event, skipping thoughts.
func (e Event) Text() string {
	var text string
	for _, p := range e.Parts() {
		if p != nil && !p.Thought {
			text += p.Text
		}
	}
	return text
}

// Emit stamps e and sends it on ch. It blocks until the event is
// delivered or ctx is done, and reports whether it was delivered.
func Emit(ctx context.Context, ch chan<- Event, e Event) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// NewChannel creates a buffered event channel.
func NewChannel() chan Event {
	return make(chan Event, 100)
}
