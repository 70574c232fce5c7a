package agent

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/event"
	"github.com/spetersoncode/a2ui/part"
	"github.com/spetersoncode/a2ui/session"
)

// Remote is an agent served by another process over A2A. Each run sends
// the session's latest user input and reports the remote reply as one
// model message.
//
// The session is attached to the call context, so client interceptors can
// read its state. The session id is used as the remote context id, keeping
// one remote conversation per session.
type Remote struct {
	name        string
	description string
	card        *a2a.AgentCard
	client      *a2a.Client
	converter   *part.Converter
	logger      *slog.Logger
}

// RemoteOption configures a Remote agent.
type RemoteOption func(*Remote)

// WithConverter sets the part converter used in both directions.
func WithConverter(c *part.Converter) RemoteOption {
	return func(r *Remote) {
		r.converter = c
	}
}

// WithRemoteName overrides the card name as the agent name.
func WithRemoteName(name string) RemoteOption {
	return func(r *Remote) {
		r.name = name
	}
}

// WithRemoteDescription overrides the card description.
func WithRemoteDescription(description string) RemoteOption {
	return func(r *Remote) {
		r.description = description
	}
}

// WithRemoteLogger sets the logger.
func WithRemoteLogger(l *slog.Logger) RemoteOption {
	return func(r *Remote) {
		r.logger = l
	}
}

// NewRemote creates an agent for the remote described by card, reached
// through client.
func NewRemote(card *a2a.AgentCard, client *a2a.Client, opts ...RemoteOption) *Remote {
	r := &Remote{
		name:        card.Name,
		description: card.Description,
		card:        card,
		client:      client,
		converter:   part.Default,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("agent", r.name)
	return r
}

// Name returns the agent name, by default the card name.
func (r *Remote) Name() string { return r.name }

// Description returns the agent description, by default the card's.
func (r *Remote) Description() string { return r.description }

// Card returns the remote agent's card.
func (r *Remote) Card() *a2a.AgentCard { return r.card }

// Run sends the latest user input to the remote agent.
func (r *Remote) Run(ctx context.Context, inv *Invocation) <-chan event.Event {
	ch := event.NewChannel()
	go func() {
		defer close(ch)
		emit := func(e event.Event) bool {
			e.Author = r.Name()
			e.InvocationID = inv.ID
			return event.Emit(ctx, ch, e)
		}

		emit(event.Event{Type: event.RunStart})
		content, err := r.call(ctx, inv)
		if err != nil {
			r.logger.Error("remote agent call failed", "error", err)
			emit(event.Event{Type: event.RunError, Step: 1, Error: err})
			return
		}
		if len(content.Parts) > 0 {
			if err := inv.Session.Append(ctx, session.NewContentEvent(inv.ID, r.Name(), content)); err != nil {
				emit(event.Event{Type: event.RunError, Step: 1, Error: fmt.Errorf("record content: %w", err)})
				return
			}
		}
		emit(event.Event{Type: event.MessageEnd, Step: 1, Content: content})
		emit(event.Event{Type: event.RunEnd, Step: 1, Message: string(TerminationComplete)})
	}()
	return ch
}

func (r *Remote) call(ctx context.Context, inv *Invocation) (*genai.Content, error) {
	events, err := inv.Session.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session events: %w", err)
	}
	input := latestInput(events)
	if input == nil {
		return nil, ErrNoInput
	}

	var parts []a2a.Part
	for _, p := range input.Parts {
		parts = append(parts, r.converter.ToWire(p)...)
	}
	contextID := inv.Session.ID
	msg := a2a.NewMessageWithContext(a2a.MessageRoleUser, contextID, nil, parts...)

	task, err := r.client.SendMessage(session.NewContext(ctx, inv.Session), a2a.SendMessageRequest{Message: msg})
	if err != nil {
		return nil, err
	}
	if task.Status.State == a2a.TaskStateFailed {
		return nil, fmt.Errorf("remote task failed: %s", statusText(task))
	}
	r.logger.Debug("remote agent replied", "task", task.ID, "state", task.Status.State)

	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range replyParts(task) {
		if mp := r.converter.ToModel(p); mp != nil {
			content.Parts = append(content.Parts, mp)
		}
	}
	return content, nil
}

// latestInput returns the most recent content authored by the user.
func latestInput(events []session.Event) *genai.Content {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Author == session.UserAuthor && ev.Content != nil && len(ev.Content.Parts) > 0 {
			return ev.Content
		}
	}
	return nil
}

// replyParts collects the parts of a finished task: its artifacts, then
// the final status message.
func replyParts(task *a2a.Task) []a2a.Part {
	var parts []a2a.Part
	for _, art := range task.Artifacts {
		parts = append(parts, art.Parts...)
	}
	if task.Status.Message != nil {
		parts = append(parts, task.Status.Message.Parts...)
	}
	return parts
}

func statusText(task *a2a.Task) string {
	if task.Status.Message == nil {
		return string(task.Status.State)
	}
	return task.Status.Message.TextContent()
}
