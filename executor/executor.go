package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/agent"
	"github.com/spetersoncode/a2ui/event"
	"github.com/spetersoncode/a2ui/part"
	"github.com/spetersoncode/a2ui/route"
	"github.com/spetersoncode/a2ui/session"
)

// ErrEmptyMessage is returned for requests whose message has no content.
var ErrEmptyMessage = errors.New("executor: message has no content")

// MetadataFunc returns metadata for task updates carrying content authored
// by author, or nil.
type MetadataFunc func(author string) map[string]any

// Executor runs an agent for A2A requests.
type Executor struct {
	agent     agent.Agent
	sessions  session.Service
	preparer  Preparer
	converter *part.Converter
	recorder  *route.Recorder
	metadata  MetadataFunc
	logger    *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithPreparer sets the session preparer.
func WithPreparer(p Preparer) Option {
	return func(e *Executor) {
		e.preparer = p
	}
}

// WithConverter sets the part converter.
func WithConverter(c *part.Converter) Option {
	return func(e *Executor) {
		e.converter = c
	}
}

// WithRecorder records surface routes for UI begun by agents other than
// the served one.
func WithRecorder(r *route.Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

// WithMetadata sets the task update metadata hook.
func WithMetadata(fn MetadataFunc) Option {
	return func(e *Executor) {
		e.metadata = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an executor running a over sessions.
func New(a agent.Agent, sessions session.Service, opts ...Option) *Executor {
	e := &Executor{
		agent:     a,
		sessions:  sessions,
		converter: part.Default,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ a2a.StreamExecutor = (*Executor)(nil)

// Execute runs the agent to completion and returns the final task.
func (e *Executor) Execute(ctx context.Context, req a2a.SendMessageRequest) (*a2a.Task, error) {
	var (
		final   *a2a.TaskStatusUpdateEvent
		history []a2a.Message
	)
	for ev := range e.ExecuteStream(ctx, req) {
		update, ok := ev.(a2a.TaskStatusUpdateEvent)
		if !ok {
			continue
		}
		if update.Final || update.Status.State.IsTerminal() {
			final = &update
			continue
		}
		if update.Status.Message != nil {
			history = append(history, *update.Status.Message)
		}
	}
	if final == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("agent %s ended without a final status", e.agent.Name())
	}

	task := a2a.NewTask(final.TaskID, final.ContextID)
	task.Status = final.Status
	task.History = history
	task.Metadata = final.Metadata
	return task, nil
}

// ExecuteStream runs the agent and streams task updates. The last update
// is final: completed with every part the agent produced, or failed.
func (e *Executor) ExecuteStream(ctx context.Context, req a2a.SendMessageRequest) <-chan a2a.Event {
	out := make(chan a2a.Event, 16)
	go func() {
		defer close(out)
		e.run(ctx, req, out)
	}()
	return out
}

func (e *Executor) run(ctx context.Context, req a2a.SendMessageRequest, out chan<- a2a.Event) {
	m := a2a.NewMapper(req.TaskID(), req.ContextID())
	log := e.logger.With("task", m.TaskID(), "context", m.ContextID())
	send := func(ev a2a.Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error) {
		log.Error("task failed", "error", err)
		send(m.Failed(err.Error()))
	}

	sess, err := session.Open(ctx, e.sessions, m.ContextID())
	if err != nil {
		fail(fmt.Errorf("open session: %w", err))
		return
	}
	if e.preparer != nil {
		if err := e.preparer.Prepare(ctx, sess, req.Message); err != nil {
			fail(fmt.Errorf("prepare session: %w", err))
			return
		}
	}

	input := e.toContent(req.Message)
	if len(input.Parts) == 0 {
		fail(ErrEmptyMessage)
		return
	}
	if err := sess.Append(ctx, session.NewContentEvent("", session.UserAuthor, input)); err != nil {
		fail(fmt.Errorf("record input: %w", err))
		return
	}
	m.Record(req.Message)

	if !send(m.Working()) {
		return
	}

	inv := agent.NewInvocation(sess)
	log = log.With("invocation", inv.ID)
	var runErr error
	for ev := range e.agent.Run(ctx, inv) {
		switch ev.Type {
		case event.RunError:
			runErr = ev.Error
		case event.MessageEnd, event.ToolCallResult:
			parts := e.toParts(ev.Content)
			if len(parts) == 0 {
				continue
			}
			if e.recorder != nil && ev.Author != e.agent.Name() {
				e.recorder.Observe(ctx, sess, ev.Author, parts)
			}
			m.AddParts(parts...)
			msg := m.AgentMessage(parts...)
			update := m.StatusUpdate(a2a.TaskStateWorking, &msg, false)
			if e.metadata != nil {
				update.Metadata = e.metadata(ev.Author)
			}
			if !send(update) {
				return
			}
		case event.Transfer:
			log.Info("agent transferred", "from", ev.Author, "to", ev.TransferTo)
		}
	}

	if runErr != nil {
		fail(runErr)
		return
	}
	if ctx.Err() != nil {
		send(m.Canceled())
		return
	}
	log.Info("task completed", "parts", len(m.Parts()))
	send(m.Completed())
}

// toContent converts an inbound message to model content.
func (e *Executor) toContent(msg a2a.Message) *genai.Content {
	content := &genai.Content{Role: genai.RoleUser}
	for _, p := range msg.Parts {
		if mp := e.converter.ToModel(p); mp != nil {
			content.Parts = append(content.Parts, mp)
		}
	}
	return content
}

// toParts converts model content to wire parts.
func (e *Executor) toParts(content *genai.Content) []a2a.Part {
	if content == nil {
		return nil
	}
	var parts []a2a.Part
	for _, p := range content.Parts {
		parts = append(parts, e.converter.ToWire(p)...)
	}
	return parts
}
