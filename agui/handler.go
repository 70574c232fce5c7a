package agui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/agent"
	"github.com/spetersoncode/a2ui/event"
	"github.com/spetersoncode/a2ui/executor"
	"github.com/spetersoncode/a2ui/part"
	"github.com/spetersoncode/a2ui/route"
	"github.com/spetersoncode/a2ui/session"
)

// Handler serves an agent over AG-UI: each POST runs the agent once and
// streams its events as Server-Sent Events. The thread ID names the
// session, so state negotiated on the first run carries over to later ones.
type Handler struct {
	agent     agent.Agent
	sessions  session.Service
	preparer  executor.Preparer
	converter *part.Converter
	recorder  *route.Recorder
	logger    *slog.Logger
	maxBody   int64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPreparer sets the preparer run when the client asks for UI. It sees
// the request as an A2A message activating the extension, with the
// client's capabilities in its metadata.
func WithPreparer(p executor.Preparer) HandlerOption {
	return func(h *Handler) {
		h.preparer = p
	}
}

// WithConverter sets the part converter.
func WithConverter(c *part.Converter) HandlerOption {
	return func(h *Handler) {
		h.converter = c
	}
}

// WithRecorder records surface routes from sub-agent output.
func WithRecorder(r *route.Recorder) HandlerOption {
	return func(h *Handler) {
		h.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithMaxBodyBytes sets the largest request body accepted.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxBody = n
	}
}

// NewHandler creates a handler running a over sessions.
func NewHandler(a agent.Agent, sessions session.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		agent:     a,
		sessions:  sessions,
		converter: part.Default,
		logger:    slog.Default(),
		maxBody:   a2a.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles POST requests to run the agent and stream events via SSE.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		h.logger.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input RunAgentInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, "Invalid request body: "+err.Error(), status)
		return
	}

	prepared, err := input.Prepare(h.converter)
	if err != nil {
		h.logger.Warn("invalid input", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mapper := NewMapper(prepared.ThreadID, prepared.RunID, h.converter)
	log := h.logger.With("run_id", mapper.RunID(), "thread_id", mapper.ThreadID())

	ctx := r.Context()
	sess, delta, err := h.open(ctx, &input, prepared, mapper.ThreadID())
	if err != nil {
		log.Error("failed to prepare session", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	log.Info("request started", "ui", prepared.UI, "message_count", len(input.Messages))

	var eventCount int
	write := func(ev events.Event) bool {
		eventCount++
		if err := writeSSE(w, flusher, ev); err != nil {
			log.Error("failed to write SSE event", "error", err, "event_type", ev.Type())
			return false
		}
		return true
	}

	if !write(mapper.RunStarted()) {
		return
	}
	if len(delta) > 0 && !write(mapper.StateDelta(event.Patches(delta)...)) {
		return
	}

	// a cancelled run still has to be drained so the agent can exit
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inv := agent.NewInvocation(sess)
	for ev := range h.agent.Run(ctx, inv) {
		if ev.Type == event.RunStart || ctx.Err() != nil {
			continue
		}
		if h.recorder != nil && ev.Author != h.agent.Name() &&
			(ev.Type == event.MessageEnd || ev.Type == event.ToolCallResult) {
			h.recorder.Observe(ctx, sess, ev.Author, h.toParts(ev.Content))
		}
		for _, out := range mapper.MapEvent(ev) {
			if !write(out) {
				cancel()
				break
			}
		}
	}

	log.Info("request completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"events_sent", eventCount,
	)
}

// open loads the thread's session and applies the request to it: earlier
// messages seed a new session, frontend state is merged, UI negotiation
// runs when asked for, and the input is recorded. It returns the state
// changes visible to the frontend.
func (h *Handler) open(ctx context.Context, input *RunAgentInput, prepared *PreparedInput, threadID string) (*session.Session, map[string]any, error) {
	sess, err := session.Open(ctx, h.sessions, threadID)
	if err != nil {
		return nil, nil, fmt.Errorf("open session: %w", err)
	}
	history, err := sess.Events(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read session events: %w", err)
	}
	if len(history) == 0 {
		for _, c := range ToContents(input.Messages[:len(input.Messages)-1]) {
			author := session.UserAuthor
			if c.Role == genai.RoleModel {
				author = h.agent.Name()
			}
			if err := sess.Append(ctx, session.NewContentEvent("", author, c)); err != nil {
				return nil, nil, fmt.Errorf("seed history: %w", err)
			}
		}
	}

	before, err := sess.State(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read session state: %w", err)
	}

	frontend, err := DecodeState[map[string]any](prepared)
	if err != nil {
		return nil, nil, fmt.Errorf("decode state: %w", err)
	}
	if merged := publicKeys(frontend); len(merged) > 0 {
		if err := sess.AppendDelta(ctx, session.UserAuthor, "", merged); err != nil {
			return nil, nil, err
		}
	}

	if prepared.UI && h.preparer != nil {
		msg := a2a.NewMessage(a2a.MessageRoleUser)
		msg.AddExtension(a2ui.ExtensionURI)
		msg.Metadata = map[string]any{a2ui.ClientCapabilitiesKey: prepared.Capabilities.Map()}
		cc := &a2a.CallContext{RequestedExtensions: []string{a2ui.ExtensionURI}}
		if err := h.preparer.Prepare(a2a.WithCallContext(ctx, cc), sess, msg); err != nil {
			return nil, nil, fmt.Errorf("prepare session: %w", err)
		}
	}

	after, err := sess.State(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read session state: %w", err)
	}

	if err := sess.Append(ctx, session.NewContentEvent("", session.UserAuthor, prepared.Input)); err != nil {
		return nil, nil, fmt.Errorf("record input: %w", err)
	}
	return sess, publicKeys(before.Changes(after)), nil
}

// toParts converts model content to wire parts.
func (h *Handler) toParts(content *genai.Content) []a2a.Part {
	if content == nil {
		return nil
	}
	var parts []a2a.Part
	for _, p := range content.Parts {
		parts = append(parts, h.converter.ToWire(p)...)
	}
	return parts
}

// publicKeys drops keys reserved for the server.
func publicKeys(state map[string]any) map[string]any {
	out := make(map[string]any, len(state))
	for k, v := range state {
		if strings.HasPrefix(k, a2ui.SystemStatePrefix) {
			continue
		}
		out[k] = v
	}
	return out
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev events.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	// event: TYPE\ndata: {json}\n\n
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), string(data)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}
