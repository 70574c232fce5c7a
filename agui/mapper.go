package agui

import (
	"encoding/json"
	"fmt"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/event"
	"github.com/spetersoncode/a2ui/model"
	"github.com/spetersoncode/a2ui/part"
)

// Custom event names.
const (
	// CustomUI carries one A2UI message as its value.
	CustomUI = "a2ui"

	// CustomTransfer reports a hand-off between agents.
	CustomTransfer = "transfer"
)

// Mapper converts agent events to AG-UI events.
//
// Create a new Mapper for each run using NewMapper. The Mapper is not
// safe for concurrent use.
type Mapper struct {
	threadID  string
	runID     string
	converter *part.Converter
	ids       model.CallIDs
}

// NewMapper creates a new Mapper for a single run. A nil converter uses
// part.Default.
func NewMapper(threadID, runID string, converter *part.Converter) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	if converter == nil {
		converter = part.Default
	}
	return &Mapper{
		threadID:  threadID,
		runID:     runID,
		converter: converter,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

// StateSnapshot returns a STATE_SNAPSHOT event.
func (m *Mapper) StateSnapshot(state any) events.Event {
	return events.NewStateSnapshotEvent(state)
}

// StateDelta returns a STATE_DELTA event.
func (m *Mapper) StateDelta(patches ...event.JSONPatch) events.Event {
	ops := make([]events.JSONPatchOperation, len(patches))
	for i, p := range patches {
		ops[i] = events.JSONPatchOperation{Op: string(p.Op), Path: p.Path, Value: p.Value}
	}
	return events.NewStateDeltaEvent(ops)
}

// MapEvent converts an agent event to zero or more AG-UI events.
//
// Model text becomes a TEXT_MESSAGE sequence and tool calls a TOOL_CALL
// sequence. UI messages, whether restored from text or produced by the UI
// tool, become CUSTOM events named "a2ui"; the UI tool's own call and
// result are not reported.
func (m *Mapper) MapEvent(e event.Event) []events.Event {
	switch e.Type {
	case event.RunStart:
		return []events.Event{m.RunStarted()}
	case event.RunEnd:
		return []events.Event{m.RunFinished()}
	case event.RunError:
		return []events.Event{m.RunError(e.Error)}

	case event.StepStart:
		return []events.Event{events.NewStepStartedEvent(stepName(e))}
	case event.StepEnd:
		return []events.Event{events.NewStepFinishedEvent(stepName(e))}

	case event.MessageEnd:
		return m.mapContent(e.Parts())
	case event.ToolCallResult:
		return m.mapResults(e.FunctionResponses())

	case event.Transfer:
		return []events.Event{events.NewCustomEvent(CustomTransfer, events.WithValue(map[string]any{
			"from": e.Author,
			"to":   e.TransferTo,
		}))}
	case event.StateDelta:
		return []events.Event{m.StateDelta(event.Patches(e.StateDelta)...)}

	default:
		return nil
	}
}

func (m *Mapper) mapContent(parts []*genai.Part) []events.Event {
	var (
		out  []events.Event
		text string
	)
	flush := func() {
		if text == "" {
			return
		}
		id := events.GenerateMessageID()
		out = append(out,
			events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant)),
			events.NewTextMessageContentEvent(id, text),
			events.NewTextMessageEndEvent(id),
		)
		text = ""
	}

	for _, p := range parts {
		switch {
		case p == nil || p.Thought:
			continue
		case p.FunctionCall != nil:
			flush()
			out = append(out, m.mapCall(p.FunctionCall)...)
		case p.Text != "":
			if ui := m.uiEvents(p); len(ui) > 0 {
				flush()
				out = append(out, ui...)
				continue
			}
			text += p.Text
		}
	}
	flush()
	return out
}

func (m *Mapper) mapCall(call *genai.FunctionCall) []events.Event {
	if call.Name == a2ui.ToolName {
		m.ids.Call(call)
		return nil
	}
	id := m.ids.Call(call)
	args, err := json.Marshal(call.Args)
	if err != nil {
		args = []byte("{}")
	}
	return []events.Event{
		events.NewToolCallStartEvent(id, call.Name),
		events.NewToolCallArgsEvent(id, string(args)),
		events.NewToolCallEndEvent(id),
	}
}

func (m *Mapper) mapResults(responses []*genai.FunctionResponse) []events.Event {
	var out []events.Event
	for _, resp := range responses {
		id := m.ids.Response(resp)
		if resp.Name == a2ui.ToolName {
			out = append(out, m.uiEvents(&genai.Part{FunctionResponse: resp})...)
			continue
		}
		content, err := json.Marshal(resp.Response)
		if err != nil {
			content = []byte(fmt.Sprintf("%q", err.Error()))
		}
		out = append(out, events.NewToolCallResultEvent(events.GenerateMessageID(), id, string(content)))
	}
	return out
}

// uiEvents returns one CUSTOM event per UI message p converts to.
func (m *Mapper) uiEvents(p *genai.Part) []events.Event {
	var out []events.Event
	for _, wp := range m.converter.ToWire(p) {
		if msg, ok := part.Message(wp); ok {
			out = append(out, events.NewCustomEvent(CustomUI, events.WithValue(msg)))
		}
	}
	return out
}

func stepName(e event.Event) string {
	return fmt.Sprintf("%s_step_%d", e.Author, e.Step)
}
