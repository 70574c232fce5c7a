package agui

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/catalog"
	"github.com/spetersoncode/a2ui/part"
)

// RunAgentInput represents the AG-UI protocol request for running an agent.
// It follows the AG-UI RunAgentInput shape and is transport-agnostic.
type RunAgentInput struct {
	ThreadID       string           `json:"threadId"`
	RunID          string           `json:"runId"`
	Messages       []events.Message `json:"messages"`
	Tools          []any            `json:"tools,omitempty"`
	Context        []any            `json:"context,omitempty"`
	State          any              `json:"state,omitempty"`
	ForwardedProps map[string]any   `json:"forwardedProps,omitempty"`
}

// PreparedInput contains validated and converted input ready for agent execution.
type PreparedInput struct {
	ThreadID string
	RunID    string
	// Input is the latest user message, the one this run answers.
	Input *genai.Content
	// UI is set when the client asked for UI by sending its capabilities
	// in forwardedProps.
	UI bool
	// Capabilities are the client's UI capabilities, or nil.
	Capabilities *catalog.Capabilities
	// State is the raw state from the frontend.
	State any
}

// Sentinel errors for input validation.
var (
	// ErrNoMessages is returned when the input contains no messages.
	ErrNoMessages = errors.New("no messages provided")

	// ErrNoUserMessage is returned when no message carries user input.
	ErrNoUserMessage = errors.New("no user message provided")
)

// Prepare validates the input and converts the latest user message.
// A user message whose content is a UI message, such as a userAction, is
// converted to a UI part so it can be routed like one received over A2A.
func (r *RunAgentInput) Prepare(converter *part.Converter) (*PreparedInput, error) {
	if len(r.Messages) == 0 {
		return nil, ErrNoMessages
	}
	if converter == nil {
		converter = part.Default
	}

	var input *genai.Content
	for i := len(r.Messages) - 1; i >= 0; i-- {
		msg := r.Messages[i]
		if msg.Role != RoleUser || msg.Content == nil || *msg.Content == "" {
			continue
		}
		input = genai.NewContentFromParts([]*genai.Part{userPart(*msg.Content, converter)}, genai.RoleUser)
		break
	}
	if input == nil {
		return nil, ErrNoUserMessage
	}

	prepared := &PreparedInput{
		ThreadID: r.ThreadID,
		RunID:    r.RunID,
		Input:    input,
		State:    r.State,
	}
	if raw, ok := r.ForwardedProps[a2ui.ClientCapabilitiesKey]; ok {
		prepared.UI = true
		prepared.Capabilities = catalog.FromValue(raw)
	}
	return prepared, nil
}

// userPart converts user text, recognizing serialized UI messages.
func userPart(text string, converter *part.Converter) *genai.Part {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var data any
		if err := json.Unmarshal([]byte(trimmed), &data); err == nil {
			if _, ok := a2ui.DetectKind(data); ok {
				return converter.ToModel(part.New(data))
			}
		}
	}
	return genai.NewPartFromText(text)
}

// DecodeState decodes the raw state into a typed struct.
// Returns the zero value of T if State is nil.
func DecodeState[T any](input *PreparedInput) (T, error) {
	var result T
	if input.State == nil {
		return result, nil
	}

	// Re-marshal and unmarshal to get proper typing
	data, err := json.Marshal(input.State)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}

	return result, nil
}
