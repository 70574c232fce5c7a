package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// UserAuthor authors events carrying the end user's input.
const UserAuthor = "user"

// Event is one entry in a session's log.
type Event struct {
	ID           string                     `json:"id"`
	InvocationID string                     `json:"invocationId,omitempty"`
	Author       string                     `json:"author"`
	Content      *genai.Content             `json:"content,omitempty"`
	StateDelta   map[string]json.RawMessage `json:"stateDelta,omitempty"`
	Timestamp    time.Time                  `json:"timestamp"`
}

// NewContentEvent creates an event carrying conversation content.
func NewContentEvent(invocationID, author string, content *genai.Content) Event {
	if invocationID == "" {
		invocationID = NewInvocationID()
	}
	return Event{
		ID:           uuid.New().String(),
		InvocationID: invocationID,
		Author:       author,
		Content:      content,
		Timestamp:    time.Now().UTC(),
	}
}

// Contents returns the conversation content of events in log order.
func Contents(events []Event) []*genai.Content {
	var out []*genai.Content
	for _, ev := range events {
		if ev.Content != nil && len(ev.Content.Parts) > 0 {
			out = append(out, ev.Content)
		}
	}
	return out
}

// NewEvent creates an event whose delta holds the JSON encoding of each
// value. An empty invocationID gets a fresh one.
func NewEvent(invocationID, author string, delta map[string]any) (Event, error) {
	if invocationID == "" {
		invocationID = NewInvocationID()
	}
	ev := Event{
		ID:           uuid.New().String(),
		InvocationID: invocationID,
		Author:       author,
		Timestamp:    time.Now().UTC(),
	}
	if len(delta) > 0 {
		ev.StateDelta = make(map[string]json.RawMessage, len(delta))
		for k, v := range delta {
			raw, err := json.Marshal(v)
			if err != nil {
				return Event{}, fmt.Errorf("encode state %q: %w", k, err)
			}
			ev.StateDelta[k] = raw
		}
	}
	return ev, nil
}

// NewInvocationID returns a fresh invocation id.
func NewInvocationID() string {
	return "e-" + uuid.New().String()
}
