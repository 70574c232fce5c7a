// Package part converts between wire parts and model parts, giving UI
// messages their own handling: validated UI tool results become one wire
// data part per message, raw UI tool calls never reach the client, and UI
// parts survive a round trip through the conversation history as text.
package part

import (
	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
)

// New returns a wire data part carrying a UI message, tagged with the A2UI
// MIME type.
func New(message any) a2a.DataPart {
	return a2a.NewDataPartWithMetadata(message, map[string]any{
		a2ui.MIMETypeKey: a2ui.MIMEType,
	})
}

// IsUI reports whether p is a UI part: a data part whose payload has the
// structural signature of a UI message. The MIME tag is not consulted.
func IsUI(p a2a.Part) bool {
	_, ok := Kind(p)
	return ok
}

// Kind returns the UI message variant carried by p.
func Kind(p a2a.Part) (a2ui.Kind, bool) {
	dp, ok := asData(p)
	if !ok {
		return "", false
	}
	return a2ui.DetectKind(dp.Data)
}

// Message decodes the UI message carried by p.
func Message(p a2a.Part) (a2ui.Message, bool) {
	dp, ok := asData(p)
	if !ok {
		return a2ui.Message{}, false
	}
	m, err := a2ui.DecodeMessage(dp.Data)
	if err != nil {
		return a2ui.Message{}, false
	}
	return m, true
}

func asData(p a2a.Part) (a2a.DataPart, bool) {
	switch v := p.(type) {
	case a2a.DataPart:
		return v, true
	case *a2a.DataPart:
		if v == nil {
			return a2a.DataPart{}, false
		}
		return *v, true
	default:
		return a2a.DataPart{}, false
	}
}
