package part

import (
	"encoding/json"
	"log/slog"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
)

// Converter converts parts in both directions. The zero value is ready to
// use and falls back to a2a.ToModelPart and a2a.FromModelPart.
type Converter struct {
	// ToModelFallback converts wire parts that are not UI parts.
	ToModelFallback func(a2a.Part) *genai.Part
	// ToWireFallback converts model parts with no UI meaning.
	ToWireFallback func(*genai.Part) a2a.Part
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Default is a Converter with the generic fallbacks.
var Default = &Converter{}

// ToModel converts a wire part for the model. A UI part becomes a text part
// holding the part's JSON, so it can be restored by ToWire.
func (c *Converter) ToModel(p a2a.Part) *genai.Part {
	if IsUI(p) {
		raw, err := json.Marshal(p)
		if err == nil {
			c.logger().Debug("converted UI part for model", "kind", p.GetKind())
			return genai.NewPartFromText(string(raw))
		}
		c.logger().Warn("failed to encode UI part", "error", err)
	}
	if c.ToModelFallback != nil {
		return c.ToModelFallback(p)
	}
	return a2a.ToModelPart(p)
}

// ToWire converts a model part to zero or more wire parts.
func (c *Converter) ToWire(p *genai.Part) []a2a.Part {
	if p == nil {
		return nil
	}

	if fr := p.FunctionResponse; fr != nil && fr.Name == a2ui.ToolName {
		return c.fromToolResponse(fr)
	}

	// the raw UI tool call is never sent to the client
	if fc := p.FunctionCall; fc != nil && fc.Name == a2ui.ToolName {
		return nil
	}

	if p.Text != "" {
		if wp, ok := restore(p.Text); ok {
			return []a2a.Part{wp}
		}
	}

	var wp a2a.Part
	if c.ToWireFallback != nil {
		wp = c.ToWireFallback(p)
	} else {
		wp = a2a.FromModelPart(p)
	}
	if wp == nil {
		return nil
	}
	return []a2a.Part{wp}
}

func (c *Converter) fromToolResponse(fr *genai.FunctionResponse) []a2a.Part {
	if msg, failed := fr.Response[a2ui.ErrorKey]; failed {
		c.logger().Warn("A2UI tool call failed", "error", msg)
		return nil
	}

	messages, _ := fr.Response[a2ui.ResultKey].([]any)
	if len(messages) == 0 {
		c.logger().Info("no result in A2UI tool response")
		return nil
	}

	c.logger().Info("creating UI parts from tool response", "messages", len(messages))
	parts := make([]a2a.Part, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, New(m))
	}
	return parts
}

// restore parses text as a serialized UI wire part. Ordinary text fails
// to parse and is not a UI part.
func restore(text string) (a2a.Part, bool) {
	if len(text) == 0 || text[0] != '{' {
		return nil, false
	}
	wp, err := a2a.UnmarshalPart([]byte(text))
	if err != nil || !IsUI(wp) {
		return nil, false
	}
	return wp, true
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ToModel converts p with the Default converter.
func ToModel(p a2a.Part) *genai.Part {
	return Default.ToModel(p)
}

// ToWire converts p with the Default converter.
func ToWire(p *genai.Part) []a2a.Part {
	return Default.ToWire(p)
}
