package agui

import (
	"encoding/json"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui/model"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToContents converts AG-UI messages to model contents. System messages
// are dropped; agents carry their own instructions. Tool messages become
// function responses named after the call they answer.
func ToContents(msgs []events.Message) []*genai.Content {
	names := make(map[string]string)
	result := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		if c := toContent(msg, names); c != nil {
			result = append(result, c)
		}
	}
	return result
}

func toContent(msg events.Message, names map[string]string) *genai.Content {
	text := ""
	if msg.Content != nil {
		text = *msg.Content
	}

	switch msg.Role {
	case RoleSystem:
		return nil

	case RoleAssistant:
		var parts []*genai.Part
		if text != "" {
			parts = append(parts, genai.NewPartFromText(text))
		}
		for _, tc := range msg.ToolCalls {
			names[tc.ID] = tc.Function.Name
			var args map[string]any
			if tc.Function.Arguments != "" {
				// malformed arguments are passed on empty
				_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
			}
			parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: args,
			}})
		}
		if len(parts) == 0 {
			return nil
		}
		return genai.NewContentFromParts(parts, genai.RoleModel)

	case RoleTool:
		if msg.ToolCallID == nil {
			return nil
		}
		id := *msg.ToolCallID
		return genai.NewContentFromParts([]*genai.Part{{FunctionResponse: &genai.FunctionResponse{
			ID:       id,
			Name:     names[id],
			Response: toolResult(text),
		}}}, genai.RoleUser)

	default:
		if text == "" {
			return nil
		}
		return genai.NewContentFromText(text, genai.RoleUser)
	}
}

// toolResult decodes a JSON object result, or wraps anything else.
func toolResult(content string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"result": content}
}

// FromContents converts model contents to AG-UI messages for snapshots.
// UI tool traffic is kept as ordinary tool calls.
func FromContents(contents []*genai.Content) []events.Message {
	var (
		ids    model.CallIDs
		result []events.Message
	)
	for _, c := range contents {
		if c == nil {
			continue
		}
		role := RoleUser
		if c.Role == genai.RoleModel {
			role = RoleAssistant
		}

		msg := events.Message{ID: events.GenerateMessageID(), Role: role}
		var text string
		for _, p := range c.Parts {
			switch {
			case p == nil || p.Thought:
			case p.FunctionCall != nil:
				args, _ := json.Marshal(p.FunctionCall.Args)
				msg.ToolCalls = append(msg.ToolCalls, events.ToolCall{
					ID:   ids.Call(p.FunctionCall),
					Type: "function",
					Function: events.Function{
						Name:      p.FunctionCall.Name,
						Arguments: string(args),
					},
				})
			case p.FunctionResponse != nil:
				id := ids.Response(p.FunctionResponse)
				content, _ := json.Marshal(p.FunctionResponse.Response)
				s := string(content)
				result = append(result, events.Message{
					ID:         events.GenerateMessageID(),
					Role:       RoleTool,
					Content:    &s,
					ToolCallID: &id,
				})
			default:
				text += p.Text
			}
		}
		if text != "" {
			msg.Content = &text
		}
		if msg.Content != nil || len(msg.ToolCalls) > 0 {
			result = append(result, msg)
		}
	}
	return result
}
