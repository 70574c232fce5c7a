package a2a

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"google.golang.org/genai"
)

// Data part conventions for function calls and responses.
const (
	dataTypeKey        = "type"
	dataTypeToolCall   = "tool_call"
	dataTypeToolResult = "tool_result"
)

// ToModelPart converts a wire part to a model part. Function calls and
// responses carried as data parts are restored; other data parts become
// text holding their JSON. Unsupported parts yield nil.
func ToModelPart(p Part) *genai.Part {
	switch v := p.(type) {
	case TextPart:
		return genai.NewPartFromText(v.Text)
	case FilePart:
		if v.File.URI != "" {
			return genai.NewPartFromURI(v.File.URI, v.File.MimeType)
		}
		data, err := base64.StdEncoding.DecodeString(v.File.Bytes)
		if err != nil {
			slog.Warn("dropping file part with invalid base64", "name", v.File.Name, "error", err)
			return nil
		}
		return genai.NewPartFromBytes(data, v.File.MimeType)
	case DataPart:
		if data, ok := v.Data.(map[string]any); ok {
			if fc := extractToolCall(data); fc != nil {
				return &genai.Part{FunctionCall: fc}
			}
			if fr := extractToolResult(data); fr != nil {
				return &genai.Part{FunctionResponse: fr}
			}
		}
		raw, err := json.Marshal(v.Data)
		if err != nil {
			slog.Warn("dropping unencodable data part", "error", err)
			return nil
		}
		return genai.NewPartFromText(string(raw))
	default:
		return nil
	}
}

// FromModelPart converts a model part to a wire part. Parts with no wire
// form (thoughts, empty parts) yield nil.
func FromModelPart(p *genai.Part) Part {
	switch {
	case p == nil, p.Thought:
		return nil
	case p.FunctionCall != nil:
		return NewDataPart(map[string]any{
			dataTypeKey: dataTypeToolCall,
			dataTypeToolCall: map[string]any{
				"id":        p.FunctionCall.ID,
				"name":      p.FunctionCall.Name,
				"arguments": p.FunctionCall.Args,
			},
		})
	case p.FunctionResponse != nil:
		return NewDataPart(map[string]any{
			dataTypeKey: dataTypeToolResult,
			dataTypeToolResult: map[string]any{
				"id":       p.FunctionResponse.ID,
				"name":     p.FunctionResponse.Name,
				"response": p.FunctionResponse.Response,
			},
		})
	case p.InlineData != nil:
		return NewFilePartWithBytes(p.InlineData.DisplayName, p.InlineData.MIMEType,
			base64.StdEncoding.EncodeToString(p.InlineData.Data))
	case p.FileData != nil:
		return NewFilePartWithURI(p.FileData.DisplayName, p.FileData.MIMEType, p.FileData.FileURI)
	case p.Text != "":
		return NewTextPart(p.Text)
	default:
		return nil
	}
}

// ToModelContent converts a wire message to model content. Parts that
// have no model form are dropped.
func ToModelContent(msg Message) *genai.Content {
	role := genai.RoleUser
	if msg.Role == MessageRoleAgent {
		role = genai.RoleModel
	}
	content := &genai.Content{Role: role}
	for _, p := range msg.Parts {
		if mp := ToModelPart(p); mp != nil {
			content.Parts = append(content.Parts, mp)
		}
	}
	return content
}

func extractToolCall(data map[string]any) *genai.FunctionCall {
	if data[dataTypeKey] != dataTypeToolCall {
		return nil
	}
	tc, ok := data[dataTypeToolCall].(map[string]any)
	if !ok {
		return nil
	}
	id, _ := tc["id"].(string)
	name, _ := tc["name"].(string)
	args, _ := tc["arguments"].(map[string]any)
	return &genai.FunctionCall{ID: id, Name: name, Args: args}
}

func extractToolResult(data map[string]any) *genai.FunctionResponse {
	if data[dataTypeKey] != dataTypeToolResult {
		return nil
	}
	tr, ok := data[dataTypeToolResult].(map[string]any)
	if !ok {
		return nil
	}
	id, _ := tr["id"].(string)
	name, _ := tr["name"].(string)
	resp, _ := tr["response"].(map[string]any)
	return &genai.FunctionResponse{ID: id, Name: name, Response: resp}
}
