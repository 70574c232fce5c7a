// Package anthropic renders model requests for the Anthropic Messages API
// and calls it through anthropic-sdk-go.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui/internal/retry"
	"github.com/spetersoncode/a2ui/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// DefaultMaxTokens bounds each response.
const DefaultMaxTokens = 8192

// Client calls the Anthropic Messages API.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// ClientOption configures the Anthropic client.
type ClientOption func(*Client)

// WithModel sets the model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int64) ClientOption {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// New creates a new Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client:    &client,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the request and converts the reply to genai content.
func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	msg, err := c.client.Messages.New(ctx, Render(req, c.model, c.maxTokens))
	if err != nil {
		return nil, wrapError(err)
	}
	return &model.Response{Content: fromBlocks(msg.Content)}, nil
}

// Render builds Messages API parameters for a request.
func Render(req *model.Request, modelID string, maxTokens int64) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: maxTokens,
		Messages:  convertContents(req.Contents),
		Tools:     convertTools(req),
	}
	if instr := req.SystemInstruction(); instr != "" {
		params.System = []anthropic.TextBlockParam{{Text: instr}}
	}
	return params
}

func convertTools(req *model.Request) []anthropic.ToolUnionParam {
	if len(req.Tools) == 0 {
		return nil
	}
	result := make([]anthropic.ToolUnionParam, len(req.Tools))
	for i, t := range req.Tools {
		var schema map[string]any
		if len(t.Parameters) > 0 {
			_ = json.Unmarshal(t.Parameters, &schema)
		}

		var required []string
		if reqVal, ok := schema["required"].([]any); ok {
			for _, r := range reqVal {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
		}

		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema["properties"],
					Required:   required,
				},
			},
		}
	}
	return result
}

// convertContents maps genai contents to Anthropic messages. Function
// responses become tool_result blocks in a user message.
func convertContents(contents []*genai.Content) []anthropic.MessageParam {
	var (
		result []anthropic.MessageParam
		ids    model.CallIDs
	)
	for _, c := range contents {
		if c == nil {
			continue
		}
		var blocks []anthropic.ContentBlockParamUnion
		for _, p := range c.Parts {
			switch {
			case p == nil:
			case p.FunctionCall != nil:
				blocks = append(blocks, anthropic.NewToolUseBlock(ids.Call(p.FunctionCall), p.FunctionCall.Args, p.FunctionCall.Name))
			case p.FunctionResponse != nil:
				body, _ := json.Marshal(p.FunctionResponse.Response)
				_, isErr := p.FunctionResponse.Response["error"]
				blocks = append(blocks, anthropic.NewToolResultBlock(ids.Response(p.FunctionResponse), string(body), isErr))
			case p.Text != "":
				// Anthropic rejects empty text blocks
				blocks = append(blocks, anthropic.NewTextBlock(p.Text))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		role := anthropic.MessageParamRoleUser
		if c.Role == genai.RoleModel {
			role = anthropic.MessageParamRoleAssistant
		}
		result = append(result, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return result
}

func fromBlocks(blocks []anthropic.ContentBlockUnion) *genai.Content {
	content := &genai.Content{Role: genai.RoleModel}
	for _, b := range blocks {
		switch b.Type {
		case "text":
			content.Parts = append(content.Parts, genai.NewPartFromText(b.Text))
		case "tool_use":
			var args map[string]any
			_ = json.Unmarshal(b.Input, &args)
			content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				ID:   b.ID,
				Name: b.Name,
				Args: args,
			}})
		}
	}
	return content
}

// wrapError categorizes an Anthropic API error, honoring Retry-After.
func wrapError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	var after string
	if apiErr.Response != nil {
		after = apiErr.Response.Header.Get("Retry-After")
	}
	return retry.Classify(err.Error(), apiErr.StatusCode, retry.ParseRetryAfter(after), err)
}
