// Package openai renders model requests for the OpenAI Chat Completions
// API and calls it through openai-go.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui/internal/retry"
	"github.com/spetersoncode/a2ui/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-5.2"

// Client calls the OpenAI Chat Completions API.
type Client struct {
	client *openai.Client
	model  string
}

// ClientOption configures the OpenAI client.
type ClientOption func(*Client)

// WithModel sets the model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client: &client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the request and converts the first choice to genai content.
func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	completion, err := c.client.Chat.Completions.New(ctx, Render(req, c.model))
	if err != nil {
		return nil, wrapError(err)
	}
	if len(completion.Choices) == 0 {
		return &model.Response{Content: &genai.Content{Role: genai.RoleModel}}, nil
	}
	return &model.Response{Content: fromMessage(completion.Choices[0].Message)}, nil
}

// Render builds Chat Completions parameters for a request.
func Render(req *model.Request, modelID string) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if instr := req.SystemInstruction(); instr != "" {
		messages = append(messages, openai.SystemMessage(instr))
	}
	messages = append(messages, convertContents(req.Contents)...)

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(modelID),
		Messages: messages,
	}
	for _, t := range req.Tools {
		var fp shared.FunctionParameters
		if len(t.Parameters) > 0 {
			_ = json.Unmarshal(t.Parameters, &fp)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  fp,
			},
		})
	}
	return params
}

// convertContents maps genai contents to chat messages. Each function
// response becomes its own tool message.
func convertContents(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var (
		result []openai.ChatCompletionMessageParamUnion
		ids    model.CallIDs
	)
	for _, c := range contents {
		if c == nil {
			continue
		}
		var (
			text  strings.Builder
			calls []openai.ChatCompletionMessageToolCallParam
		)
		for _, p := range c.Parts {
			switch {
			case p == nil:
			case p.FunctionCall != nil:
				args, _ := json.Marshal(p.FunctionCall.Args)
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID: ids.Call(p.FunctionCall),
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      p.FunctionCall.Name,
						Arguments: string(args),
					},
				})
			case p.FunctionResponse != nil:
				body, _ := json.Marshal(p.FunctionResponse.Response)
				result = append(result, openai.ToolMessage(string(body), ids.Response(p.FunctionResponse)))
			default:
				text.WriteString(p.Text)
			}
		}

		if c.Role == genai.RoleModel {
			if len(calls) > 0 {
				msg := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
				if text.Len() > 0 {
					msg.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(text.String()),
					}
				}
				result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &msg})
			} else if text.Len() > 0 {
				result = append(result, openai.AssistantMessage(text.String()))
			}
			continue
		}
		if text.Len() > 0 {
			result = append(result, openai.UserMessage(text.String()))
		}
	}
	return result
}

func fromMessage(msg openai.ChatCompletionMessage) *genai.Content {
	content := &genai.Content{Role: genai.RoleModel}
	if msg.Content != "" {
		content.Parts = append(content.Parts, genai.NewPartFromText(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		}})
	}
	return content
}

// wrapError categorizes an OpenAI API error, honoring Retry-After.
func wrapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	var after string
	if apiErr.Response != nil {
		after = apiErr.Response.Header.Get("Retry-After")
	}
	return retry.Classify(err.Error(), apiErr.StatusCode, retry.ParseRetryAfter(after), err)
}
