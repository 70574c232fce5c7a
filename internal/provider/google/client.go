// Package google renders model requests for the Gemini API and calls it
// through google.golang.org/genai.
package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui/internal/retry"
	"github.com/spetersoncode/a2ui/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client calls Gemini through the genai SDK.
type Client struct {
	client *genai.Client
	model  string
}

// ClientOption configures the Google client.
type ClientOption func(*Client)

// WithModel sets the model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// New creates a new Gemini client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c := &Client{
		client: client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate sends the request and returns the first candidate.
func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	contents, config := Render(req)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return &model.Response{Content: &genai.Content{Role: genai.RoleModel}}, nil
	}
	content := resp.Candidates[0].Content
	if content.Role == "" {
		content.Role = genai.RoleModel
	}
	return &model.Response{Content: content}, nil
}

// Render builds the genai contents and config for a request. Gemini takes
// genai contents natively, so only instructions and tools are converted.
func Render(req *model.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	if instr := req.SystemInstruction(); instr != "" {
		config.SystemInstruction = genai.NewContentFromText(instr, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		funcs := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			funcs[i] = &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  convertJSONSchema(t.Parameters),
			}
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: funcs}}
	}

	contents := make([]*genai.Content, 0, len(req.Contents))
	for _, c := range req.Contents {
		if c != nil && len(c.Parts) > 0 {
			contents = append(contents, c)
		}
	}
	return contents, config
}

// wrapError categorizes a genai API error by status code.
// genai.APIError doesn't expose headers, so Retry-After is not available.
func wrapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	return retry.Classify(err.Error(), apiErr.Code, 0, err)
}
