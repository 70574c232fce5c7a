package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/model"
	"github.com/spetersoncode/a2ui/schema"
)

// uiToolDescription tells the model how to use the UI tool and where the
// schema is documented.
var uiToolDescription = "Sends A2UI JSON to the client to render rich UI for the user." +
	" This tool can be called multiple times in the same call to render multiple UI surfaces." +
	" Args: " + a2ui.ToolArgName + ": Valid A2UI JSON Schema to send to the client." +
	" The A2UI JSON Schema definition is between " + a2ui.SchemaBeginMarker +
	" and " + a2ui.SchemaEndMarker + " in the system instructions."

var uiToolParams = schema.Object().
	Field(a2ui.ToolArgName, schema.String().
		Desc("valid A2UI JSON Schema to send to the client.").
		Required()).
	MustBuild()

// Invocation errors of the UI tool.
var (
	ErrMissingPayload = errors.New("Failed to call tool " + a2ui.ToolName + " because missing required arg " + a2ui.ToolArgName)
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrSchemaFailed   = errors.New("schema validation failed")
)

// SendUITool is the send_a2ui_json_to_client tool. It is safe for
// concurrent use.
type SendUITool struct {
	schema    Provider[json.RawMessage]
	validator schema.Validator
	logger    *slog.Logger
}

// UIOption configures a SendUITool or UIToolset.
type UIOption func(*SendUITool)

// WithValidator replaces the default JSON Schema validator.
func WithValidator(v schema.Validator) UIOption {
	return func(t *SendUITool) {
		t.validator = v
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) UIOption {
	return func(t *SendUITool) {
		t.logger = l
	}
}

// NewSendUITool creates the UI tool. The schema provider yields the
// unwrapped UI message schema for the invocation.
func NewSendUITool(schemaProvider Provider[json.RawMessage], opts ...UIOption) *SendUITool {
	t := &SendUITool{
		schema:    schemaProvider,
		validator: schema.NewValidator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Declaration returns the tool's model-facing declaration.
func (t *SendUITool) Declaration() a2ui.Tool {
	return a2ui.Tool{
		Name:        a2ui.ToolName,
		Description: uiToolDescription,
		Parameters:  uiToolParams,
	}
}

// Schema resolves the session schema and wraps it as a list schema.
func (t *SendUITool) Schema(ctx context.Context, rc ReadonlyContext) (json.RawMessage, error) {
	s, err := t.schema.Resolve(ctx, rc)
	if err != nil {
		return nil, err
	}
	return schema.Wrap(s)
}

// BeforeModelTurn appends the wrapped schema to the request's system
// instructions between the schema markers.
func (t *SendUITool) BeforeModelTurn(ctx context.Context, rc ReadonlyContext, req *model.Request) error {
	wrapped, err := t.Schema(ctx, rc)
	if err != nil {
		return err
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, wrapped); err != nil {
		return a2ui.NewConfigurationError("compact schema", err)
	}
	req.AppendInstructions(fmt.Sprintf("\n%s\n%s\n%s\n", a2ui.SchemaBeginMarker, compact.String(), a2ui.SchemaEndMarker))
	t.logger.Info("added A2UI schema to system instructions")
	return nil
}

// Invoke validates the payload in args. The result holds either the
// validated message list under "validated_a2ui_json" or a message under
// "error". On success tc.Actions.SkipSummarization is set.
func (t *SendUITool) Invoke(ctx context.Context, tc *Context, args map[string]any) map[string]any {
	messages, err := t.validate(ctx, tc, args)
	if err != nil {
		msg := fmt.Sprintf("Failed to call A2UI tool %s: %v", a2ui.ToolName, err)
		t.logger.Error(msg)
		return map[string]any{a2ui.ErrorKey: msg}
	}

	t.logger.Info("validated call to tool", "tool", a2ui.ToolName, "messages", len(messages))
	if tc != nil {
		tc.Actions.SkipSummarization = true
	}
	return map[string]any{a2ui.ResultKey: messages}
}

func (t *SendUITool) validate(ctx context.Context, tc *Context, args map[string]any) ([]any, error) {
	payload, _ := args[a2ui.ToolArgName].(string)
	if payload == "" {
		return nil, a2ui.NewInvocationError("", ErrMissingPayload)
	}

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, a2ui.NewInvocationError("", fmt.Errorf("%w: %v", ErrInvalidJSON, err))
	}

	messages, ok := parsed.([]any)
	if !ok {
		t.logger.Info("received a single JSON object, wrapping in a list for validation")
		messages = []any{parsed}
	}

	var rc ReadonlyContext
	if tc != nil {
		rc = tc
	}
	wrapped, err := t.Schema(ctx, rc)
	if err != nil {
		return nil, err
	}

	violations, err := t.validator.Validate(messages, wrapped)
	if err != nil {
		return nil, a2ui.NewConfigurationError("validate", err)
	}
	if first, failed := schema.First(violations); failed {
		return nil, a2ui.NewInvocationError("", fmt.Errorf("%w: %s", ErrSchemaFailed, first))
	}
	return messages, nil
}
