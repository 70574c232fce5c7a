package tool

import (
	"context"
	"encoding/json"
)

// Toolset yields the tools available for an invocation.
type Toolset interface {
	Tools(ctx context.Context, rc ReadonlyContext) ([]Tool, error)
}

// UIToolset exposes the UI tool only when UI is enabled for the invocation.
type UIToolset struct {
	enabled Provider[bool]
	tool    *SendUITool
}

// NewUIToolset creates a toolset gating the UI tool on enabled.
func NewUIToolset(enabled Provider[bool], schema Provider[json.RawMessage], opts ...UIOption) *UIToolset {
	return &UIToolset{
		enabled: enabled,
		tool:    NewSendUITool(schema, opts...),
	}
}

// UITool returns the gated tool.
func (s *UIToolset) UITool() *SendUITool {
	return s.tool
}

// Tools returns the UI tool when enabled resolves true. A nil context
// means UI is disabled.
func (s *UIToolset) Tools(ctx context.Context, rc ReadonlyContext) ([]Tool, error) {
	if rc == nil {
		return nil, nil
	}
	on, err := s.enabled.Resolve(ctx, rc)
	if err != nil {
		return nil, err
	}
	if !on {
		s.tool.logger.Info("A2UI is DISABLED, not adding ui tools")
		return nil, nil
	}
	s.tool.logger.Info("A2UI is ENABLED, adding ui tools")
	return []Tool{s.tool}, nil
}

// StaticToolset always yields the same tools.
type StaticToolset []Tool

// Tools returns the tools.
func (s StaticToolset) Tools(context.Context, ReadonlyContext) ([]Tool, error) {
	return s, nil
}

// Collect resolves every toolset into one list.
func Collect(ctx context.Context, rc ReadonlyContext, sets ...Toolset) ([]Tool, error) {
	var all []Tool
	for _, set := range sets {
		tools, err := set.Tools(ctx, rc)
		if err != nil {
			return nil, err
		}
		all = append(all, tools...)
	}
	return all, nil
}

var _ Toolset = (*UIToolset)(nil)
