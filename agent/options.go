package agent

import (
	"log/slog"
	"time"

	"github.com/spetersoncode/a2ui/tool"
)

// Defaults for LLM agents.
const (
	// DefaultMaxSteps bounds model turns per invocation.
	DefaultMaxSteps = 10

	// DefaultHandlerTimeout bounds each tool call.
	DefaultHandlerTimeout = 30 * time.Second
)

// LLMOption configures an LLM agent.
type LLMOption func(*LLM)

// WithDescription sets the description other agents see when choosing
// whom to transfer to.
func WithDescription(description string) LLMOption {
	return func(a *LLM) {
		a.description = description
	}
}

// WithInstruction sets the system instruction.
func WithInstruction(instruction string) LLMOption {
	return func(a *LLM) {
		a.instruction = instruction
	}
}

// WithToolsets adds toolsets resolved at every model turn.
func WithToolsets(sets ...tool.Toolset) LLMOption {
	return func(a *LLM) {
		a.toolsets = append(a.toolsets, sets...)
	}
}

// WithTools adds tools offered at every model turn.
func WithTools(tools ...tool.Tool) LLMOption {
	return func(a *LLM) {
		a.toolsets = append(a.toolsets, tool.StaticToolset(tools))
	}
}

// WithSubAgents adds agents the model can transfer control to.
// Agents whose names are already taken are ignored.
func WithSubAgents(agents ...Agent) LLMOption {
	return func(a *LLM) {
		for _, sub := range agents {
			if err := a.subAgents.Add(sub); err != nil {
				a.logger.Warn("ignoring sub-agent", "error", err)
			}
		}
	}
}

// WithBeforeModel adds callbacks that may answer a turn without the model.
// They run in order; the first to answer wins.
func WithBeforeModel(callbacks ...BeforeModelFunc) LLMOption {
	return func(a *LLM) {
		a.beforeModel = append(a.beforeModel, callbacks...)
	}
}

// WithMaxSteps limits model turns per invocation. 0 means unlimited
// (not recommended). Default is DefaultMaxSteps.
func WithMaxSteps(n int) LLMOption {
	return func(a *LLM) {
		a.maxSteps = n
	}
}

// WithTimeout sets a deadline for each invocation.
func WithTimeout(d time.Duration) LLMOption {
	return func(a *LLM) {
		a.timeout = d
	}
}

// WithHandlerTimeout bounds each tool call. 0 disables the bound.
// Default is DefaultHandlerTimeout.
func WithHandlerTimeout(d time.Duration) LLMOption {
	return func(a *LLM) {
		a.handlerTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) LLMOption {
	return func(a *LLM) {
		a.logger = l
	}
}
