package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/model"
)

// Tool is a function the model can call.
type Tool interface {
	// Declaration describes the tool to the model.
	Declaration() a2ui.Tool
	// Invoke runs the tool. Failures the model should see are returned in
	// the result map.
	Invoke(ctx context.Context, tc *Context, args map[string]any) map[string]any
}

// RequestProcessor is implemented by tools that amend each model request,
// for example with instructions.
type RequestProcessor interface {
	BeforeModelTurn(ctx context.Context, rc ReadonlyContext, req *model.Request) error
}

// Handler executes a function tool. A returned error is reported to the
// model as {"error": err.Error()}.
type Handler func(ctx context.Context, tc *Context, args map[string]any) (map[string]any, error)

// TypedHandler is a function that executes a tool call with typed arguments.
// The args parameter is automatically unmarshaled from the call's arguments.
type TypedHandler[T any] func(ctx context.Context, tc *Context, args T) (map[string]any, error)

type funcTool struct {
	decl    a2ui.Tool
	handler Handler
}

func (f *funcTool) Declaration() a2ui.Tool { return f.decl }

func (f *funcTool) Invoke(ctx context.Context, tc *Context, args map[string]any) map[string]any {
	result, err := f.handler(ctx, tc, args)
	if err != nil {
		return map[string]any{a2ui.ErrorKey: err.Error()}
	}
	return result
}

// NewFunc creates a tool from a declaration and handler.
func NewFunc(decl a2ui.Tool, h Handler) Tool {
	return &funcTool{decl: decl, handler: h}
}

// Func creates a tool whose arguments are decoded into T.
//
// Example:
//
//	type SalesArgs struct {
//	    Region string `json:"region"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_sales_data", "Get sales data", params,
//	        func(ctx context.Context, tc *tool.Context, args SalesArgs) (map[string]any, error) {
//	            return salesFor(args.Region), nil
//	        }),
//	)
func Func[T any](name, description string, params json.RawMessage, fn TypedHandler[T]) Tool {
	return NewFunc(a2ui.Tool{Name: name, Description: description, Parameters: params},
		func(ctx context.Context, tc *Context, raw map[string]any) (map[string]any, error) {
			var args T
			data, err := json.Marshal(raw)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(data, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			return fn(ctx, tc, args)
		})
}

// Registry manages registered tools.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name is already registered.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Declaration().Name
	if _, exists := r.tools[name]; exists {
		return &ErrToolAlreadyRegistered{Name: name}
	}
	r.tools[name] = t
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Add registers one or more tools to the registry.
// Panics if any tool is already registered.
// Returns the registry for fluent chaining.
func (r *Registry) Add(tools ...Tool) *Registry {
	for _, t := range tools {
		r.MustRegister(t)
	}
	return r
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns the names of all registered tools, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Tools returns the registered tools sorted by name.
func (r *Registry) Tools(context.Context, ReadonlyContext) ([]Tool, error) {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, r.tools[name])
	}
	return tools, nil
}

// Execute runs the tool named by call and returns its response.
// If the tool is not found, returns ErrToolNotFound. Tool failures are
// carried in the response so the model can recover.
func (r *Registry) Execute(ctx context.Context, tc *Context, call *genai.FunctionCall) (*genai.FunctionResponse, error) {
	r.mu.RLock()
	t, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		return nil, &ErrToolNotFound{Name: call.Name, Available: r.Names()}
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: t.Invoke(ctx, tc, args),
	}, nil
}

// Prepare offers tools on req: their declarations are added and request
// processors amend it.
func Prepare(ctx context.Context, rc ReadonlyContext, req *model.Request, tools []Tool) error {
	for _, t := range tools {
		req.Tools = append(req.Tools, t.Declaration())
		if p, ok := t.(RequestProcessor); ok {
			if err := p.BeforeModelTurn(ctx, rc, req); err != nil {
				return fmt.Errorf("prepare %s: %w", t.Declaration().Name, err)
			}
		}
	}
	return nil
}

var _ Toolset = (*Registry)(nil)
