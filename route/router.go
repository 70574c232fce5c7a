package route

import (
	"context"
	"log/slog"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/model"
	"github.com/spetersoncode/a2ui/part"
	"github.com/spetersoncode/a2ui/session"
)

// MissHandler is called when a user action names a surface with no binding.
type MissHandler func(ctx context.Context, action *a2ui.UserAction)

// Router short-circuits model turns whose input is a user action on a
// surface owned by a known sub-agent.
type Router struct {
	converter *part.Converter
	onMiss    MissHandler
	logger    *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithMissHandler sets the routing-miss callback. The default logs at debug
// level and lets the model decide.
func WithMissHandler(h MissHandler) Option {
	return func(r *Router) {
		r.onMiss = h
	}
}

// WithConverter sets the part converter used to read the last request part.
func WithConverter(c *part.Converter) Option {
	return func(r *Router) {
		r.converter = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a Router.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		converter: part.Default,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onMiss == nil {
		r.onMiss = func(_ context.Context, action *a2ui.UserAction) {
			r.logger.Debug("no route for user action",
				"action", action.Name, "surface", action.SurfaceID)
		}
	}
	return r
}

// BeforeModel inspects the last part of req. If it is a user action on a
// bound surface, it returns a response transferring control to the owner
// and true; the model is not called. Otherwise it returns nil and false.
func (r *Router) BeforeModel(ctx context.Context, state session.State, req *model.Request) (*model.Response, bool) {
	action := r.userAction(req.LastPart())
	if action == nil || action.SurfaceID == "" {
		return nil, false
	}

	agent, ok := Lookup(state, action.SurfaceID)
	if !ok {
		r.onMiss(ctx, action)
		return nil, false
	}

	r.logger.Info("routing user action to surface owner",
		"action", action.Name, "surface", action.SurfaceID, "agent", agent)
	return Transfer(agent), true
}

func (r *Router) userAction(p *genai.Part) *a2ui.UserAction {
	if p == nil {
		return nil
	}
	for _, wp := range r.converter.ToWire(p) {
		msg, ok := part.Message(wp)
		if ok && msg.UserAction != nil {
			return msg.UserAction
		}
	}
	return nil
}

// Transfer returns a model response that hands control to agent.
func Transfer(agent string) *model.Response {
	call := genai.NewPartFromFunctionCall(a2ui.TransferToolName, map[string]any{
		a2ui.TransferAgentArg: agent,
	})
	return &model.Response{
		Content: genai.NewContentFromParts([]*genai.Part{call}, genai.RoleModel),
	}
}
