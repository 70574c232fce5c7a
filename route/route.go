package route

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/part"
	"github.com/spetersoncode/a2ui/session"
)

// KeyPrefix prefixes the session state key of every surface binding.
const KeyPrefix = "route_to_subagent_name_for_surface_id_"

// Key returns the state key holding the owner of surfaceID.
func Key(surfaceID string) string {
	return KeyPrefix + surfaceID
}

// Lookup reads the owner of surfaceID from a state projection.
func Lookup(state session.State, surfaceID string) (string, bool) {
	if surfaceID == "" {
		return "", false
	}
	agent := state.GetString(Key(surfaceID))
	return agent, agent != ""
}

// Get returns the agent bound to surfaceID in the session.
// An unbound surface returns ok == false and no error.
func Get(ctx context.Context, sess *session.Session, surfaceID string) (string, bool, error) {
	state, err := sess.State(ctx)
	if err != nil {
		return "", false, fmt.Errorf("read route for surface %q: %w", surfaceID, err)
	}
	agent, ok := Lookup(state, surfaceID)
	return agent, ok, nil
}

// Set binds surfaceID to agent. It appends a state delta only when the
// binding changes and reports whether it did.
func Set(ctx context.Context, sess *session.Session, surfaceID, agent string) (bool, error) {
	if surfaceID == "" || agent == "" {
		return false, fmt.Errorf("set route: surface id and agent name are required")
	}
	current, _, err := Get(ctx, sess, surfaceID)
	if err != nil {
		return false, err
	}
	if current == agent {
		return false, nil
	}
	delta := map[string]any{Key(surfaceID): agent}
	if err := sess.AppendDelta(ctx, a2ui.SystemAuthor, session.NewInvocationID(), delta); err != nil {
		return false, fmt.Errorf("set route for surface %q: %w", surfaceID, err)
	}
	return true, nil
}

// SurfacesBegun returns the surface ids declared by beginRendering parts.
func SurfacesBegun(parts []a2a.Part) []string {
	var ids []string
	for _, p := range parts {
		msg, ok := part.Message(p)
		if !ok || msg.BeginRendering == nil || msg.BeginRendering.SurfaceID == "" {
			continue
		}
		ids = append(ids, msg.BeginRendering.SurfaceID)
	}
	return ids
}

// Recorder binds surfaces to the agents that begin rendering them.
// Bindings are written in the background; a user action arriving before
// its binding is stored is handled as a routing miss.
type Recorder struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRecorder creates a Recorder. A nil logger uses slog.Default().
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger}
}

// Observe records author as the owner of every surface begun in parts.
// It does not block; call Wait to flush pending writes.
func (r *Recorder) Observe(ctx context.Context, sess *session.Session, author string, parts []a2a.Part) {
	if sess == nil || author == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, id := range SurfacesBegun(parts) {
		r.wg.Add(1)
		go func(surfaceID string) {
			defer r.wg.Done()
			changed, err := Set(ctx, sess, surfaceID, author)
			if err != nil {
				r.logger.Error("failed to record surface route",
					"session", sess.ID, "surface", surfaceID, "agent", author, "error", err)
				return
			}
			if changed {
				r.logger.Debug("recorded surface route",
					"session", sess.ID, "surface", surfaceID, "agent", author)
			}
		}(id)
	}
}

// Wait blocks until every pending binding has been written.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
