package route

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/model"
	"github.com/spetersoncode/a2ui/part"
	"github.com/spetersoncode/a2ui/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.Open(context.Background(), session.NewMemoryService(), "")
	require.NoError(t, err)
	return sess
}

func eventCount(t *testing.T, sess *session.Session) int {
	t.Helper()
	events, err := sess.Events(context.Background())
	require.NoError(t, err)
	return len(events)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "route_to_subagent_name_for_surface_id_s1", Key("s1"))
}

func TestSetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t)

	changed, err := Set(ctx, sess, "s1", "agentA")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Set(ctx, sess, "s1", "agentA")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, eventCount(t, sess))

	changed, err = Set(ctx, sess, "s1", "agentB")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, eventCount(t, sess))

	agent, ok, err := Get(ctx, sess, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "agentB", agent)

	events, err := sess.Events(ctx)
	require.NoError(t, err)
	for _, ev := range events {
		assert.Equal(t, a2ui.SystemAuthor, ev.Author)
	}
	assert.NotEqual(t, events[0].InvocationID, events[1].InvocationID)
}

func TestGetUnbound(t *testing.T) {
	sess := newSession(t)
	agent, ok, err := Get(context.Background(), sess, "never-set")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, agent)

	_, ok = Lookup(session.State{}, "")
	assert.False(t, ok)
}

func TestSetRequiresIDs(t *testing.T) {
	sess := newSession(t)
	_, err := Set(context.Background(), sess, "", "agentA")
	assert.Error(t, err)
	_, err = Set(context.Background(), sess, "s1", "")
	assert.Error(t, err)
}

func TestSetConcurrentSurfaces(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := Set(ctx, sess, id, "agent_"+id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	state, err := sess.State(ctx)
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c", "d"} {
		agent, ok := Lookup(state, id)
		assert.True(t, ok)
		assert.Equal(t, "agent_"+id, agent)
	}
}

func TestRecorder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sess := newSession(t)

	parts := []a2a.Part{
		a2a.NewTextPart("here is your form"),
		part.New(map[string]any{"beginRendering": map[string]any{"surfaceId": "form", "root": "root"}}),
		part.New(map[string]any{"surfaceUpdate": map[string]any{"surfaceId": "form", "components": []any{}}}),
		part.New(map[string]any{"beginRendering": map[string]any{"surfaceId": "chart", "root": "root"}}),
	}
	assert.Equal(t, []string{"form", "chart"}, SurfacesBegun(parts))

	rec := NewRecorder(nil)
	rec.Observe(ctx, sess, "contact_agent", parts)
	// writes outlive the turn that emitted the parts
	cancel()
	rec.Wait()

	state, err := sess.State(context.Background())
	require.NoError(t, err)
	for _, id := range []string{"form", "chart"} {
		agent, ok := Lookup(state, id)
		assert.True(t, ok)
		assert.Equal(t, "contact_agent", agent)
	}

	rec.Observe(context.Background(), sess, "", parts)
	rec.Observe(context.Background(), nil, "x", parts)
	rec.Wait()
	assert.Equal(t, 2, eventCount(t, sess))
}

func userActionRequest(t *testing.T, surfaceID string) *model.Request {
	t.Helper()
	action := map[string]any{"name": "book", "context": map[string]any{"id": 7}}
	if surfaceID != "" {
		action["surfaceId"] = surfaceID
	}
	wire := part.New(map[string]any{"userAction": action})
	mp := part.ToModel(wire)
	require.NotNil(t, mp)
	return &model.Request{
		Contents: []*genai.Content{
			genai.NewContentFromText("hello", genai.RoleUser),
			genai.NewContentFromParts([]*genai.Part{mp}, genai.RoleUser),
		},
	}
}

func TestRouterBeforeModel(t *testing.T) {
	ctx := context.Background()
	state := session.State{Key("s1"): json.RawMessage(`"restaurant_agent"`)}

	t.Run("bound surface transfers", func(t *testing.T) {
		resp, ok := NewRouter().BeforeModel(ctx, state, userActionRequest(t, "s1"))
		require.True(t, ok)
		calls := resp.FunctionCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, a2ui.TransferToolName, calls[0].Name)
		assert.Equal(t, "restaurant_agent", calls[0].Args[a2ui.TransferAgentArg])
		assert.Equal(t, genai.RoleModel, resp.Content.Role)
	})

	t.Run("unbound surface calls miss handler", func(t *testing.T) {
		var missed *a2ui.UserAction
		r := NewRouter(WithMissHandler(func(_ context.Context, a *a2ui.UserAction) { missed = a }))
		resp, ok := r.BeforeModel(ctx, state, userActionRequest(t, "other"))
		assert.False(t, ok)
		assert.Nil(t, resp)
		require.NotNil(t, missed)
		assert.Equal(t, "other", missed.SurfaceID)
		assert.Equal(t, "book", missed.Name)
	})

	t.Run("action without surface falls through", func(t *testing.T) {
		called := false
		r := NewRouter(WithMissHandler(func(context.Context, *a2ui.UserAction) { called = true }))
		_, ok := r.BeforeModel(ctx, state, userActionRequest(t, ""))
		assert.False(t, ok)
		assert.False(t, called)
	})

	t.Run("plain text falls through", func(t *testing.T) {
		req := &model.Request{Contents: []*genai.Content{genai.NewContentFromText("hi", genai.RoleUser)}}
		_, ok := NewRouter().BeforeModel(ctx, state, req)
		assert.False(t, ok)
	})

	t.Run("empty request falls through", func(t *testing.T) {
		_, ok := NewRouter().BeforeModel(ctx, state, &model.Request{})
		assert.False(t, ok)
	})
}
