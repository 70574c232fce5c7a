package agui

import (
	"encoding/json"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/part"
)

func TestRunAgentInput_JSON(t *testing.T) {
	body := `{
		"threadId": "t1",
		"runId": "r1",
		"messages": [{"id": "m1", "role": "user", "content": "hi"}],
		"state": {"theme": "dark"},
		"forwardedProps": {"a2uiClientCapabilities": {"supportedCatalogIds": ["std"]}}
	}`
	var input RunAgentInput
	require.NoError(t, json.Unmarshal([]byte(body), &input))
	assert.Equal(t, "t1", input.ThreadID)
	assert.Equal(t, "r1", input.RunID)
	require.Len(t, input.Messages, 1)
	assert.Contains(t, input.ForwardedProps, a2ui.ClientCapabilitiesKey)
}

func TestPrepare(t *testing.T) {
	t.Run("no messages", func(t *testing.T) {
		_, err := (&RunAgentInput{}).Prepare(nil)
		assert.ErrorIs(t, err, ErrNoMessages)
	})

	t.Run("no user message", func(t *testing.T) {
		input := &RunAgentInput{Messages: []events.Message{
			{ID: "1", Role: RoleAssistant, Content: strPtr("hello")},
			{ID: "2", Role: RoleUser, Content: strPtr("")},
		}}
		_, err := input.Prepare(nil)
		assert.ErrorIs(t, err, ErrNoUserMessage)
	})

	t.Run("latest user message", func(t *testing.T) {
		input := &RunAgentInput{
			ThreadID: "t1",
			RunID:    "r1",
			Messages: []events.Message{
				{ID: "1", Role: RoleUser, Content: strPtr("first")},
				{ID: "2", Role: RoleAssistant, Content: strPtr("reply")},
				{ID: "3", Role: RoleUser, Content: strPtr("second")},
			},
		}
		prepared, err := input.Prepare(nil)
		require.NoError(t, err)
		assert.Equal(t, "t1", prepared.ThreadID)
		assert.Equal(t, "r1", prepared.RunID)
		require.Len(t, prepared.Input.Parts, 1)
		assert.Equal(t, "second", prepared.Input.Parts[0].Text)
		assert.False(t, prepared.UI)
		assert.Nil(t, prepared.Capabilities)
	})

	t.Run("client capabilities ask for UI", func(t *testing.T) {
		input := &RunAgentInput{
			Messages: []events.Message{{ID: "1", Role: RoleUser, Content: strPtr("hi")}},
			ForwardedProps: map[string]any{
				a2ui.ClientCapabilitiesKey: map[string]any{
					a2ui.SupportedCatalogIDsKey: []any{a2ui.StandardCatalogID},
				},
			},
		}
		prepared, err := input.Prepare(nil)
		require.NoError(t, err)
		assert.True(t, prepared.UI)
		require.NotNil(t, prepared.Capabilities)
		assert.Equal(t, []string{a2ui.StandardCatalogID}, prepared.Capabilities.SupportedCatalogIDs)
	})

	t.Run("user action becomes a UI part", func(t *testing.T) {
		action := `{"userAction":{"name":"book","surfaceId":"s1","sourceComponentId":"btn"}}`
		input := &RunAgentInput{Messages: []events.Message{{ID: "1", Role: RoleUser, Content: strPtr(action)}}}
		prepared, err := input.Prepare(nil)
		require.NoError(t, err)

		p := prepared.Input.Parts[0]
		wire := part.ToWire(p)
		require.Len(t, wire, 1)
		kind, ok := part.Kind(wire[0])
		require.True(t, ok)
		assert.Equal(t, a2ui.KindUserAction, kind)
	})

	t.Run("other JSON stays text", func(t *testing.T) {
		input := &RunAgentInput{Messages: []events.Message{{ID: "1", Role: RoleUser, Content: strPtr(`{"note":"x"}`)}}}
		prepared, err := input.Prepare(nil)
		require.NoError(t, err)
		assert.Equal(t, `{"note":"x"}`, prepared.Input.Parts[0].Text)
	})
}

func TestDecodeState(t *testing.T) {
	type prefs struct {
		Theme string `json:"theme"`
	}

	got, err := DecodeState[prefs](&PreparedInput{State: map[string]any{"theme": "dark"}})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)

	empty, err := DecodeState[prefs](&PreparedInput{})
	require.NoError(t, err)
	assert.Equal(t, prefs{}, empty)

	_, err = DecodeState[prefs](&PreparedInput{State: "not an object"})
	assert.Error(t, err)
}
