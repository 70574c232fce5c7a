package executor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/tool"
)

// ErrNoSchema is returned when UI is enabled but no schema is stored.
var ErrNoSchema = errors.New("executor: no A2UI schema in session state")

// Enabled reports whether a preparer enabled UI for the session.
var Enabled tool.Provider[bool] = tool.ProviderFunc[bool](
	func(_ context.Context, rc tool.ReadonlyContext) (bool, error) {
		return rc.State().GetBool(a2ui.StateKeyEnabled), nil
	})

// Schema yields the schema a preparer negotiated for the session.
var Schema tool.Provider[json.RawMessage] = tool.ProviderFunc[json.RawMessage](
	func(_ context.Context, rc tool.ReadonlyContext) (json.RawMessage, error) {
		raw, ok := rc.State().Get(a2ui.StateKeySchema)
		if !ok || string(raw) == "null" {
			return nil, ErrNoSchema
		}
		return raw, nil
	})

// NewUIToolset creates the UI toolset for agents served by an Executor
// with a UIPreparer: the tool is offered once UI is enabled and validates
// against the negotiated schema.
func NewUIToolset(opts ...tool.UIOption) *tool.UIToolset {
	return tool.NewUIToolset(Enabled, Schema, opts...)
}
