package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/catalog"
	"github.com/spetersoncode/a2ui/extension"
	"github.com/spetersoncode/a2ui/session"
)

// Preparer updates a session from an inbound request before the agent runs.
type Preparer interface {
	Prepare(ctx context.Context, sess *session.Session, msg a2a.Message) error
}

// PreparerFunc adapts a function to Preparer.
type PreparerFunc func(ctx context.Context, sess *session.Session, msg a2a.Message) error

// Prepare calls f.
func (f PreparerFunc) Prepare(ctx context.Context, sess *session.Session, msg a2a.Message) error {
	return f(ctx, sess, msg)
}

// Chain runs preparers in order, stopping at the first error.
func Chain(preparers ...Preparer) Preparer {
	return PreparerFunc(func(ctx context.Context, sess *session.Session, msg a2a.Message) error {
		for _, p := range preparers {
			if err := p.Prepare(ctx, sess, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

// BaseURL records the address the first request reached, for tools that
// build asset links.
func BaseURL(fallback string) Preparer {
	return PreparerFunc(func(ctx context.Context, sess *session.Session, _ a2a.Message) error {
		state, err := sess.State(ctx)
		if err != nil {
			return err
		}
		if state.Has(a2ui.StateKeyBaseURL) {
			return nil
		}
		url := fallback
		if cc := a2a.CallContextFrom(ctx); cc != nil && cc.BaseURL != "" {
			url = cc.BaseURL
		}
		if url == "" {
			return nil
		}
		return sess.AppendDelta(ctx, a2ui.SystemAuthor, "", map[string]any{a2ui.StateKeyBaseURL: url})
	})
}

// UIPreparer enables UI for sessions whose requests activate the extension.
// The client's capabilities are negotiated to a schema stored in session
// state, where the UI toolset reads it.
type UIPreparer struct {
	negotiator *catalog.Negotiator
	logger     *slog.Logger
}

// NewUIPreparer creates a preparer resolving schemas with n.
func NewUIPreparer(n *catalog.Negotiator, logger *slog.Logger) *UIPreparer {
	if logger == nil {
		logger = slog.Default()
	}
	return &UIPreparer{negotiator: n, logger: logger}
}

// Prepare activates the extension for the call when both the header and
// the message ask for it, then resolves the catalog. A request resolving
// to the schema already in use, local or inline, leaves the session
// untouched.
func (p *UIPreparer) Prepare(ctx context.Context, sess *session.Session, msg a2a.Message) error {
	if !extension.ActivateCall(ctx, msg) {
		return nil
	}

	res, err := p.negotiator.Resolve(catalog.FromMetadata(msg.Metadata))
	if err != nil {
		return err
	}

	state, err := sess.State(ctx)
	if err != nil {
		return err
	}
	if state.GetBool(a2ui.StateKeyEnabled) &&
		state.GetString(a2ui.StateKeyCatalogID) == res.CatalogID &&
		sameJSON(state[a2ui.StateKeySchema], res.Schema) {
		return nil
	}

	p.logger.Info("enabling A2UI for session", "session", sess.ID, "catalog", res.CatalogID)
	return sess.AppendDelta(ctx, a2ui.SystemAuthor, "", map[string]any{
		a2ui.StateKeyEnabled:   true,
		a2ui.StateKeySchema:    res.Schema,
		a2ui.StateKeyCatalogID: res.CatalogID,
	})
}

// sameJSON compares two JSON documents ignoring insignificant whitespace.
func sameJSON(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// ForwardUI records that UI was activated, with the client's capabilities,
// so calls to remote sub-agents can forward both.
func ForwardUI() Preparer {
	return PreparerFunc(func(ctx context.Context, sess *session.Session, msg a2a.Message) error {
		if !extension.ActivateCall(ctx, msg) {
			return nil
		}
		return sess.AppendDelta(ctx, a2ui.SystemAuthor, "", map[string]any{
			a2ui.StateKeyUseUI:              true,
			a2ui.StateKeyClientCapabilities: msg.Metadata[a2ui.ClientCapabilitiesKey],
		})
	})
}
