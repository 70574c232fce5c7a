package extension

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/a2a"
	"github.com/spetersoncode/a2ui/session"
)

// Description is the agent card description of the UI extension.
const Description = "Provides agent driven UI using the A2UI JSON format."

// ParseHeader splits extension header values into URIs. Values may repeat
// the header or list several URIs separated by commas. Duplicates and
// blanks are dropped.
func ParseHeader(values []string) []string {
	var uris []string
	for _, v := range values {
		for _, uri := range strings.Split(v, ",") {
			uri = strings.TrimSpace(uri)
			if uri == "" || slices.Contains(uris, uri) {
				continue
			}
			uris = append(uris, uri)
		}
	}
	return uris
}

// Activate reports whether the UI extension is on for a request: its URI
// must be named both by the transport header and by the message.
func Activate(requested, declared []string) bool {
	return slices.Contains(requested, a2ui.ExtensionURI) && slices.Contains(declared, a2ui.ExtensionURI)
}

// ActivateCall applies Activate to an inbound server call and, on success,
// marks the extension active on the call so the response echoes it.
func ActivateCall(ctx context.Context, msg a2a.Message) bool {
	cc := a2a.CallContextFrom(ctx)
	if cc == nil {
		return false
	}
	if !Activate(ParseHeader(cc.RequestedExtensions), msg.Extensions) {
		return false
	}
	cc.Activate(a2ui.ExtensionURI)
	return true
}

// AgentExtension returns the card declaration of the UI extension.
func AgentExtension(supportedCatalogIDs []string, acceptsInlineCatalogs bool) a2a.AgentExtension {
	params := map[string]any{}
	if len(supportedCatalogIDs) > 0 {
		params[a2ui.SupportedCatalogIDsKey] = supportedCatalogIDs
	}
	if acceptsInlineCatalogs {
		params[a2ui.AcceptsInlineCatalogsKey] = true
	}
	ext := a2a.AgentExtension{
		URI:         a2ui.ExtensionURI,
		Description: Description,
	}
	if len(params) > 0 {
		ext.Params = params
	}
	return ext
}

// Support is what a set of agent cards advertise for the UI extension.
type Support struct {
	SupportedCatalogIDs   []string
	AcceptsInlineCatalogs bool
	Skills                []a2a.AgentSkill
}

// Extension returns the card declaration for s.
func (s Support) Extension() a2a.AgentExtension {
	return AgentExtension(s.SupportedCatalogIDs, s.AcceptsInlineCatalogs)
}

// Aggregate combines the UI support of several cards: the union of their
// catalog ids in first-seen order, whether any accepts inline catalogs,
// and all of their skills.
func Aggregate(cards ...*a2a.AgentCard) Support {
	var s Support
	for _, card := range cards {
		if card == nil {
			continue
		}
		s.Skills = append(s.Skills, card.Skills...)

		ext, ok := card.Extension(a2ui.ExtensionURI)
		if !ok || ext.Params == nil {
			continue
		}
		for _, id := range stringList(ext.Params[a2ui.SupportedCatalogIDsKey]) {
			if !slices.Contains(s.SupportedCatalogIDs, id) {
				s.SupportedCatalogIDs = append(s.SupportedCatalogIDs, id)
			}
		}
		if accepts, _ := ext.Params[a2ui.AcceptsInlineCatalogsKey].(bool); accepts {
			s.AcceptsInlineCatalogs = true
		}
	}
	return s
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Interceptor returns an a2a.Interceptor that forwards UI activation to a
// remote agent. When the session in ctx has use_ui set, it requests the
// extension in the header and on the message, and copies the session's
// client capabilities into the message metadata.
func Interceptor(logger *slog.Logger) a2a.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req *a2a.SendMessageRequest, header http.Header) error {
		sess := session.FromContext(ctx)
		if sess == nil {
			return nil
		}
		state, err := sess.State(ctx)
		if err != nil {
			return err
		}
		if !state.GetBool(a2ui.StateKeyUseUI) {
			return nil
		}

		header.Set(a2ui.ExtensionHeader, a2ui.ExtensionURI)
		req.Message.AddExtension(a2ui.ExtensionURI)

		caps, _ := state.GetAny(a2ui.StateKeyClientCapabilities)
		if req.Message.Metadata == nil {
			req.Message.Metadata = map[string]any{}
		}
		req.Message.Metadata[a2ui.ClientCapabilitiesKey] = caps
		logger.Debug("forwarding UI capabilities to remote agent", "session", sess.ID)
		return nil
	}
}
