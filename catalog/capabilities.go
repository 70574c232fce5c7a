package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/spetersoncode/a2ui"
)

// Capabilities is what a client declares about the UI it can render.
type Capabilities struct {
	// SupportedCatalogIDs lists catalog ids the client can render, in
	// order of preference.
	SupportedCatalogIDs []string `json:"supportedCatalogIds,omitempty"`

	// InlineCatalogs is a catalog supplied by value. It may be a JSON
	// object or a JSON string holding the catalog text.
	InlineCatalogs json.RawMessage `json:"inlineCatalogs,omitempty"`
}

// Supports reports whether id is in the supported list.
func (c *Capabilities) Supports(id string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.SupportedCatalogIDs {
		if s == id {
			return true
		}
	}
	return false
}

// HasInline reports whether an inline catalog was supplied.
func (c *Capabilities) HasInline() bool {
	if c == nil {
		return false
	}
	trimmed := bytes.TrimSpace(c.InlineCatalogs)
	switch string(trimmed) {
	case "", "null", `""`:
		return false
	}
	return true
}

// Inline returns the inline catalog as raw JSON, unwrapping the string
// form. The result is not validated.
func (c *Capabilities) Inline() json.RawMessage {
	if !c.HasInline() {
		return nil
	}
	trimmed := bytes.TrimSpace(c.InlineCatalogs)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return json.RawMessage(s)
		}
	}
	return trimmed
}

// IsZero reports whether the capabilities carry no information.
func (c *Capabilities) IsZero() bool {
	return c == nil || (len(c.SupportedCatalogIDs) == 0 && !c.HasInline())
}

// FromMetadata reads capabilities from message metadata under
// a2ui.ClientCapabilitiesKey. Absent, null or empty capabilities return nil.
func FromMetadata(metadata map[string]any) *Capabilities {
	if metadata == nil {
		return nil
	}
	return FromValue(metadata[a2ui.ClientCapabilitiesKey])
}

// FromValue decodes capabilities from a decoded JSON value, raw JSON, or a
// *Capabilities. Null, an empty object or anything undecodable returns nil.
// An object with any key, even {"supportedCatalogIds": []}, is a
// declaration and decodes to non-nil capabilities.
func FromValue(v any) *Capabilities {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil
	case *Capabilities:
		if x.IsZero() {
			return nil
		}
		return x
	case Capabilities:
		return FromValue(&x)
	case json.RawMessage:
		raw = x
	case []byte:
		raw = x
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		raw = b
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || len(keys) == 0 {
		return nil
	}
	var caps Capabilities
	if err := json.Unmarshal(raw, &caps); err != nil {
		return nil
	}
	return &caps
}

// Map renders the capabilities as decoded JSON for use in message metadata.
func (c *Capabilities) Map() map[string]any {
	if c == nil {
		return nil
	}
	out := map[string]any{}
	if len(c.SupportedCatalogIDs) > 0 {
		ids := make([]any, len(c.SupportedCatalogIDs))
		for i, id := range c.SupportedCatalogIDs {
			ids[i] = id
		}
		out[a2ui.SupportedCatalogIDsKey] = ids
	}
	if c.HasInline() {
		var v any
		if err := json.Unmarshal(c.InlineCatalogs, &v); err == nil {
			out[a2ui.InlineCatalogsKey] = v
		}
	}
	return out
}
