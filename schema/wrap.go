package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/spetersoncode/a2ui"
)

// ComponentsPath is the location, in the base A2UI schema, of the component
// definitions that a catalog replaces.
const ComponentsPath = "properties.surfaceUpdate.properties.components.items.properties.component.properties"

// Wrap wraps a UI message schema in a list envelope:
// {"type":"array","items":schema}.
// An empty schema (no bytes, null or {}) is a configuration error.
func Wrap(schema json.RawMessage) (json.RawMessage, error) {
	if IsEmpty(schema) {
		return nil, a2ui.NewConfigurationError("", a2ui.ErrEmptySchema)
	}
	if !json.Valid(schema) {
		return nil, a2ui.NewConfigurationError("wrap schema", fmt.Errorf("schema is not valid JSON"))
	}
	return json.Marshal(struct {
		Type  string          `json:"type"`
		Items json.RawMessage `json:"items"`
	}{
		Type:  "array",
		Items: schema,
	})
}

// Compose returns a copy of base with the subtree at ComponentsPath fully
// replaced by catalog. Missing intermediate objects are created. base is
// never modified.
func Compose(base, catalog json.RawMessage) (json.RawMessage, error) {
	if IsEmpty(base) {
		return nil, a2ui.NewConfigurationError("", a2ui.ErrEmptySchema)
	}
	if !gjson.ValidBytes(base) || !gjson.ParseBytes(base).IsObject() {
		return nil, a2ui.NewConfigurationError("compose schema", fmt.Errorf("base schema is not a JSON object"))
	}
	if !json.Valid(catalog) {
		return nil, a2ui.NewConfigurationError("compose schema", fmt.Errorf("catalog is not valid JSON"))
	}

	doc := bytes.Clone(base)
	out, err := sjson.SetRawBytes(doc, ComponentsPath, catalog)
	if err != nil {
		return nil, a2ui.NewConfigurationError("compose schema", err)
	}
	return out, nil
}

// IsEmpty reports whether a schema carries no content.
func IsEmpty(schema json.RawMessage) bool {
	trimmed := bytes.TrimSpace(schema)
	if len(trimmed) == 0 {
		return true
	}
	switch string(trimmed) {
	case "null", "{}", `""`, "false":
		return true
	}
	r := gjson.ParseBytes(trimmed)
	return r.IsObject() && len(r.Map()) == 0
}
