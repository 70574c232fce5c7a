package a2ui

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind identifies the variant of a UI message.
type Kind string

const (
	// KindBeginRendering declares a surface and its visual root.
	KindBeginRendering Kind = "beginRendering"
	// KindSurfaceUpdate declares or updates a surface's component tree.
	KindSurfaceUpdate Kind = "surfaceUpdate"
	// KindDataModelUpdate declares or updates data bound into a surface.
	KindDataModelUpdate Kind = "dataModelUpdate"
	// KindUserAction is an inbound client interaction on a surface.
	KindUserAction Kind = "userAction"
)

// Kinds lists every recognized envelope key, server messages first.
var Kinds = []Kind{KindBeginRendering, KindSurfaceUpdate, KindDataModelUpdate, KindUserAction}

// BeginRendering declares a new or re-declared UI surface.
type BeginRendering struct {
	SurfaceID string         `json:"surfaceId"`
	Root      string         `json:"root,omitempty"`
	Styles    map[string]any `json:"styles,omitempty"`
}

// SurfaceUpdate declares the component tree of a surface.
// Components are opaque to this layer; the catalog defines their shape.
type SurfaceUpdate struct {
	SurfaceID  string            `json:"surfaceId"`
	Components []json.RawMessage `json:"components"`
}

// DataModelUpdate declares data bound into a surface's components.
type DataModelUpdate struct {
	SurfaceID string          `json:"surfaceId"`
	Path      string          `json:"path,omitempty"`
	Contents  json.RawMessage `json:"contents,omitempty"`
}

// UserAction is a client-side interaction, such as a button press, on a surface.
type UserAction struct {
	Name              string         `json:"name"`
	SurfaceID         string         `json:"surfaceId,omitempty"`
	SourceComponentID string         `json:"sourceComponentId,omitempty"`
	Timestamp         string         `json:"timestamp,omitempty"`
	Context           map[string]any `json:"context,omitempty"`
}

// Message is a single UI message. Exactly one field is set.
type Message struct {
	BeginRendering  *BeginRendering  `json:"beginRendering,omitempty"`
	SurfaceUpdate   *SurfaceUpdate   `json:"surfaceUpdate,omitempty"`
	DataModelUpdate *DataModelUpdate `json:"dataModelUpdate,omitempty"`
	UserAction      *UserAction      `json:"userAction,omitempty"`
}

// Kind returns the variant of the message, or "" for an empty message.
func (m Message) Kind() Kind {
	switch {
	case m.BeginRendering != nil:
		return KindBeginRendering
	case m.SurfaceUpdate != nil:
		return KindSurfaceUpdate
	case m.DataModelUpdate != nil:
		return KindDataModelUpdate
	case m.UserAction != nil:
		return KindUserAction
	default:
		return ""
	}
}

// SurfaceID returns the surface the message is scoped to.
func (m Message) SurfaceID() string {
	switch {
	case m.BeginRendering != nil:
		return m.BeginRendering.SurfaceID
	case m.SurfaceUpdate != nil:
		return m.SurfaceUpdate.SurfaceID
	case m.DataModelUpdate != nil:
		return m.DataModelUpdate.SurfaceID
	case m.UserAction != nil:
		return m.UserAction.SurfaceID
	default:
		return ""
	}
}

// ParseMessage decodes a UI message from JSON. The payload must carry the
// structural signature recognized by DetectKindJSON.
func ParseMessage(data []byte) (Message, error) {
	if _, ok := DetectKindJSON(data); !ok {
		return Message{}, fmt.Errorf("%w: no UI message envelope", ErrInvalidMessage)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return m, nil
}

// DecodeMessage decodes a UI message from an already-parsed JSON value.
func DecodeMessage(v any) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return ParseMessage(data)
}

// DetectKind reports whether data carries the structural signature of a UI
// message and, if so, which variant.
//
// The signature is: a JSON object with exactly one top-level key, the key is
// one of Kinds, and its value is an object. The three server message
// variants must also carry a non-empty string surfaceId; a userAction may
// omit it.
func DetectKind(data any) (Kind, bool) {
	switch v := data.(type) {
	case nil:
		return "", false
	case map[string]any:
		if len(v) != 1 {
			return "", false
		}
		for key, body := range v {
			obj, ok := body.(map[string]any)
			if !ok {
				return "", false
			}
			sid, _ := obj["surfaceId"].(string)
			return classify(key, sid)
		}
		return "", false
	case json.RawMessage:
		return DetectKindJSON(v)
	case []byte:
		return DetectKindJSON(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return DetectKindJSON(raw)
	}
}

// DetectKindJSON is DetectKind for raw JSON.
func DetectKindJSON(data []byte) (Kind, bool) {
	if !gjson.ValidBytes(data) {
		return "", false
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return "", false
	}

	var (
		count int
		key   string
		body  gjson.Result
	)
	root.ForEach(func(k, v gjson.Result) bool {
		count++
		key, body = k.String(), v
		return count < 2
	})
	if count != 1 || !body.IsObject() {
		return "", false
	}
	sid := body.Get("surfaceId")
	if sid.Exists() && sid.Type != gjson.String {
		return "", false
	}
	return classify(key, sid.String())
}

func classify(key, surfaceID string) (Kind, bool) {
	switch k := Kind(key); k {
	case KindBeginRendering, KindSurfaceUpdate, KindDataModelUpdate:
		if surfaceID == "" {
			return "", false
		}
		return k, true
	case KindUserAction:
		return k, true
	default:
		return "", false
	}
}
