package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for schema construction.
var (
	// ErrNilItems is returned when an array has no items schema.
	ErrNilItems = errors.New("schema: array requires items schema")

	// ErrNotObject is returned when fields are added to a non-object schema.
	ErrNotObject = errors.New("schema: fields require an object schema")
)

// node is the serialized form of a schema fragment.
type node struct {
	Type                 string           `json:"type,omitempty"`
	Description          string           `json:"description,omitempty"`
	Enum                 []any            `json:"enum,omitempty"`
	Items                *node            `json:"items,omitempty"`
	MinItems             *int             `json:"minItems,omitempty"`
	Properties           map[string]*node `json:"properties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	AdditionalProperties *bool            `json:"additionalProperties,omitempty"`
}

// Builder assembles a JSON Schema fragment with a fluent API.
// Construction errors are collected and reported by Build.
type Builder struct {
	node     *node
	required bool
	err      error
}

// Object starts an object schema.
func Object() *Builder {
	return &Builder{node: &node{Type: "object", Properties: map[string]*node{}}}
}

// String starts a string schema.
func String() *Builder {
	return &Builder{node: &node{Type: "string"}}
}

// Bool starts a boolean schema.
func Bool() *Builder {
	return &Builder{node: &node{Type: "boolean"}}
}

// Array starts an array schema whose elements match items.
func Array(items *Builder) *Builder {
	b := &Builder{node: &node{Type: "array"}}
	if items == nil {
		b.err = ErrNilItems
		return b
	}
	b.node.Items = items.node
	b.err = items.err
	return b
}

// Desc sets the description.
func (b *Builder) Desc(description string) *Builder {
	b.node.Description = description
	return b
}

// Enum restricts the value to the given strings.
func (b *Builder) Enum(values ...string) *Builder {
	b.node.Enum = make([]any, len(values))
	for i, v := range values {
		b.node.Enum[i] = v
	}
	return b
}

// MinItems sets the minimum number of array items.
func (b *Builder) MinItems(n int) *Builder {
	b.node.MinItems = &n
	return b
}

// Required marks the fragment as required when added as a field.
func (b *Builder) Required() *Builder {
	b.required = true
	return b
}

// Closed disallows properties not declared with Field.
func (b *Builder) Closed() *Builder {
	closed := false
	b.node.AdditionalProperties = &closed
	return b
}

// Field adds a property to an object schema.
func (b *Builder) Field(name string, field *Builder) *Builder {
	if b.node.Type != "object" {
		b.err = fmt.Errorf("%w: field %q on %s", ErrNotObject, name, b.node.Type)
		return b
	}
	if field == nil {
		b.err = fmt.Errorf("schema: field %q has no schema", name)
		return b
	}
	if field.err != nil && b.err == nil {
		b.err = fmt.Errorf("schema: field %q: %w", name, field.err)
	}
	b.node.Properties[name] = field.node
	if field.required && !contains(b.node.Required, name) {
		b.node.Required = append(b.node.Required, name)
	}
	return b
}

// Build serializes the schema to json.RawMessage.
func (b *Builder) Build() (json.RawMessage, error) {
	if b.err != nil {
		return nil, b.err
	}
	return json.Marshal(b.node)
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() json.RawMessage {
	data, err := b.Build()
	if err != nil {
		panic(err)
	}
	return data
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
