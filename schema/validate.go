package schema

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Violation is a single schema validation failure.
type Violation struct {
	// Location is the JSON pointer of the offending value, "" for the root.
	Location string
	// Message describes the failure, e.g. "missing property 'text'".
	Message string
}

// String formats the violation for error messages.
func (v Violation) String() string {
	if v.Location == "" || v.Location == "/" {
		return v.Message
	}
	return fmt.Sprintf("at '%s': %s", v.Location, v.Message)
}

// Validator validates a decoded JSON instance against a JSON Schema.
// Violations are ordered so the first is the most specific failure found.
// An error is returned only when the schema itself cannot be used.
type Validator interface {
	Validate(instance any, schema json.RawMessage) ([]Violation, error)
}

// First returns the first violation, if any.
func First(violations []Violation) (Violation, bool) {
	if len(violations) == 0 {
		return Violation{}, false
	}
	return violations[0], true
}

// DefaultCacheSize is the number of compiled schemas a validator keeps.
const DefaultCacheSize = 64

// JSONSchemaValidator implements Validator with santhosh-tekuri/jsonschema.
// Compiled schemas are kept in an LRU keyed by content; it is safe for
// concurrent use.
type JSONSchemaValidator struct {
	mu      sync.Mutex
	cache   *lru.Cache
	printer *message.Printer
}

// NewValidator creates a JSONSchemaValidator caching DefaultCacheSize
// compiled schemas.
func NewValidator() *JSONSchemaValidator {
	return NewValidatorSize(DefaultCacheSize)
}

// NewValidatorSize creates a JSONSchemaValidator caching at most size
// compiled schemas.
func NewValidatorSize(size int) *JSONSchemaValidator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &JSONSchemaValidator{
		cache:   lru.New(size),
		printer: message.NewPrinter(language.English),
	}
}

// Cached returns the number of compiled schemas held.
func (v *JSONSchemaValidator) Cached() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cache.Len()
}

// Validate checks instance against schema. instance must be a value
// produced by JSON decoding (maps, slices, strings, float64, bool, nil) or
// raw JSON bytes.
func (v *JSONSchemaValidator) Validate(instance any, schema json.RawMessage) ([]Violation, error) {
	compiled, err := v.compile(schema)
	if err != nil {
		return nil, err
	}

	doc, err := normalize(instance)
	if err != nil {
		return nil, err
	}

	err = compiled.Validate(doc)
	if err == nil {
		return nil, nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Violation{{Message: err.Error()}}, nil
	}

	var out []Violation
	v.collect(verr, &out)
	if len(out) == 0 {
		out = append(out, Violation{Message: verr.Error()})
	}
	return out, nil
}

// collect appends the leaves of the error tree in depth-first order.
func (v *JSONSchemaValidator) collect(e *jsonschema.ValidationError, out *[]Violation) {
	if len(e.Causes) == 0 {
		*out = append(*out, Violation{
			Location: "/" + strings.Join(e.InstanceLocation, "/"),
			Message:  e.ErrorKind.LocalizedString(v.printer),
		})
		return
	}
	for _, cause := range e.Causes {
		v.collect(cause, out)
	}
}

func (v *JSONSchemaValidator) compile(schema json.RawMessage) (*jsonschema.Schema, error) {
	key := sha256.Sum256(schema)

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.cache.Get(key); ok {
		return s.(*jsonschema.Schema), nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v.cache.Add(key, s)
	return s, nil
}

func normalize(instance any) (any, error) {
	var raw []byte
	switch x := instance.(type) {
	case json.RawMessage:
		raw = x
	case []byte:
		raw = x
	default:
		return instance, nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal instance: %w", err)
	}
	return doc, nil
}
