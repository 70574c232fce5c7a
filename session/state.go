package session

import (
	"bytes"
	"encoding/json"
)

// State is the projection of a session's event log: the latest value of
// every key written by a state delta.
type State map[string]json.RawMessage

// Apply returns a copy of s with delta applied.
func (s State) Apply(delta map[string]json.RawMessage) State {
	out := make(State, len(s)+len(delta))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range delta {
		out[k] = v
	}
	return out
}

// Project folds events into a State.
func Project(events []Event) State {
	st := State{}
	for _, ev := range events {
		for k, v := range ev.StateDelta {
			st[k] = v
		}
	}
	return st
}

// Has returns true if the key is set.
func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Get retrieves the raw value for a key.
func (s State) Get(key string) (json.RawMessage, bool) {
	v, ok := s[key]
	return v, ok
}

// Decode unmarshals the value for key into v. It reports whether the key
// was present.
func (s State) Decode(key string, v any) (bool, error) {
	raw, ok := s[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// GetString retrieves a string value. Returns empty string if not found or wrong type.
func (s State) GetString(key string) string {
	var str string
	if ok, err := s.Decode(key, &str); !ok || err != nil {
		return ""
	}
	return str
}

// GetBool retrieves a bool value. Returns false if not found or wrong type.
func (s State) GetBool(key string) bool {
	var b bool
	if ok, err := s.Decode(key, &b); !ok || err != nil {
		return false
	}
	return b
}

// GetAny retrieves a value decoded into generic JSON types.
func (s State) GetAny(key string) (any, bool) {
	var v any
	if ok, err := s.Decode(key, &v); !ok || err != nil {
		return nil, false
	}
	return v, true
}

// Changes returns the keys whose values differ between s and next, with
// their decoded new values. Keys missing from next map to nil.
func (s State) Changes(next State) map[string]any {
	changes := map[string]any{}
	for k, raw := range next {
		if old, ok := s[k]; ok && bytes.Equal(old, raw) {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		changes[k] = v
	}
	for k := range s {
		if _, ok := next[k]; !ok {
			changes[k] = nil
		}
	}
	return changes
}
