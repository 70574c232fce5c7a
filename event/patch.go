package event

import (
	"sort"
	"strings"
)

// PatchOp is a JSON Patch operation.
type PatchOp string

// JSON Patch operations used for state deltas.
const (
	PatchAdd     PatchOp = "add"
	PatchReplace PatchOp = "replace"
	PatchRemove  PatchOp = "remove"
)

// JSONPatch is one RFC 6902 operation on the session state document.
type JSONPatch struct {
	Op    PatchOp `json:"op"`
	Path  string  `json:"path"`
	Value any     `json:"value,omitempty"`
}

// Add returns an add operation for the top-level key.
func Add(key string, value any) JSONPatch {
	return JSONPatch{Op: PatchAdd, Path: Pointer(key), Value: value}
}

// Replace returns a replace operation for the top-level key.
func Replace(key string, value any) JSONPatch {
	return JSONPatch{Op: PatchReplace, Path: Pointer(key), Value: value}
}

// Remove returns a remove operation for the top-level key.
func Remove(key string) JSONPatch {
	return JSONPatch{Op: PatchRemove, Path: Pointer(key)}
}

// Pointer returns the JSON Pointer of a top-level key.
func Pointer(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	key = strings.ReplaceAll(key, "/", "~1")
	return "/" + key
}

// Patches converts a state delta to add operations in key order. Add
// replaces existing members, so the result applies whether or not a key
// was already set. A nil value removes the key.
func Patches(delta map[string]any) []JSONPatch {
	keys := make([]string, 0, len(delta))
	for k := range delta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patches := make([]JSONPatch, 0, len(keys))
	for _, k := range keys {
		if delta[k] == nil {
			patches = append(patches, Remove(k))
			continue
		}
		patches = append(patches, Add(k, delta[k]))
	}
	return patches
}
