// Package schema wraps, composes and validates A2UI JSON Schemas.
//
// A UI schema describes a single UI message. The model sends a list of
// messages, so the schema it is shown and validated against is the wrapped
// form produced by [Wrap]:
//
//	wrapped, err := schema.Wrap(sessionSchema)
//	// {"type":"array","items":<sessionSchema>}
//
// The session schema itself is the base A2UI schema with the active
// component catalog spliced into the component-definition subtree:
//
//	composed, err := schema.Compose(base, catalog)
//
// Validation is an injected capability. [Validator] returns every
// violation it finds, ordered so the first is the most specific, and
// callers that want fail-fast behavior take [First]:
//
//	v := schema.NewValidator()
//	if violation, ok := schema.First(v.Validate(payload, wrapped)); ok {
//	    return fmt.Errorf("schema validation failed: %s", violation)
//	}
//
// # Building Small Schemas
//
// Tool parameters and test fixtures are built with the fluent builder:
//
//	params := schema.Object().
//		Field("a2ui_json", schema.String().Desc("UI payload").Required()).
//		MustBuild()
package schema
