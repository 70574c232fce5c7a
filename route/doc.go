// Package route binds UI surfaces to the sub-agents that render them.
//
// When an agent's output begins rendering a surface, a [Recorder] stores
// the binding in session state under [Key]. When a later user action names
// that surface, a [Router] answers the orchestrator's model turn with a
// transfer to the owning agent instead of asking the model to re-plan.
// Unbound surfaces are not errors; the turn proceeds normally.
package route
