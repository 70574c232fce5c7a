// Package orchestrator builds an agent that routes each request to one of
// several remote A2A agents.
//
// [Build] fetches every sub-agent's card, wraps each as a remote agent and
// composes a card advertising the union of their UI support. User actions
// on a surface are sent straight to the sub-agent that rendered it; other
// requests are routed by the model.
package orchestrator
