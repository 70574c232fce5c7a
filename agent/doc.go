// Package agent runs agents over a session and reports their progress as
// [event.Event] streams.
//
// [LLM] drives a language model through a tool loop: each turn it builds a
// request from the session history, its instruction and its toolsets, lets
// before-model callbacks answer first, calls the model, and executes the
// requested tools. A model can hand the turn to one of its sub-agents by
// calling transfer_to_agent.
//
// [Remote] wraps an agent served over A2A so it can be used as a sub-agent.
//
// Basic usage:
//
//	ui := tool.NewUIToolset(enabled, schemaProvider)
//	a := agent.NewLLM("contacts", m,
//		agent.WithInstruction("You find contact details."),
//		agent.WithToolsets(ui),
//	)
//	for ev := range a.Run(ctx, agent.NewInvocation(sess)) {
//		// handle events
//	}
package agent
