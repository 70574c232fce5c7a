// Package a2ui implements the negotiation and message-conversion layer of the
// A2UI protocol: the part of an agent that lets a model emit declarative UI
// payloads alongside text and routes the user's interactions with that UI
// back to the agent that produced it.
//
// The root package holds the protocol vocabulary shared by every other
// package: the extension URI and metadata keys, the session state keys, the
// UI message model with its structural predicate, the model-facing tool
// declaration type, and the categorized errors.
//
// The work is split across subpackages:
//
//   - [github.com/spetersoncode/a2ui/schema]: wraps, composes and validates UI schemas
//   - [github.com/spetersoncode/a2ui/catalog]: negotiates the component catalog for a client
//   - [github.com/spetersoncode/a2ui/extension]: activates the extension per request
//   - [github.com/spetersoncode/a2ui/tool]: the send_a2ui_json_to_client tool and toolset
//   - [github.com/spetersoncode/a2ui/part]: converts between model parts and wire parts
//   - [github.com/spetersoncode/a2ui/route]: binds UI surfaces to the sub-agent that owns them
//   - [github.com/spetersoncode/a2ui/executor]: prepares sessions and runs turns
//   - [github.com/spetersoncode/a2ui/orchestrator]: a host agent over remote A2A agents
//   - [github.com/spetersoncode/a2ui/agui] and [github.com/spetersoncode/a2ui/mcp]: the same
//     tool and parts over AG-UI and MCP
//
// # Session Preparation
//
// A typical agent prepares the session on every inbound request and then
// exposes the UI tool to its model:
//
//	negotiator := catalog.NewNegotiator(catalogs)
//	prep := executor.Chain(
//	    executor.BaseURL("http://localhost:10002"),
//	    executor.NewUIPreparer(negotiator, logger),
//	)
//
//	a := agent.NewLLM("contact_agent", m,
//	    agent.WithToolsets(executor.NewUIToolset()),
//	)
//	exec := executor.New(a, sessions, executor.WithPreparer(prep))
//
// # Converting Model Output
//
// Model output is converted to wire parts with a [part.Converter]. A
// successful UI tool result becomes one data part per UI message; failed or
// raw UI tool calls never reach the client:
//
//	for _, p := range content.Parts {
//	    wire = append(wire, part.Default.ToWire(p)...)
//	}
package a2ui
