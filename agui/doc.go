// Package agui serves agents over the AG-UI protocol.
//
// AG-UI (Agent-User Interface) is an event-based protocol connecting agents
// to frontends. [Handler] accepts a RunAgentInput, runs the agent over the
// session named by the thread ID, and streams AG-UI events back as
// Server-Sent Events.
//
// # UI negotiation
//
// A frontend asks for UI by sending its client capabilities under
// forwardedProps.a2uiClientCapabilities. The handler then runs its
// preparer as if the request had arrived over A2A with the extension
// activated, so both transports negotiate the catalog the same way:
//
//	h := agui.NewHandler(a, sessions,
//	    agui.WithPreparer(executor.NewUIPreparer(negotiator, logger)),
//	)
//	mux.Handle("/api/agent", h)
//
// A user message whose content is a serialized UI message, such as a
// userAction, is treated as that message rather than as text.
//
// # Event mapping
//
// [Mapper] converts agent events one at a time:
//
//   - run and step boundaries → RUN_* and STEP_* events
//   - model text → TEXT_MESSAGE_START, TEXT_MESSAGE_CONTENT, TEXT_MESSAGE_END
//   - tool calls → TOOL_CALL_START, TOOL_CALL_ARGS, TOOL_CALL_END
//   - tool results → TOOL_CALL_RESULT
//   - UI messages → CUSTOM events named "a2ui", one per message
//   - hand-offs → CUSTOM events named "transfer"
//   - state changes → STATE_DELTA
//
// The UI tool's own call and result are not reported; the frontend sees
// only the UI messages it produced.
//
// # Message conversion
//
// [ToContents] converts AG-UI history to model contents, and
// [FromContents] converts back for MESSAGES_SNAPSHOT events.
//
// The Mapper is not safe for concurrent use. Create one per run.
package agui
