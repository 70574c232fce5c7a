// Package a2a implements the parts of the A2A (Agent-to-Agent) protocol the
// UI layer needs: wire types, a JSON-RPC client, an HTTP handler, and a
// generic converter between wire parts and model parts.
//
// A2A uses JSON-RPC 2.0 over HTTP(S). Agents publish an [AgentCard] at
// [CardPath] describing their endpoint, skills and supported extensions.
//
// # Client
//
// [Client] sends message/send requests. Interceptors can add headers and
// modify the outbound message, which is how protocol extensions are
// requested:
//
//	client := a2a.NewClient(card.URL, a2a.WithInterceptors(intercept))
//	task, err := client.SendMessage(ctx, a2a.SendMessageRequest{Message: msg})
//
// Transient failures (HTTP 429, 5xx, network errors) are retried with
// exponential backoff.
//
// # Server
//
// [Handler] serves the agent card and dispatches message/send to an
// [Executor]. Executors that implement [StreamExecutor] also serve
// message/stream as Server-Sent Events. The extension URIs a client
// requested are available from [CallContextFrom]; URIs the executor
// activates are echoed back in the response's extensions header.
//
// # Conversion
//
// [ToModelPart] and [FromModelPart] convert between wire parts and
// genai parts. Function calls and responses travel as data parts tagged
// "tool_call" and "tool_result".
//
// # Task Lifecycle
//
// A2A tasks progress through defined states:
//
//   - TaskStateSubmitted: Task received, not yet started
//   - TaskStateWorking: Task is being processed
//   - TaskStateInputRequired: Agent needs additional input
//   - TaskStateCompleted: Task finished successfully
//   - TaskStateFailed: Task failed with an error
//   - TaskStateCanceled: Task was canceled
//   - TaskStateRejected: Task was rejected by the agent
//
// [Mapper] accumulates the parts an agent produces and builds the status
// and artifact updates for one task.
//
// # Thread Safety
//
// Client and Handler are safe for concurrent use. The Mapper is NOT; each
// task should have its own Mapper instance. Conversion functions are
// stateless.
package a2a
