// Package extension handles the A2UI protocol extension on agent cards and
// per-request activation.
//
// An agent advertises UI support with [AgentExtension] on its card. A
// client turns it on for one request by naming the extension URI in the
// X-A2A-Extensions header and on the message; [ActivateCall] checks both
// and records the activation so the server echoes it back. Orchestrators
// combine their sub-agents' cards with [Aggregate] and forward UI
// activation to them with [Interceptor].
package extension
