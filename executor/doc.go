// Package executor serves an agent over A2A.
//
// [Executor] implements a2a.StreamExecutor. For each request it opens the
// session named by the request's context id, lets a [Preparer] record what
// the request asks for (UI activation, negotiated schema, forwarded client
// capabilities), appends the user's message, runs the agent and maps its
// events to task updates. Parts cross the boundary through a part
// converter, so validated UI tool results reach the client as UI parts.
package executor
