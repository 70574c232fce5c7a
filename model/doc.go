// Package model defines the model-facing side of a turn: the request an
// agent's planner sends to an LLM and the response it gets back.
//
// Contents use google.golang.org/genai types so tool calls and tool
// responses keep their ids and structured arguments:
//
//	req := &model.Request{Contents: history}
//	req.AppendInstructions("You are a helpful assistant.")
//	req.Tools = append(req.Tools, sendUI.Declaration())
//
// The package also lists the chat models the provider renderers know, so
// a command can pick a provider from a model id:
//
//	m, ok := model.Lookup("gemini-2.5-flash")
//	if ok && m.Provider() == model.ProviderGoogle { ... }
package model
