package model

import (
	"fmt"

	"google.golang.org/genai"
)

// CallIDs pairs function calls with their responses when the contents
// carry no ids, which Gemini omits but Anthropic and OpenAI require.
// Calls without an id get "call_<n>_<name>"; a response without an id
// takes the oldest unanswered call of the same name.
type CallIDs struct {
	n       int
	pending map[string][]string
}

// Call returns the id to use for call.
func (c *CallIDs) Call(call *genai.FunctionCall) string {
	if call.ID != "" {
		return call.ID
	}
	if c.pending == nil {
		c.pending = map[string][]string{}
	}
	id := fmt.Sprintf("call_%d_%s", c.n, call.Name)
	c.n++
	c.pending[call.Name] = append(c.pending[call.Name], id)
	return id
}

// Response returns the id to use for resp.
func (c *CallIDs) Response(resp *genai.FunctionResponse) string {
	if resp.ID != "" {
		return resp.ID
	}
	queue := c.pending[resp.Name]
	if len(queue) == 0 {
		return resp.Name
	}
	c.pending[resp.Name] = queue[1:]
	return queue[0]
}
