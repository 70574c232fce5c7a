package model

import (
	"strings"

	"google.golang.org/genai"

	"github.com/spetersoncode/a2ui"
)

// Request is a single LLM request being assembled for a turn.
type Request struct {
	// Instructions are system instructions, joined with blank lines.
	Instructions []string
	// Contents is the conversation so far.
	Contents []*genai.Content
	// Tools are the declarations offered to the model.
	Tools []a2ui.Tool
}

// AppendInstructions adds system instructions.
func (r *Request) AppendInstructions(instructions ...string) {
	r.Instructions = append(r.Instructions, instructions...)
}

// SystemInstruction returns the joined instructions.
func (r *Request) SystemInstruction() string {
	return strings.Join(r.Instructions, "\n\n")
}

// LastPart returns the last part of the last content, or nil.
func (r *Request) LastPart() *genai.Part {
	if r == nil || len(r.Contents) == 0 {
		return nil
	}
	last := r.Contents[len(r.Contents)-1]
	if last == nil || len(last.Parts) == 0 {
		return nil
	}
	return last.Parts[len(last.Parts)-1]
}

// Response is what the model (or a callback standing in for it) produced.
type Response struct {
	Content *genai.Content
}

// FunctionCalls returns the function calls in the response.
func (r *Response) FunctionCalls() []*genai.FunctionCall {
	if r == nil || r.Content == nil {
		return nil
	}
	var calls []*genai.FunctionCall
	for _, p := range r.Content.Parts {
		if p != nil && p.FunctionCall != nil {
			calls = append(calls, p.FunctionCall)
		}
	}
	return calls
}
