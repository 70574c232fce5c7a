package a2a

// AgentCard describes an agent: its endpoint, skills and the protocol
// extensions it supports. It is served at CardPath.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	ProtocolVersion    string            `json:"protocolVersion,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Skills             []AgentSkill      `json:"skills"`
}

// AgentCapabilities lists optional protocol features of an agent.
type AgentCapabilities struct {
	Streaming  bool             `json:"streaming,omitempty"`
	Extensions []AgentExtension `json:"extensions,omitempty"`
}

// AgentExtension declares support for a protocol extension.
type AgentExtension struct {
	URI         string         `json:"uri"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
}

// AgentSkill is a capability advertised on the card.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples,omitempty"`
}

// Extension returns the card's declaration of uri, if any.
func (c *AgentCard) Extension(uri string) (AgentExtension, bool) {
	if c == nil {
		return AgentExtension{}, false
	}
	for _, ext := range c.Capabilities.Extensions {
		if ext.URI == uri {
			return ext, true
		}
	}
	return AgentExtension{}, false
}

// CardPath is the well-known location of the agent card.
const CardPath = "/.well-known/agent-card.json"

// ProtocolVersion is the A2A protocol version these types implement.
const ProtocolVersion = "0.3.0"
