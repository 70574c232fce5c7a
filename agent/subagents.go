package agent

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/schema"
)

// SubAgents is an ordered set of agents a parent can transfer control to.
// It is safe for concurrent use.
type SubAgents struct {
	mu     sync.RWMutex
	agents []Agent
	byName map[string]Agent
}

// NewSubAgents creates an empty set.
func NewSubAgents() *SubAgents {
	return &SubAgents{byName: make(map[string]Agent)}
}

// Add appends agent. Names must be unique.
func (s *SubAgents) Add(agent Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[agent.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrAgentExists, agent.Name())
	}
	s.agents = append(s.agents, agent)
	s.byName[agent.Name()] = agent
	return nil
}

// Get retrieves an agent by name.
func (s *SubAgents) Get(name string) (Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byName[name]
	return a, ok
}

// Len returns the number of agents.
func (s *SubAgents) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.agents)
}

// Names returns agent names in insertion order.
func (s *SubAgents) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.agents))
	for i, a := range s.agents {
		names[i] = a.Name()
	}
	return names
}

// All returns the agents in insertion order.
func (s *SubAgents) All() []Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Agent(nil), s.agents...)
}

// Instruction tells the model which agents it can hand off to and how.
func (s *SubAgents) Instruction() string {
	var b strings.Builder
	b.WriteString("You have a list of other agents to transfer to:\n")
	for _, a := range s.All() {
		fmt.Fprintf(&b, "\nAgent name: %s\nAgent description: %s\n", a.Name(), a.Description())
	}
	fmt.Fprintf(&b, "\nIf another agent is better for answering the question according to its description, "+
		"call the `%s` function to transfer the question to that agent. "+
		"When transferring, do not generate any text other than the function call.\n", a2ui.TransferToolName)
	return b.String()
}

// TransferTool declares the function the model calls to hand off.
func (s *SubAgents) TransferTool() a2ui.Tool {
	return a2ui.Tool{
		Name:        a2ui.TransferToolName,
		Description: "Transfer the question to another agent.",
		Parameters: schema.Object().
			Field(a2ui.TransferAgentArg, schema.String().
				Desc("The agent name to transfer to.").
				Enum(s.Names()...).
				Required()).
			MustBuild(),
	}
}
