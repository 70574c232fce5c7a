package agent

import (
	"errors"
)

// Sentinel errors for agent composition and remote calls.
var (
	// ErrAgentExists is returned when a sub-agent name is already taken.
	ErrAgentExists = errors.New("agent: name already registered")

	// ErrNoInput is returned when a remote agent is run with no user
	// content to send.
	ErrNoInput = errors.New("agent: no user input to send")
)
