package tool

import (
	"fmt"
	"strings"
)

// ErrToolNotFound is returned when a function call names a tool that is
// not offered to the model.
type ErrToolNotFound struct {
	Name      string
	Available []string
}

func (e *ErrToolNotFound) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("tool: %s not found: no tools registered", e.Name)
	}
	return fmt.Sprintf("tool: %s not found (have %s)", e.Name, strings.Join(e.Available, ", "))
}

// ErrToolAlreadyRegistered is returned when two tools share a name.
type ErrToolAlreadyRegistered struct {
	Name string
}

func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: %s registered twice", e.Name)
}
