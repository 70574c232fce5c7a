package session

import (
	"context"
	"fmt"
	"sync"
)

// MemoryService provides thread-safe in-memory session storage.
type MemoryService struct {
	mu       sync.RWMutex
	sessions map[string]*memoryRecord
}

type memoryRecord struct {
	events []Event
	state  State
}

// NewMemoryService creates a new in-memory session service.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		sessions: make(map[string]*memoryRecord),
	}
}

// Create starts an empty session.
func (m *MemoryService) Create(_ context.Context, id string) (*Session, error) {
	id = newID(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, id)
	}
	m.sessions[id] = &memoryRecord{state: State{}}
	return newSession(m, id), nil
}

// Get returns the session handle.
func (m *MemoryService) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.sessions[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return newSession(m, id), nil
}

// Append adds an event and applies its delta.
func (m *MemoryService) Append(_ context.Context, id string, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec.events = append(rec.events, ev)
	rec.state = rec.state.Apply(ev.StateDelta)
	return nil
}

// Events returns a copy of the session log.
func (m *MemoryService) Events(_ context.Context, id string) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := make([]Event, len(rec.events))
	copy(out, rec.events)
	return out, nil
}

// State returns the current projection. The returned map is a snapshot;
// later appends do not modify it.
func (m *MemoryService) State(_ context.Context, id string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.state, nil
}

var _ Service = (*MemoryService)(nil)
