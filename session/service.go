package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for session lookups.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExists is returned when creating a session whose id is taken.
	ErrExists = errors.New("session already exists")
)

// Service stores sessions. Implementations must be thread-safe and must
// apply each appended event to the state projection atomically.
type Service interface {
	// Create starts an empty session. An empty id gets a generated one.
	Create(ctx context.Context, id string) (*Session, error)

	// Get returns the session handle, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Append adds an event to the session log.
	Append(ctx context.Context, id string, ev Event) error

	// Events returns the session log in append order.
	Events(ctx context.Context, id string) ([]Event, error)

	// State returns the current projection of the session log.
	State(ctx context.Context, id string) (State, error)
}

// Open returns the session with the given id, creating it if needed.
func Open(ctx context.Context, svc Service, id string) (*Session, error) {
	if id != "" {
		sess, err := svc.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	sess, err := svc.Create(ctx, id)
	if errors.Is(err, ErrExists) {
		// lost a creation race
		return svc.Get(ctx, id)
	}
	return sess, err
}

// Session is a handle to one session in a Service.
type Session struct {
	ID  string
	svc Service
}

func newSession(svc Service, id string) *Session {
	return &Session{ID: id, svc: svc}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// State returns the session's current state.
func (s *Session) State(ctx context.Context) (State, error) {
	return s.svc.State(ctx, s.ID)
}

// Events returns the session log.
func (s *Session) Events(ctx context.Context) ([]Event, error) {
	return s.svc.Events(ctx, s.ID)
}

// Append adds an event to the session log.
func (s *Session) Append(ctx context.Context, ev Event) error {
	return s.svc.Append(ctx, s.ID, ev)
}

// AppendDelta appends an event carrying delta.
func (s *Session) AppendDelta(ctx context.Context, author, invocationID string, delta map[string]any) error {
	ev, err := NewEvent(invocationID, author, delta)
	if err != nil {
		return err
	}
	if err := s.Append(ctx, ev); err != nil {
		return fmt.Errorf("append state delta: %w", err)
	}
	return nil
}
