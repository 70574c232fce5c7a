package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// appendScript appends an event and applies its delta in one step.
// KEYS[1] = session marker key
// KEYS[2] = event list key
// KEYS[3] = state hash key
// ARGV[1] = encoded event
// ARGV[2..] = alternating state key, encoded value
var appendScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
    return redis.error_reply("session not found")
end
redis.call("RPUSH", KEYS[2], ARGV[1])
for i = 2, #ARGV, 2 do
    redis.call("HSET", KEYS[3], ARGV[i], ARGV[i + 1])
end
return redis.call("LLEN", KEYS[2])
`)

// RedisService stores sessions in Redis: a marker key per session, the
// event log in a list and the state projection in a hash.
type RedisService struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisService.
type RedisOption func(*RedisService)

// WithKeyPrefix sets the key prefix (default: "a2ui:session:").
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisService) {
		s.prefix = prefix
	}
}

// WithTTL expires idle sessions after d. Zero keeps sessions forever.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisService) {
		s.ttl = d
	}
}

// NewRedisService creates a service backed by an existing client.
func NewRedisService(client *redis.Client, opts ...RedisOption) *RedisService {
	s := &RedisService{
		client: client,
		prefix: "a2ui:session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisClient creates a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *RedisService) keys(id string) (marker, events, state string) {
	base := s.prefix + id
	return base, base + ":events", base + ":state"
}

// Create starts an empty session.
func (s *RedisService) Create(ctx context.Context, id string) (*Session, error) {
	id = newID(id)
	marker, _, _ := s.keys(id)
	ok, err := s.client.SetNX(ctx, marker, time.Now().UTC().Format(time.RFC3339Nano), s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis create session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, id)
	}
	return newSession(s, id), nil
}

// Get returns the session handle.
func (s *RedisService) Get(ctx context.Context, id string) (*Session, error) {
	marker, _, _ := s.keys(id)
	n, err := s.client.Exists(ctx, marker).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return newSession(s, id), nil
}

// Append adds an event and applies its delta atomically.
func (s *RedisService) Append(ctx context.Context, id string, ev Event) error {
	marker, events, state := s.keys(id)

	encoded, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	args := make([]any, 0, 1+2*len(ev.StateDelta))
	args = append(args, string(encoded))
	for k, v := range ev.StateDelta {
		args = append(args, k, string(v))
	}

	if err := appendScript.Run(ctx, s.client, []string{marker, events, state}, args...).Err(); err != nil {
		if strings.Contains(err.Error(), "session not found") {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("redis append event: %w", err)
	}

	if s.ttl > 0 {
		pipe := s.client.Pipeline()
		for _, key := range []string{marker, events, state} {
			pipe.Expire(ctx, key, s.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis refresh ttl: %w", err)
		}
	}
	return nil
}

// Events returns the session log in append order.
func (s *RedisService) Events(ctx context.Context, id string) ([]Event, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	_, events, _ := s.keys(id)
	raw, err := s.client.LRange(ctx, events, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis read events: %w", err)
	}
	out := make([]Event, 0, len(raw))
	for _, r := range raw {
		var ev Event
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// State returns the current projection.
func (s *RedisService) State(ctx context.Context, id string) (State, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	_, _, state := s.keys(id)
	fields, err := s.client.HGetAll(ctx, state).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis read state: %w", err)
	}
	st := make(State, len(fields))
	for k, v := range fields {
		st[k] = json.RawMessage(v)
	}
	return st, nil
}

var _ Service = (*RedisService)(nil)
