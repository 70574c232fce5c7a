package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spetersoncode/a2ui"
	"github.com/spetersoncode/a2ui/internal/retry"
)

// JSON-RPC methods.
const (
	MethodSendMessage   = "message/send"
	MethodStreamMessage = "message/stream"
)

// Interceptor inspects or modifies an outbound request before it is sent.
// Headers set on header are sent with the request.
type Interceptor func(ctx context.Context, req *SendMessageRequest, header http.Header) error

// Client is an A2A protocol client for calling remote agents.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	header       http.Header
	interceptors []Interceptor
	retry        retry.Config
	logger       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// WithInterceptors adds request interceptors, run in order.
func WithInterceptors(interceptors ...Interceptor) ClientOption {
	return func(c *Client) {
		c.interceptors = append(c.interceptors, interceptors...)
	}
}

// WithMaxAttempts bounds retries of transient failures. 1 disables retries.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		c.retry.MaxAttempts = n
	}
}

// WithRetryDelays sets the initial and maximum backoff delays.
func WithRetryDelays(initial, max time.Duration) ClientOption {
	return func(c *Client) {
		c.retry.InitialDelay = initial
		c.retry.MaxDelay = max
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new A2A client for the given endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		retry:      retry.DefaultConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("retrying agent call", "endpoint", c.endpoint, "attempt", attempt, "delay", delay, "error", err)
	}
	return c
}

// NewClientFromCard creates a client for the endpoint a card advertises.
func NewClientFromCard(card *AgentCard, opts ...ClientOption) *Client {
	return NewClient(card.URL, opts...)
}

// Endpoint returns the JSON-RPC endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// jsonRPCRequest represents a JSON-RPC 2.0 request.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// jsonRPCResponse represents a JSON-RPC 2.0 response.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

// jsonRPCError represents a JSON-RPC 2.0 error.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RPCError is a JSON-RPC error returned by the remote agent.
type RPCError struct {
	Code    int
	Message string
}

// Error returns the formatted RPC error.
func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// SendMessage sends a message to the remote agent and returns the task.
// A bare message result is returned as a completed task holding it.
// Transient failures are retried.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Task, error) {
	header := c.header.Clone()
	for _, intercept := range c.interceptors {
		if err := intercept(ctx, &req, header); err != nil {
			return nil, fmt.Errorf("interceptor: %w", err)
		}
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	body, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  MethodSendMessage,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := retry.Do(ctx, c.retry, func(ctx context.Context) (json.RawMessage, error) {
		return c.call(ctx, body, header)
	})
	if err != nil {
		return nil, err
	}
	return decodeResult(result)
}

// SendText is a convenience method that sends a text message.
func (c *Client) SendText(ctx context.Context, text string) (*Task, error) {
	return c.SendMessage(ctx, SendMessageRequest{
		Message: NewMessage(MessageRoleUser, NewTextPart(text)),
	})
}

func (c *Client) call(ctx context.Context, body []byte, header http.Header) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("agent returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		return nil, retry.Classify(msg, resp.StatusCode, retry.ParseRetryAfter(resp.Header.Get("Retry-After")), nil)
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if rpcResp.Error != nil {
		rpcErr := &RPCError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
		return nil, a2ui.NewPermanentError("", 0, rpcErr)
	}
	return rpcResp.Result, nil
}

func decodeResult(result json.RawMessage) (*Task, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(result, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	if probe.Kind == "message" {
		var msg Message
		if err := json.Unmarshal(result, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse message: %w", err)
		}
		task := NewTask(uuid.New().String(), "")
		if msg.ContextID != nil {
			task.ContextID = *msg.ContextID
		}
		task.Status = NewTaskStatusWithMessage(TaskStateCompleted, &msg)
		return task, nil
	}

	var task Task
	if err := json.Unmarshal(result, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task: %w", err)
	}
	return &task, nil
}

// ResolveCard fetches the agent card published under baseURL.
func ResolveCard(ctx context.Context, baseURL string, httpClient *http.Client) (*AgentCard, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	url := strings.TrimSuffix(baseURL, "/") + CardPath

	cfg := retry.DefaultConfig()
	return retry.Do(ctx, cfg, func(ctx context.Context) (*AgentCard, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch agent card: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg := fmt.Sprintf("fetch agent card %s: HTTP %d", url, resp.StatusCode)
			return nil, retry.Classify(msg, resp.StatusCode, retry.ParseRetryAfter(resp.Header.Get("Retry-After")), nil)
		}

		var card AgentCard
		if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
			return nil, fmt.Errorf("decode agent card: %w", err)
		}
		return &card, nil
	})
}
