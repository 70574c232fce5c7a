package a2a

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spetersoncode/a2ui"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// DefaultMaxBodyBytes bounds the size of a request body.
const DefaultMaxBodyBytes int64 = 4 << 20

// Handler serves an agent over JSON-RPC: the agent card at CardPath and
// message/send (plus message/stream when the executor streams) at "/".
type Handler struct {
	card     *AgentCard
	executor Executor
	logger   *slog.Logger
	maxBody  int64
	mux      *http.ServeMux
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the handler's logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithMaxBodyBytes sets the largest request body accepted.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxBody = n
	}
}

// NewHandler creates a handler serving card and dispatching to executor.
func NewHandler(card *AgentCard, executor Executor, opts ...HandlerOption) *Handler {
	h := &Handler{
		card:     card,
		executor: executor,
		logger:   slog.Default(),
		maxBody:  DefaultMaxBodyBytes,
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.mux.HandleFunc("GET "+CardPath, h.serveCard)
	h.mux.HandleFunc("POST /{$}", h.serveRPC)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) serveCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.card); err != nil {
		h.logger.Error("failed to write agent card", "error", err)
	}
}

func (h *Handler) serveRPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req jsonRPCRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		writeRPCError(w, nil, codeParseError, "parse error: "+err.Error())
		return
	}
	if req.JSONRPC != "2.0" {
		writeRPCError(w, req.ID, codeInvalidRequest, "jsonrpc must be 2.0")
		return
	}

	var params SendMessageRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		writeRPCError(w, req.ID, codeInvalidParams, "invalid params: "+err.Error())
		return
	}

	log := h.logger.With(
		"method", req.Method,
		"message_id", params.Message.MessageID,
		"context_id", params.ContextID(),
	)

	cc := &CallContext{
		RequestedExtensions: r.Header.Values(a2ui.ExtensionHeader),
		BaseURL:             baseURL(r),
	}
	ctx := WithCallContext(r.Context(), cc)

	switch req.Method {
	case MethodSendMessage:
		task, err := h.executor.Execute(ctx, params)
		if err != nil {
			log.Error("request failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			writeRPCError(w, req.ID, codeInternalError, err.Error())
			return
		}
		setActivated(w, cc)
		result, err := json.Marshal(task)
		if err != nil {
			writeRPCError(w, req.ID, codeInternalError, err.Error())
			return
		}
		writeRPC(w, jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
		log.Info("request completed", "task_state", task.Status.State, "duration_ms", time.Since(start).Milliseconds())

	case MethodStreamMessage:
		se, ok := h.executor.(StreamExecutor)
		if !ok {
			writeRPCError(w, req.ID, codeMethodNotFound, "streaming not supported")
			return
		}
		h.stream(w, req.ID, se.ExecuteStream(ctx, params), cc, log)
		log.Info("stream completed", "duration_ms", time.Since(start).Milliseconds())

	default:
		writeRPCError(w, req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
}

// stream writes events as SSE. The activated extensions header is set
// once the first event arrives, after session preparation has run.
func (h *Handler) stream(w http.ResponseWriter, id any, events <-chan Event, cc *CallContext, log *slog.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		writeRPCError(w, id, codeInternalError, "streaming not supported")
		for range events {
		}
		return
	}

	started := false
	for ev := range events {
		if !started {
			setActivated(w, cc)
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			started = true
		}
		result, err := json.Marshal(ev)
		if err != nil {
			log.Error("failed to serialize event", "error", err)
			continue
		}
		data, _ := json.Marshal(jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			log.Error("failed to write SSE event", "error", err)
			for range events {
			}
			return
		}
		flusher.Flush()
	}
}

func setActivated(w http.ResponseWriter, cc *CallContext) {
	if activated := cc.Activated(); len(activated) > 0 {
		w.Header().Set(a2ui.ExtensionHeader, strings.Join(activated, ", "))
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}

func writeRPC(w http.ResponseWriter, resp jsonRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeRPCError(w http.ResponseWriter, id any, code int, msg string) {
	writeRPC(w, jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &jsonRPCError{Code: code, Message: msg},
	})
}
