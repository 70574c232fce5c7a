package a2a

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spetersoncode/a2ui"
)

func rpcServer(t *testing.T, fn func(w http.ResponseWriter, r *http.Request, req jsonRPCRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type")
		}
		var req jsonRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		fn(w, r, req)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeResult(w http.ResponseWriter, id any, result any) {
	resp := jsonRPCResponse{JSONRPC: "2.0", ID: id}
	resp.Result, _ = json.Marshal(result)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestClient_SendMessage(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := rpcServer(t, func(w http.ResponseWriter, r *http.Request, req jsonRPCRequest) {
			if req.Method != MethodSendMessage {
				t.Errorf("expected %s, got %s", MethodSendMessage, req.Method)
			}
			task := NewTask("task-123", "ctx-1")
			task.Status = NewTaskStatus(TaskStateCompleted)
			msg := NewMessage(MessageRoleAgent, NewTextPart("Hello back!"), NewDataPart(map[string]any{"x": 1.0}))
			task.Status.Message = &msg
			writeResult(w, req.ID, task)
		})

		task, err := NewClient(server.URL).SendText(context.Background(), "Hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.ID != "task-123" {
			t.Errorf("expected task-123, got %s", task.ID)
		}
		if task.Status.Message.TextContent() != "Hello back!" {
			t.Errorf("unexpected response text: %s", task.Status.Message.TextContent())
		}
		if _, ok := task.Status.Message.Parts[1].(DataPart); !ok {
			t.Errorf("expected DataPart, got %T", task.Status.Message.Parts[1])
		}
	})

	t.Run("message result becomes completed task", func(t *testing.T) {
		server := rpcServer(t, func(w http.ResponseWriter, r *http.Request, req jsonRPCRequest) {
			writeResult(w, req.ID, NewMessageWithContext(MessageRoleAgent, "ctx-9", nil, NewTextPart("direct")))
		})

		task, err := NewClient(server.URL).SendText(context.Background(), "Hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Status.State != TaskStateCompleted || task.ContextID != "ctx-9" {
			t.Errorf("unexpected task: %+v", task)
		}
		if task.Status.Message.TextContent() != "direct" {
			t.Errorf("unexpected text: %s", task.Status.Message.TextContent())
		}
	})

	t.Run("RPC error", func(t *testing.T) {
		server := rpcServer(t, func(w http.ResponseWriter, r *http.Request, req jsonRPCRequest) {
			json.NewEncoder(w).Encode(jsonRPCResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &jsonRPCError{Code: -32600, Message: "Invalid request"},
			})
		})

		_, err := NewClient(server.URL).SendText(context.Background(), "Hello")
		if err == nil {
			t.Fatal("expected error")
		}
		if !a2ui.IsPermanent(err) {
			t.Errorf("RPC errors should be permanent: %v", err)
		}
		if err.Error() != "RPC error -32600: Invalid request" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("retries transient HTTP errors", func(t *testing.T) {
		var calls atomic.Int32
		server := rpcServer(t, func(w http.ResponseWriter, r *http.Request, req jsonRPCRequest) {
			if calls.Add(1) < 3 {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
				return
			}
			writeResult(w, req.ID, NewTask("task-1", "ctx-1"))
		})

		client := NewClient(server.URL, WithMaxAttempts(3), WithRetryDelays(time.Millisecond, time.Millisecond))
		task, err := client.SendText(context.Background(), "Hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.ID != "task-1" {
			t.Errorf("unexpected task id %s", task.ID)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 calls, got %d", calls.Load())
		}
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := rpcServer(t, func(w http.ResponseWriter, r *http.Request, req jsonRPCRequest) {
			calls.Add(1)
			http.Error(w, "nope", http.StatusBadRequest)
		})

		client := NewClient(server.URL, WithMaxAttempts(3), WithRetryDelays(time.Millisecond, time.Millisecond))
		_, err := client.SendText(context.Background(), "Hello")
		if !a2ui.IsPermanent(err) {
			t.Errorf("expected permanent error, got %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call, got %d", calls.Load())
		}
	})
}

func TestClient_InterceptorsAndHeaders(t *testing.T) {
	server := rpcServer(t, func(w http.ResponseWriter, r *http.Request, req jsonRPCRequest) {
		if got := r.Header.Get("X-Static"); got != "yes" {
			t.Errorf("X-Static = %q", got)
		}
		if got := r.Header.Get(a2ui.ExtensionHeader); got != a2ui.ExtensionURI {
			t.Errorf("extension header = %q", got)
		}
		var params SendMessageRequest
		if err := json.Unmarshal(req.Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		if !params.Message.HasExtension(a2ui.ExtensionURI) {
			t.Error("interceptor should have declared the extension")
		}
		writeResult(w, req.ID, NewTask("t", "c"))
	})

	intercept := func(ctx context.Context, req *SendMessageRequest, header http.Header) error {
		header.Set(a2ui.ExtensionHeader, a2ui.ExtensionURI)
		req.Message.AddExtension(a2ui.ExtensionURI)
		return nil
	}
	client := NewClient(server.URL, WithHeader("X-Static", "yes"), WithInterceptors(intercept))
	if _, err := client.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveCard(t *testing.T) {
	card := &AgentCard{
		Name: "rizz",
		URL:  "http://agent.test/",
		Capabilities: AgentCapabilities{Extensions: []AgentExtension{{
			URI:    a2ui.ExtensionURI,
			Params: map[string]any{a2ui.SupportedCatalogIDsKey: []any{a2ui.StandardCatalogID}},
		}}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CardPath {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(card)
	}))
	defer server.Close()

	got, err := ResolveCard(context.Background(), server.URL+"/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "rizz" {
		t.Errorf("Name = %q", got.Name)
	}
	ext, ok := got.Extension(a2ui.ExtensionURI)
	if !ok {
		t.Fatal("expected A2UI extension on card")
	}
	if ids, _ := ext.Params[a2ui.SupportedCatalogIDsKey].([]any); len(ids) != 1 {
		t.Errorf("unexpected params: %v", ext.Params)
	}
	if NewClientFromCard(got).Endpoint() != "http://agent.test/" {
		t.Error("client should use the card URL")
	}
}
