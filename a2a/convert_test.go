package a2a

import (
	"encoding/json"
	"testing"

	"google.golang.org/genai"
)

func TestToModelPart(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		p := ToModelPart(NewTextPart("hi"))
		if p == nil || p.Text != "hi" {
			t.Errorf("got %+v", p)
		}
	})

	t.Run("file bytes", func(t *testing.T) {
		p := ToModelPart(NewFilePartWithBytes("a.png", "image/png", "aGVsbG8="))
		if p == nil || p.InlineData == nil || string(p.InlineData.Data) != "hello" {
			t.Fatalf("got %+v", p)
		}
		if p.InlineData.MIMEType != "image/png" {
			t.Errorf("MIMEType = %q", p.InlineData.MIMEType)
		}
	})

	t.Run("file bytes invalid", func(t *testing.T) {
		if p := ToModelPart(NewFilePartWithBytes("a", "x", "%%%")); p != nil {
			t.Errorf("expected nil, got %+v", p)
		}
	})

	t.Run("file uri", func(t *testing.T) {
		p := ToModelPart(NewFilePartWithURI("a", "image/png", "gs://bucket/a.png"))
		if p == nil || p.FileData == nil || p.FileData.FileURI != "gs://bucket/a.png" {
			t.Errorf("got %+v", p)
		}
	})

	t.Run("plain data becomes JSON text", func(t *testing.T) {
		p := ToModelPart(NewDataPart(map[string]any{"k": "v"}))
		if p == nil || p.Text != `{"k":"v"}` {
			t.Errorf("got %+v", p)
		}
	})
}

func TestFunctionParts_RoundTrip(t *testing.T) {
	call := &genai.Part{FunctionCall: &genai.FunctionCall{ID: "c1", Name: "lookup", Args: map[string]any{"q": "x"}}}
	wire := FromModelPart(call)

	// through JSON, as it would cross the wire
	raw, err := json.Marshal(wire)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := UnmarshalPart(raw)
	if err != nil {
		t.Fatal(err)
	}
	back := ToModelPart(decoded)
	if back == nil || back.FunctionCall == nil {
		t.Fatalf("got %+v", back)
	}
	if back.FunctionCall.ID != "c1" || back.FunctionCall.Name != "lookup" || back.FunctionCall.Args["q"] != "x" {
		t.Errorf("got %+v", back.FunctionCall)
	}

	resp := &genai.Part{FunctionResponse: &genai.FunctionResponse{Name: "lookup", Response: map[string]any{"ok": true}}}
	back = ToModelPart(FromModelPart(resp))
	if back == nil || back.FunctionResponse == nil || back.FunctionResponse.Response["ok"] != true {
		t.Errorf("got %+v", back)
	}
}

func TestFromModelPart(t *testing.T) {
	if FromModelPart(nil) != nil {
		t.Error("nil part should convert to nil")
	}
	if FromModelPart(&genai.Part{Text: "thinking", Thought: true}) != nil {
		t.Error("thoughts should be dropped")
	}
	if FromModelPart(&genai.Part{}) != nil {
		t.Error("empty part should convert to nil")
	}
	if tp, ok := FromModelPart(genai.NewPartFromText("hi")).(TextPart); !ok || tp.Text != "hi" {
		t.Error("text should convert to TextPart")
	}
	fp, ok := FromModelPart(genai.NewPartFromBytes([]byte("hello"), "text/plain")).(FilePart)
	if !ok || fp.File.Bytes != "aGVsbG8=" {
		t.Errorf("bytes should convert to FilePart, got %+v", fp)
	}
}

func TestToModelContent(t *testing.T) {
	msg := NewMessage(MessageRoleAgent, NewTextPart("a"), FilePart{Kind: "file", File: FileContent{Bytes: "%%"}}, NewTextPart("b"))
	c := ToModelContent(msg)
	if c.Role != genai.RoleModel {
		t.Errorf("Role = %q", c.Role)
	}
	if len(c.Parts) != 2 {
		t.Errorf("expected unconvertible parts dropped, got %d parts", len(c.Parts))
	}

	if ToModelContent(NewMessage(MessageRoleUser)).Role != genai.RoleUser {
		t.Error("user role expected")
	}
}
