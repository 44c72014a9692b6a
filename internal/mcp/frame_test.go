package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"
)

func TestEncode(t *testing.T) {
	req := NewRequest(1, MethodToolsCall, M{
		"name": ToolEcho,
		"arguments": M{
			"message": "hello",
		},
	})

	b, err := Encode(req)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !bytes.HasSuffix(b, []byte("\n")) {
		t.Errorf("Encode() frame missing newline terminator: %q", b)
	}

	if bytes.Count(b, []byte("\n")) != 1 {
		t.Errorf("Encode() frame contains embedded newline: %q", b)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSuffix(b, []byte("\n")), &decoded); err != nil {
		t.Fatalf("Encode() produced invalid json: %v", err)
	}
	if decoded["jsonrpc"] != "2.0" {
		t.Errorf("Encode() jsonrpc = %v, want 2.0", decoded["jsonrpc"])
	}
	if decoded["method"] != MethodToolsCall {
		t.Errorf("Encode() method = %v, want %s", decoded["method"], MethodToolsCall)
	}
}

func TestEncodeEscapesNewlines(t *testing.T) {
	req := NewRequest(1, MethodToolsCall, M{
		"name": ToolEcho,
		"arguments": M{
			"message": "line one\nline two",
		},
	})

	b, err := Encode(req)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// the payload newline must be escaped, only the terminator may be raw
	if bytes.Count(b, []byte("\n")) != 1 {
		t.Errorf("Encode() leaked raw newline from field value: %q", b)
	}
}

func TestDecodeIncomplete(t *testing.T) {
	_, err := Decode([]byte(`{"jsonrpc":"2.0","id":1,"result":{}`))
	if !errors.Is(err, ErrIncomplete) {
		t.Errorf("Decode() without terminator = %v, want ErrIncomplete", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", "{not json}\n"},
		{"empty frame", "\n"},
		{"missing version", `{"id":1,"result":{}}` + "\n"},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"result":{}}` + "\n"},
		{"neither result nor error", `{"jsonrpc":"2.0","id":1}` + "\n"},
		{"both result and error", `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":-32603,"message":"boom"}}` + "\n"},
		{"string id", `{"jsonrpc":"2.0","id":"abc","result":{}}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatalf("Decode(%q) expected error", tt.data)
			}
			if errors.Is(err, ErrIncomplete) {
				t.Fatalf("Decode(%q) reported incomplete, want malformed", tt.data)
			}
			if !apperrors.Is(err, apperrors.ErrTypeProtocol) {
				t.Errorf("Decode(%q) error type = %s, want %s", tt.data, apperrors.GetType(err), apperrors.ErrTypeProtocol)
			}
		})
	}
}

func TestDecodeResult(t *testing.T) {
	resp, err := Decode([]byte(`{"jsonrpc":"2.0","id":7,"result":{"message":"hi"}}` + "\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp.ID != 7 {
		t.Errorf("Decode() id = %d, want 7", resp.ID)
	}
	if !resp.HasResult() || resp.Error != nil {
		t.Errorf("Decode() expected result-only response, got %+v", resp)
	}

	m, err := resp.ResultMap()
	if err != nil {
		t.Fatalf("ResultMap() error = %v", err)
	}
	if m["message"] != "hi" {
		t.Errorf("ResultMap() message = %v, want hi", m["message"])
	}
}

func TestDecodeError(t *testing.T) {
	resp, err := Decode([]byte(`{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"Method not found"}}` + "\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("Decode() error member = %+v, want code %d", resp.Error, CodeMethodNotFound)
	}
	if !strings.Contains(resp.Error.Error(), "Method not found") {
		t.Errorf("Error() = %q, want message included", resp.Error.Error())
	}
}

func TestRoundTrip(t *testing.T) {
	// a device echoing a request line back verbatim as a result must decode
	// to an equivalent payload
	req := NewRequest(42, MethodToolsCall, M{
		"name": ToolEcho,
		"arguments": M{
			"message": "round trip",
			"test_id": "echo_001",
		},
	})

	encoded, err := Encode(req)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(encoded), `"id":42`) {
		t.Errorf("Encode() frame missing id: %q", encoded)
	}

	// simulate the device wrapping the params back into a response
	frame := []byte(`{"jsonrpc":"2.0","id":42,"result":` + string(mustMarshal(t, req.Params)) + "}\n")
	resp, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp.ID != req.ID {
		t.Errorf("round trip id = %d, want %d", resp.ID, req.ID)
	}

	m, err := resp.ResultMap()
	if err != nil {
		t.Fatalf("ResultMap() error = %v", err)
	}
	args, ok := m["arguments"].(map[string]interface{})
	if !ok || args["message"] != "round trip" {
		t.Errorf("round trip arguments = %v, want message preserved", m["arguments"])
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
