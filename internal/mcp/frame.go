package mcp

import (
	"bytes"
	"encoding/json"
	"errors"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"
)

// Messages are newline delimited: one UTF-8 JSON object per line. The json
// encoder escapes any newline inside field values, so the terminator is the
// only raw '\n' on the wire.

// ErrIncomplete reports that the buffer does not contain a full frame yet.
// Callers should keep buffering, this is not a protocol violation.
var ErrIncomplete = errors.New("incomplete frame")

// Encode serializes a request into a single newline-terminated frame.
func Encode(req *Request) ([]byte, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Internal("encode request", err)
	}
	if bytes.IndexByte(b, '\n') >= 0 {
		// invariant: json.Marshal escapes newlines inside strings
		return nil, apperrors.Internal("encoded request contains raw newline", nil)
	}
	return append(b, '\n'), nil
}

// Decode parses one newline-terminated response frame. It returns
// ErrIncomplete when no terminator is present yet, and a protocol error when
// the frame is not a valid JSON-RPC 2.0 response carrying exactly one of
// result and error.
func Decode(data []byte) (*Response, error) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil, ErrIncomplete
	}

	line := bytes.TrimSpace(data[:i])
	if len(line) == 0 {
		return nil, apperrors.MalformedMessage("empty frame", nil)
	}

	resp := &Response{}
	if err := json.Unmarshal(line, resp); err != nil {
		return nil, apperrors.MalformedMessage("invalid json", err)
	}

	if resp.JsonRPC != JsonRPCVersion {
		return nil, apperrors.MalformedMessage("unexpected jsonrpc version "+resp.JsonRPC, nil)
	}

	// Exactly one of result/error. A response carrying both, or neither, is
	// rejected before it can reach the tool layer.
	if resp.HasResult() == (resp.Error != nil) {
		return nil, apperrors.MalformedMessage("response must carry exactly one of result and error", nil)
	}

	return resp, nil
}
