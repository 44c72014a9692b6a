package mcp

import "encoding/json"

const (
	JsonRPCVersion = "2.0"
)

// Documents: https://modelcontextprotocol.io/docs/concepts/transports

// Request
//
//	{
//		jsonrpc: "2.0",
//		id: number,
//		method: string,
//		params?: object
//	}
//
// The esp32 transport is line delimited, so ids are plain integers assigned
// by the correlator, never strings.
type Request struct {
	JsonRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  M      `json:"params,omitempty"`
}

func NewRequest(id int64, method string, params M) *Request {
	return &Request{
		JsonRPC: JsonRPCVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// Response
//
//	{
//		jsonrpc: "2.0",
//		id: number,
//		result?: object,
//		error?: {
//			code: number,
//			message: string,
//			data?: unknown
//		}
//	}
//
// Result stays raw until a caller asks for it; tool helpers decode it into
// their own shapes.
type Response struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// HasResult reports whether the response carries a result member.
func (r *Response) HasResult() bool {
	return len(r.Result) != 0
}

// UnmarshalResult decodes the result member into v.
func (r *Response) UnmarshalResult(v interface{}) error {
	return json.Unmarshal(r.Result, v)
}

// ResultMap decodes the result member into a generic map.
func (r *Response) ResultMap() (M, error) {
	m := M{}
	if !r.HasResult() {
		return m, nil
	}
	if err := json.Unmarshal(r.Result, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Notifications
//
//	{
//		jsonrpc: "2.0",
//		method: string,
//		params?: object
//	}
type Notification struct {
	JsonRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  M      `json:"params,omitempty"`
}
