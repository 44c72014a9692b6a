package mcp

import (
	"fmt"
)

// enum ErrorCode {
// 	// Standard JSON-RPC error codes
// 	ParseError = -32700,
// 	InvalidRequest = -32600,
// 	MethodNotFound = -32601,
// 	InvalidParams = -32602,
// 	InternalError = -32603
// }

// Error
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
