package errors

import (
	"fmt"
	"time"
)

// 连接相关错误

// ConnectTimeout 创建连接超时错误
func ConnectTimeout(endpoint string, timeout time.Duration) *AppError {
	return New(ErrTypeConnect, fmt.Sprintf("connect to %s timed out after %s", endpoint, timeout), nil).WithStack()
}

// ConnectRefused 创建连接被拒绝错误
func ConnectRefused(endpoint string, cause error) *AppError {
	return New(ErrTypeConnect, fmt.Sprintf("connection refused by %s, is the mcp server running?", endpoint), cause).WithStack()
}

// EndpointNotFound 创建端点不存在错误
func EndpointNotFound(endpoint string, cause error) *AppError {
	return New(ErrTypeConnect, fmt.Sprintf("endpoint not found: %s", endpoint), cause).WithStack()
}

// PermissionDenied 创建权限不足错误
func PermissionDenied(endpoint string, cause error) *AppError {
	return New(ErrTypeConnect, fmt.Sprintf("permission denied: %s", endpoint), cause).WithStack()
}

// NotConnected 创建未连接错误
func NotConnected() *AppError {
	return New(ErrTypeConnect, "not connected to mcp server", nil)
}

// 传输相关错误

// SendFailed 创建发送失败错误
func SendFailed(cause error) *AppError {
	return New(ErrTypeIO, "failed to send message", cause).WithStack()
}

// ReceiveFailed 创建接收失败错误
func ReceiveFailed(cause error) *AppError {
	return New(ErrTypeIO, "failed to receive message", cause).WithStack()
}

// ConnectionClosed 创建对端关闭错误
func ConnectionClosed() *AppError {
	return New(ErrTypeIO, "connection closed by peer", nil)
}

// Timeout 创建响应超时错误
func Timeout(method string, timeout time.Duration) *AppError {
	return New(ErrTypeTimeout, fmt.Sprintf("no response for %s within %s", method, timeout), nil)
}

// 协议相关错误

// MalformedMessage 创建消息格式错误
func MalformedMessage(detail string, cause error) *AppError {
	return New(ErrTypeProtocol, fmt.Sprintf("malformed message: %s", detail), cause)
}

// UnknownID 创建未知请求 ID 错误
func UnknownID(id int64) *AppError {
	return New(ErrTypeCorrelation, fmt.Sprintf("response for unknown request id %d", id), nil)
}

// DuplicateID 创建重复请求 ID 错误
func DuplicateID(id int64) *AppError {
	return New(ErrTypeCorrelation, fmt.Sprintf("request id %d already pending", id), nil).WithStack()
}

// Remote 创建远端错误，code 为设备返回的 JSON-RPC 错误码
func Remote(code int, message string) *AppError {
	err := New(ErrTypeRemote, fmt.Sprintf("mcp error %d: %s", code, message), nil)
	err.Code = code
	return err
}

// 发现相关错误

// Discovery 创建设备发现错误
func Discovery(message string, cause error) *AppError {
	return New(ErrTypeDiscovery, message, cause).WithStack()
}
