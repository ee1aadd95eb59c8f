package rpc

import (
	"errors"

	"github.com/LeJamon/goMIXR/internal/core/failure"
)

// JSON-RPC 2.0 reserved codes, then one code per failure kind.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603

	CodeArithmetic      = 1001
	CodeStateInvariant  = 1002
	CodePolicyViolation = 1003
	CodeUnauthorized    = 1004
	CodeUnavailable     = 1005
)

type RpcError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *RpcError) Error() string {
	return e.Message
}

func NewRpcError(code int, kind, message string) *RpcError {
	return &RpcError{Code: code, Kind: kind, Message: message}
}

func RpcErrorParse(message string) *RpcError {
	return NewRpcError(CodeParseError, "parseError", message)
}

func RpcErrorInvalidRequest(message string) *RpcError {
	return NewRpcError(CodeInvalidRequest, "invalidRequest", message)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(CodeInvalidParams, "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(CodeMethodNotFound, "unknownMethod", "Unknown method: "+method)
}

func RpcErrorUnavailable(message string) *RpcError {
	return NewRpcError(CodeUnavailable, "unavailable", message)
}

var kindCodes = map[failure.Kind]int{
	failure.KindArithmetic:      CodeArithmetic,
	failure.KindStateInvariant:  CodeStateInvariant,
	failure.KindPolicyViolation: CodePolicyViolation,
	failure.KindUnauthorized:    CodeUnauthorized,
}

// FromError maps a ledger error to its RPC error by failure kind.
func FromError(err error) *RpcError {
	var rpcErr *RpcError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	kind := failure.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		return NewRpcError(CodeInternal, "internal", err.Error())
	}
	return NewRpcError(code, kind.String(), err.Error())
}
