// Package rpc serves the ledger over JSON-RPC 2.0 on HTTP and streams
// committed operations over a websocket.
package rpc

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/storage/journal"
)

// JSON-RPC 2.0 Request
type JsonRpcRequest struct {
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// JSON-RPC 2.0 Response
type JsonRpcResponse struct {
	JsonRpc string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *RpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

// Ledger gives handlers exclusive access to the engine for the duration of
// fn.
type Ledger interface {
	Exec(fn func(e *ledger.Engine) error) error
}

// History is the read side of the operation journal.
type History interface {
	List(ctx context.Context, f journal.Filter) ([]journal.Entry, error)
}

// RpcContext contains request-specific information
type RpcContext struct {
	Context  context.Context
	Ledger   Ledger
	History  History
	ClientIP string
}

// MethodHandler handles one method. params may be nil.
type MethodHandler func(ctx *RpcContext, params json.RawMessage) (any, *RpcError)

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered names, sorted.
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}
