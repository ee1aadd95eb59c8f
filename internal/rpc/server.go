package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeJamon/goMIXR/internal/metrics"
)

const maxRequestBody = 1 << 20

// Options configures a Server.
type Options struct {
	Ledger  Ledger
	History History // nil disables the history method
	Hub     *Hub    // nil disables /ws
	Timeout time.Duration
	Metrics bool
	Logger  *slog.Logger
}

// Server handles JSON-RPC 2.0 requests. Requests that name a caller are
// trusted to speak for that address; authentication belongs in front of
// the server.
type Server struct {
	registry *MethodRegistry
	opts     Options
	log      *slog.Logger
}

// NewServer creates a server with every ledger method registered.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		registry: NewMethodRegistry(),
		opts:     opts,
		log:      opts.Logger.With("component", "rpc"),
	}
	registerAllMethods(s.registry)
	return s
}

// Methods returns the registered method names.
func (s *Server) Methods() []string { return s.registry.List() }

// Handler returns the HTTP routes: JSON-RPC on POST /, the event stream on
// /ws, Prometheus on /metrics and a health check on /healthz.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Post("/", s.ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.opts.Hub != nil {
		r.Get("/ws", s.opts.Hub.ServeHTTP)
	}
	if s.opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// ServeHTTP implements http.Handler for a single JSON-RPC request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeResponse(w, nil, nil, RpcErrorInvalidRequest("failed to read request body"))
		return
	}
	defer r.Body.Close()

	var req JsonRpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeResponse(w, nil, nil, RpcErrorParse("invalid JSON: "+err.Error()))
		return
	}
	if req.JsonRpc != "2.0" {
		s.writeResponse(w, req.ID, nil, RpcErrorInvalidRequest("jsonrpc must be \"2.0\""))
		return
	}
	if req.Method == "" {
		s.writeResponse(w, req.ID, nil, RpcErrorInvalidRequest("missing method"))
		return
	}

	ctx := r.Context()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	rpcCtx := &RpcContext{
		Context:  ctx,
		Ledger:   s.opts.Ledger,
		History:  s.opts.History,
		ClientIP: getClientIP(r),
	}

	result, rpcErr := s.executeMethod(req.Method, req.Params, rpcCtx)
	s.writeResponse(w, req.ID, result, rpcErr)
}

func (s *Server) executeMethod(method string, params json.RawMessage, ctx *RpcContext) (any, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}
	start := time.Now()
	result, rpcErr := handler(ctx, params)
	if rpcErr != nil {
		s.log.Debug("method failed", "method", method, "client", ctx.ClientIP, "code", rpcErr.Code, "error", rpcErr.Message)
		return nil, rpcErr
	}
	s.log.Debug("method served", "method", method, "client", ctx.ClientIP, "elapsed", time.Since(start))
	return result, nil
}

func (s *Server) writeResponse(w http.ResponseWriter, id any, result any, rpcErr *RpcError) {
	resp := JsonRpcResponse{JsonRpc: "2.0", ID: id}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("failed to write response", "error", err)
	}
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
