// Package mcp serves the tool registry over the Model Context Protocol's
// stdio transport: newline-delimited JSON-RPC 2.0.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"ssactivewear-mcp/internal/tools"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "ss-activewear"
	ServerVersion   = "1.0.0"

	maxLineBytes = 10 * 1024 * 1024
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the request carries no id.
func (r rpcRequest) isNotification() bool {
	return len(r.ID) == 0
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type listToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Server answers MCP requests one line at a time.
type Server struct {
	registry *tools.Registry
	logger   *zap.Logger
}

func NewServer(registry *tools.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{registry: registry, logger: logger}
}

// Serve reads requests from r and writes responses to w until r is exhausted
// or ctx is cancelled, even while r is idle. Requests are handled
// sequentially. The reading goroutine stays blocked in Read until r yields or
// is closed.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- bytes.Clone(scanner.Bytes()):
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	out := bufio.NewWriter(w)
	for {
		var raw []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read request: %w", err)
				}
				return nil
			}
			raw = l
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		resp, ok := s.Handle(ctx, line)
		if !ok {
			continue
		}
		if _, err := out.Write(append(resp, '\n')); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}
}

// Handle processes one encoded request. The second result is false when no
// response is due (notifications).
func (s *Server) Handle(ctx context.Context, line []byte) ([]byte, bool) {
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("unparseable request", zap.Error(err))
		return s.encode(rpcResponse{ID: json.RawMessage("null"), Error: &rpcError{Code: codeParseError, Message: "Parse error"}}), true
	}
	if req.Method == "" {
		if req.isNotification() {
			return nil, false
		}
		return s.encode(rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "Invalid Request"}}), true
	}

	if req.isNotification() {
		s.logger.Debug("notification", zap.String("method", req.Method))
		return nil, false
	}
	result, rerr := s.dispatch(ctx, req)
	return s.encode(rpcResponse{ID: req.ID, Result: result, Error: rerr}), true
}

func (s *Server) dispatch(ctx context.Context, req rpcRequest) (any, *rpcError) {
	switch req.Method {
	case "initialize":
		return initializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: ServerName, Version: ServerVersion},
		}, nil
	case "ping", "notifications/initialized", "notifications/cancelled":
		return struct{}{}, nil
	case "tools/list":
		return listToolsResult{Tools: s.registry.List()}, nil
	case "tools/call":
		var p callToolParams
		if err := json.Unmarshal(req.Params, &p); err != nil || p.Name == "" {
			return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: tool name is required"}
		}
		s.logger.Debug("tools/call", zap.String("tool", p.Name))
		return s.registry.Call(ctx, p.Name, p.Arguments), nil
	}
	return nil, &rpcError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method}
}

func (s *Server) encode(resp rpcResponse) []byte {
	resp.JSONRPC = "2.0"
	b, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		b, _ = json.Marshal(rpcResponse{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   &rpcError{Code: codeInternalError, Message: "Internal error"},
		})
	}
	return b
}
