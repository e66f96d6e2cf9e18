// ABOUTME: HTTP transport for the MCP endpoint and its event stream
// ABOUTME: Authenticates every non-OPTIONS request before routing

package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/2389/promptmesh-gateway/internal/auth"
)

// DefaultBasePath is where the call endpoint is served.
const DefaultBasePath = "/mcp"

// connectedEvent is the first and only event sent on a stream.
const connectedEvent = "data: {\"type\":\"connection\",\"status\":\"connected\"}\n\n"

// internalErrorBody is written when a request body cannot be read or parsed.
const internalErrorBody = `{"jsonrpc":"2.0","error":{"code":-32603,"message":"Internal error"}}`

// StreamObserver is told when streams open and close.
type StreamObserver interface {
	StreamOpened()
	StreamClosed()
}

// Config holds configuration for the MCP server.
type Config struct {
	Dispatcher *Dispatcher
	Verifier   *auth.Verifier
	Logger     *slog.Logger
	BasePath   string         // defaults to /mcp
	Streams    StreamObserver // optional
}

// Server implements the MCP HTTP endpoints.
type Server struct {
	dispatcher *Dispatcher
	verifier   *auth.Verifier
	logger     *slog.Logger
	basePath   string
	streams    StreamObserver
	handler    http.Handler

	closeOnce sync.Once
	done      chan struct{}
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("verifier is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	if !strings.HasPrefix(basePath, "/") {
		return nil, errors.New("base path must start with /")
	}

	s := &Server{
		dispatcher: cfg.Dispatcher,
		verifier:   cfg.Verifier,
		logger:     logger.With("component", "mcp"),
		basePath:   basePath,
		streams:    cfg.Streams,
		done:       make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+basePath, s.handleCall)
	mux.HandleFunc("GET "+basePath+"/stream", s.handleStream)
	mux.HandleFunc("/", s.handleNotFound)
	s.handler = auth.Middleware(s.verifier)(mux)

	return s, nil
}

// BasePath returns the path of the call endpoint.
func (s *Server) BasePath() string {
	return s.basePath
}

// ServeHTTP answers OPTIONS on any path without authentication and sends
// everything else through the authenticated routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		s.handlePreflight(w, r)
		return
	}
	s.handler.ServeHTTP(w, r)
}

// Close ends all open streams. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// handlePreflight is the fallback for OPTIONS requests not already answered
// by the CORS layer.
func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	h := w.Header()
	if h.Get("Access-Control-Allow-Origin") == "" {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	if h.Get("Access-Control-Allow-Headers") == "" {
		h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

// handleCall processes one JSON-RPC request sent via HTTP POST.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		s.logger.Warn("failed to read request body", "error", err)
		s.sendInternalError(w)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.logger.Warn("invalid JSON-RPC body", "error", err)
		s.sendInternalError(w)
		return
	}

	p, ok := auth.FromContext(r.Context())
	if !ok {
		// Middleware guarantees a principal; reaching here is a wiring bug.
		s.logger.Error("no principal on authenticated route")
		s.sendInternalError(w)
		return
	}

	s.logger.Debug("MCP request", "method", req.Method, "organization_id", p.OrganizationID)

	resp := s.dispatcher.Dispatch(r.Context(), p, req)
	s.sendJSON(w, resp)
}

// handleStream holds a server-sent-events connection open after announcing
// it, until the client goes away or the server closes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		s.logger.Error("no principal on authenticated route")
		s.sendInternalError(w)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, connectedEvent); err != nil {
		s.logger.Debug("stream write failed", "error", err)
		return
	}
	if err := http.NewResponseController(w).Flush(); err != nil {
		s.logger.Warn("stream flush failed", "error", err)
		return
	}

	if s.streams != nil {
		s.streams.StreamOpened()
		defer s.streams.StreamClosed()
	}

	s.logger.Debug("stream opened", "organization_id", p.OrganizationID)

	select {
	case <-r.Context().Done():
	case <-s.done:
	}

	s.logger.Debug("stream closed", "organization_id", p.OrganizationID)
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, "Not Found")
}

// sendJSON writes a response envelope with status 200.
func (s *Server) sendJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendInternalError writes the fixed 500 envelope used for transport failures.
func (s *Server) sendInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, internalErrorBody)
}
