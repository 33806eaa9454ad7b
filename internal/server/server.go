package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ironsheep/seedream-mcp/internal/generate"
)

// Server handles MCP protocol communication for the SeedDream generation tools.
type Server struct {
	svc    *generate.Service
	logger zerolog.Logger

	// mu guards out so progress notifications emitted mid-call cannot
	// interleave with responses on the protocol stream.
	mu  sync.Mutex
	out *json.Encoder
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance around a generation service built
// from cfg. Additional service options run after the server's own wiring, so
// tests can swap the upstream invoker or the downloader.
func New(cfg generate.Config, logger zerolog.Logger, opts ...generate.ServiceOption) *Server {
	s := &Server{logger: logger}
	wired := append([]generate.ServiceOption{
		generate.WithLogger(logger),
		generate.WithProgress(s.notifyProgress),
	}, opts...)
	s.svc = generate.NewService(cfg, wired...)
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.serve(os.Stdin, os.Stdout)
}

func (s *Server) serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.mu.Lock()
	s.out = json.NewEncoder(out)
	s.mu.Unlock()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// write encodes one outbound message under the stream lock.
func (s *Server) write(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return
	}
	if err := s.out.Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode message")
	}
}

// notifyProgress forwards an upstream progress message to the client as an
// MCP logging notification. Progress is purely observational; it never
// affects a call's outcome, and delivery problems are simply logged.
func (s *Server) notifyProgress(message string) {
	s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params: map[string]interface{}{
			"level": "info",
			"data":  message,
		},
	})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "seedream-mcp",
				"version": "0.1.0",
			},
		},
	}
}
