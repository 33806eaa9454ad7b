package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/seedream-mcp/internal/generate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke ("generate_image" or "generate_image_batch").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ContentBlock is one entry in a tool result's content list. This server only
// ever produces text blocks.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the uniform result shape of both tools: a list of content
// blocks plus an error indicator. Callers inspect IsError rather than parsing
// the text to detect failure.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

func textResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

func errorResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentBlock{{Type: "text", Text: text}}, IsError: true}
}

// handleToolsCall processes a tools/call request and executes the specified
// tool.
//
// Tool-level faults (bad parameters, missing credential, upstream failure)
// are reported in-band as a ToolResult with IsError set, never as JSON-RPC
// errors and never as a crash. JSON-RPC errors are reserved for protocol
// problems: malformed params JSON or an unknown tool name.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error) {
	switch name {
	case "generate_image":
		return s.handleGenerateImage(ctx, args), nil
	case "generate_image_batch":
		return s.handleGenerateImageBatch(ctx, args), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) handleGenerateImage(ctx context.Context, args json.RawMessage) *ToolResult {
	var req generate.GenerationRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}

	report, err := s.svc.Generate(ctx, &req)
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(report)
}

func (s *Server) handleGenerateImageBatch(ctx context.Context, args json.RawMessage) *ToolResult {
	var req generate.BatchRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}

	report, err := s.svc.GenerateBatch(ctx, &req)
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(report)
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
