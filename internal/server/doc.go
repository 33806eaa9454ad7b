// Package server implements the MCP (Model Context Protocol) server for the
// SeedDream image generation tools.
//
// This package provides a JSON-RPC 2.0 server that exposes remote image
// generation through the MCP protocol. It's designed to work with Claude and
// other MCP-compatible clients.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - generate_image: Generate images for one prompt, download them locally,
//     and report paths, dimensions, the seed used, and source URLs.
//   - generate_image_batch: Generate for up to five prompts concurrently,
//     collecting each prompt's success or failure independently.
//
// The advertised size parameter depends on the configured model version:
// image_size (preset or explicit dimensions) for v4, aspect_ratio for v3.
//
// # Error Handling
//
// Tool-level faults are reported in-band: the tools/call result carries a
// content list plus an isError flag, and callers inspect the flag rather than
// parsing text. JSON-RPC error responses are reserved for protocol problems
// such as malformed params or an unknown tool name. A missing FAL_KEY makes
// generation calls fail with setup instructions while the server keeps
// answering tools/list and ping.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
