// Package server implements the MCP (Model Context Protocol) server for synthetic
// text image generation.
//
// This package provides a JSON-RPC 2.0 server that exposes the rendering pipeline
// through the MCP protocol, so an MCP client can produce labeled OCR training
// samples and inspect their boxes.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - text_render: Render a sample and return it as base64 PNG with its boxes
//   - text_render_save: Render a sample and write its files to a directory
//   - mask_boxes: Decode bounding boxes from a saved instance mask
//
// Render arguments use the keys of a YAML request file. Keys left out take
// the values the server was started with.
//
// # Image Caching
//
// Background images are cached by path and reused across tool calls. The
// cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A sample rejected by the contrast check is not an error: the result carries
// outcome.accepted = false and the reason.
//
// # Usage
//
//	srv := server.New(config.Default(), logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
