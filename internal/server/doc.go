// Package server implements the MCP (Model Context Protocol) server for comic
// panel extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes panel detection and
// extraction through the MCP protocol, so an MCP client can inspect a page,
// tune the detection settings against a preview, and then write the panels.
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
//   - image_load: Load a page and get its metadata
//   - image_unload: Drop one page, or all pages, from the image cache
//   - panels_detect: Detect panels and return their boxes
//   - panels_extract: Detect panels and write them to a directory
//   - panels_preview: Render detected panels over the page as PNG
//
// The panel tools accept optional overrides of the segmentation settings
// (threshold, kernel_size, iterations, min_area, buffer_ratio,
// row_bucket_height, renumber). Unset arguments keep the values the server
// was started with.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, so detecting, previewing and
// extracting the same page decodes it once. Entries stay until image_unload
// removes them or the server process exits.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or out-of-range arguments, -32000 for
//     any other tool failure
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(config.Default(), logger, version)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
package server
