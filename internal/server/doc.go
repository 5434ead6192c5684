// Package server implements the MCP (Model Context Protocol) server for
// the visually-accurate bounding box engine.
//
// This package provides a JSON-RPC 2.0 server that exposes the two-pass
// raster scanning engine through the MCP protocol, so MCP-compatible
// clients can compute pixel-faithful bounding boxes, crop regions and
// coordinate conversions for SVG content.
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
// Document loading:
//   - svg_load: Parse a document and report its size, viewBox and ids
//
// Bounding box scans:
//   - svg_bbox: Scan whole content or one element
//   - svg_bbox_multi: Scan several elements concurrently, with aggregate
//   - svg_bbox_sprites: Detect and scan sprite groups by id prefix
//
// Crop export:
//   - svg_render_crop: Render and crop to a computed bbox as base64 PNG
//
// Coordinate helpers:
//   - bbox_transform: Convert a box between local and global space
//   - bbox_union: Union a list of boxes
//
// # Document Caching
//
// The server maintains an in-memory cache of parsed documents keyed by
// path, invalidated by file modification time. Re-scanning an unchanged
// document never re-reads or re-parses it.
//
// # Concurrency
//
// Each scan gets its own engine and rasterizer session from the server's
// engine factory, so concurrent tool calls (and concurrent sprite member
// scans within one call) never drive a single rendering surface at once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Scan failures keep their engine-level meaning: empty content, render
// timeouts, non-invertible transforms and parse errors all arrive with
// the failing target and pass named in the error data.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
