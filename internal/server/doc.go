// Package server implements the MCP (Model Context Protocol) server for
// selection masks and edge snapping.
//
// The server keeps an editing session: a cache of loaded images and the
// selection the user has drawn over them. Clients add rectangles and brush
// strokes, then build a mask for an image-editing API or preview it tinted
// over the image.
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
// Image:
//   - image_load: Load image, get metadata and its layer geometry
//
// Selection:
//   - selection_add_rectangle: Add a rectangle, optionally tagged with a region id
//   - selection_add_stroke: Add a freehand brush stroke
//   - selection_remove: Remove a primitive by id
//   - selection_list: List primitives and tagged regions
//   - selection_clear: Remove everything
//
// Mask:
//   - mask_build: Composite the selection into a PNG mask
//   - mask_preview: Tint the selection over the image
//
// Edges:
//   - edge_snap: Snap a point to the strongest nearby edge
//   - edge_map: Render the Sobel gradient magnitude
//
// # Coordinates
//
// Selection coordinates are in display space, the overlay the user draws
// on. mask_build maps them into the image through the layer geometry
// argument; image_load returns the geometry of an image placed unscaled at
// the overlay origin.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, e.g. "no selection drawn"
//
// # Usage
//
//	srv := server.NewWithConfig(config.FromEnv())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
