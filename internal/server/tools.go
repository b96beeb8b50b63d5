package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func layerGeometrySchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"offset_x": map[string]interface{}{
				"type":        "number",
				"description": "X position of the layer's top-left corner on the overlay",
			},
			"offset_y": map[string]interface{}{
				"type":        "number",
				"description": "Y position of the layer's top-left corner on the overlay",
			},
			"display_width": map[string]interface{}{
				"type":        "number",
				"description": "Width of the layer as drawn (informational)",
			},
			"display_height": map[string]interface{}{
				"type":        "number",
				"description": "Height of the layer as drawn (informational)",
			},
			"original_width": map[string]interface{}{
				"type":        "integer",
				"description": "Pixel width of the original image; the mask has this width",
			},
			"original_height": map[string]interface{}{
				"type":        "integer",
				"description": "Pixel height of the original image; the mask has this height",
			},
		},
		"required": []string{"offset_x", "offset_y", "original_width", "original_height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and the layer geometry to use when building masks for it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Selection
		{
			Name:        "selection_add_rectangle",
			Description: "Add a rectangular selection in display coordinates. Negative width or height is accepted and flips the corner.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Left edge X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Top edge Y coordinate",
					},
					"width": map[string]interface{}{
						"type":        "number",
						"description": "Rectangle width",
					},
					"height": map[string]interface{}{
						"type":        "number",
						"description": "Rectangle height",
					},
					"region_id": map[string]interface{}{
						"type":        "integer",
						"description": "Optional tag correlating this rectangle with per-region instructions",
					},
				},
				"required": []string{"x", "y", "width", "height"},
			},
		},
		{
			Name:        "selection_add_stroke",
			Description: "Add a freehand brush stroke. The path must start with a move command; strokes are drawn with round caps and joins.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"commands": map[string]interface{}{
						"type":        "array",
						"description": "Path commands in display coordinates",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"type": map[string]interface{}{
									"type": "string",
									"enum": []string{"move", "line", "quad"},
								},
								"coords": map[string]interface{}{
									"type":        "array",
									"items":       map[string]interface{}{"type": "number"},
									"description": "[x, y] for move and line, [cx, cy, x, y] for quad",
								},
							},
							"required": []string{"type", "coords"},
						},
					},
					"stroke_width": map[string]interface{}{
						"type":        "number",
						"description": "Brush width in pixels. Default is the server's default stroke width (30)",
					},
				},
				"required": []string{"commands"},
			},
		},
		{
			Name:        "selection_remove",
			Description: "Remove one selection primitive by id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{
						"type":        "integer",
						"description": "Primitive id returned when it was added",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "selection_list",
			Description: "List the current selection primitives in compositing order, plus the tagged regions.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "selection_clear",
			Description: "Remove every selection primitive.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Mask
		{
			Name:        "mask_build",
			Description: "Composite the current selection into a grayscale PNG mask the size of the original image. White pixels are editable, black pixels are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"geometry": layerGeometrySchema("Where the target layer sits on the overlay and its original size"),
					"expansion_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Rectangle inflation as a fraction of the larger side. Default 0.01",
					},
					"default_stroke_width": map[string]interface{}{
						"type":        "number",
						"description": "Width for strokes added without one. Default 30",
					},
					"binary": map[string]interface{}{
						"type":        "boolean",
						"description": "Threshold anti-aliased edges so the mask holds only 0 and 255. Default false",
						"default":     false,
					},
				},
				"required": []string{"geometry"},
			},
		},
		{
			Name:        "mask_preview",
			Description: "Tint the current selection over the image to check it before use.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"geometry": layerGeometrySchema("Optional layer geometry. Default is the image itself at the overlay origin"),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Tint color as #RRGGBB. Default #FF3B30",
					},
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Tint opacity from 0 to 1. Default 0.5",
					},
				},
				"required": []string{"path"},
			},
		},

		// Edges
		{
			Name:        "edge_snap",
			Description: "Find the strongest edge near a point, for magnetic cursor snapping. Returns the point unchanged with strength 0 if no edge qualifies.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Query X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Query Y coordinate",
					},
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Search radius in pixels, at most 256. Default 20",
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Gradient magnitude a pixel must exceed to be a snap target. 0 accepts any edge. Default 50",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "edge_map",
			Description: "Render the Sobel gradient magnitude of the whole image as a grayscale PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"smooth": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur radius applied first. Default 0 (no blur)",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
