package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// scanProperties are the option fields shared by every scanning tool.
// Defaults here mirror scan.DefaultOptions.
func scanProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the SVG document",
		},
		"mode": map[string]interface{}{
			"type":        "string",
			"description": "ViewBox policy: 'full' reports all rendered pixels, 'clipped' intersects with the declared viewBox. Default 'full'",
			"enum":        []string{"full", "clipped"},
			"default":     "full",
		},
		"coarse_density": map[string]interface{}{
			"type":        "number",
			"description": "First-pass sampling density in samples per document unit. Default 2",
			"default":     2,
		},
		"fine_density": map[string]interface{}{
			"type":        "number",
			"description": "Second-pass sampling density in samples per document unit; must exceed coarse_density. Default 10",
			"default":     10,
		},
		"margin": map[string]interface{}{
			"type":        "number",
			"description": "Uniform margin in document units added to the final box on every side. Default 0",
			"default":     0,
		},
		"background": map[string]interface{}{
			"type":        "string",
			"description": "'transparent' (default) or an opaque backdrop color (hex or keyword) to discriminate against by perceptual distance",
			"default":     "transparent",
		},
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "How far a pixel must differ from the background to count as content (0-255). Default 8",
			"default":     8,
		},
		"global_only": map[string]interface{}{
			"type":        "boolean",
			"description": "Skip local-space conversion (fallback for non-invertible element transforms). Default false",
			"default":     false,
		},
		"timeout_ms": map[string]interface{}{
			"type":        "integer",
			"description": "Render deadline in milliseconds. Default: no deadline",
		},
	}
}

// withTarget extends the shared scan properties with a single-target field.
func withTarget(props map[string]interface{}) map[string]interface{} {
	props["target"] = map[string]interface{}{
		"type":        "string",
		"description": "Element id to scan. Omit to scan the whole content",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Document loading
		{
			Name:        "svg_load",
			Description: "Parse an SVG document and return its canvas size, viewBox, element count and element ids. The parsed document is cached for subsequent scans.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the SVG document",
					},
				},
				"required": []string{"path"},
			},
		},

		// Bounding box scans
		{
			Name:        "svg_bbox",
			Description: "Compute the visually accurate bounding box of rendered SVG content: the tight rectangle around every non-background pixel a rasterizer produces, including strokes and anti-aliased edges. Returns the box in global and (for element targets) local coordinates.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withTarget(scanProperties()),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "svg_bbox_multi",
			Description: "Scan several element ids concurrently and return each element's bbox plus the aggregate union envelope.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": func() map[string]interface{} {
					p := scanProperties()
					p["targets"] = map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Element ids to scan",
					}
					return p
				}(),
				"required": []string{"path", "targets"},
			},
		},
		{
			Name:        "svg_bbox_sprites",
			Description: "Detect sprite groups by id naming convention (shared prefix with trailing counter, e.g. icon-01/icon-02), scan every member, and return per-member boxes, per-group union envelopes, and the whole-content bbox.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": scanProperties(),
				"required":   []string{"path"},
			},
		},

		// Crop export
		{
			Name:        "svg_render_crop",
			Description: "Render the document and return the pixels covering the computed bounding box as base64 PNG. Use this for pixel-faithful crop regions and export viewports.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": func() map[string]interface{} {
					p := withTarget(scanProperties())
					p["density"] = map[string]interface{}{
						"type":        "number",
						"description": "Render density for the crop in pixels per document unit. Default: the fine density",
					}
					p["scale"] = map[string]interface{}{
						"type":        "number",
						"description": "Optional output scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					}
					return p
				}(),
				"required": []string{"path"},
			},
		},

		// Coordinate helpers
		{
			Name:        "bbox_transform",
			Description: "Convert a bounding box between an element's local space and the document's global space through an affine matrix, using corner-envelope conversion (correct under rotation and skew). Fails on non-invertible matrices.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"box": map[string]interface{}{
						"type":        "object",
						"description": "Box {x, y, width, height}",
					},
					"matrix": map[string]interface{}{
						"type":        "object",
						"description": "Affine matrix {a, b, c, d, e, f} mapping local to global space",
					},
					"direction": map[string]interface{}{
						"type":        "string",
						"description": "'to_global' applies the matrix, 'to_local' applies its inverse",
						"enum":        []string{"to_local", "to_global"},
					},
				},
				"required": []string{"box", "matrix", "direction"},
			},
		},
		{
			Name:        "bbox_union",
			Description: "Union a list of bounding boxes into their smallest enclosing envelope. Order-independent.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"boxes": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "object"},
						"description": "Boxes {x, y, width, height} to union",
					},
				},
				"required": []string{"boxes"},
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
