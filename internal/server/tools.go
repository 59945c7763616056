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
		"description": "Absolute path to the page image",
	}
}

// segmentProperties returns the schema of the per-call segmentation overrides.
func segmentProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Luminance (0-255) below which a pixel counts as ink. Default 200",
			"minimum":     0,
			"maximum":     255,
		},
		"kernel_size": map[string]interface{}{
			"type":        "integer",
			"description": "Side of the square dilation kernel in pixels. Default 5",
			"minimum":     1,
		},
		"iterations": map[string]interface{}{
			"type":        "integer",
			"description": "Number of dilation passes. Default 2",
			"minimum":     0,
		},
		"min_area": map[string]interface{}{
			"type":        "integer",
			"description": "Smallest detected box area in square pixels kept as a panel. Default 5000",
			"minimum":     0,
		},
		"buffer_ratio": map[string]interface{}{
			"type":        "number",
			"description": "Caption space added below each panel as a fraction of its height. Default 0.15",
			"minimum":     0,
		},
		"row_bucket_height": map[string]interface{}{
			"type":        "integer",
			"description": "Height of the horizontal strips used to group panels into rows. Default 100",
			"minimum":     1,
		},
		"renumber": map[string]interface{}{
			"type":        "boolean",
			"description": "Number panels 1..n instead of by reading-order position before filtering",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	extractProps := segmentProperties()
	extractProps["output_dir"] = map[string]interface{}{
		"type":        "string",
		"description": "Directory to write panels into. Created if missing",
	}
	extractProps["ext"] = map[string]interface{}{
		"type":        "string",
		"description": "Panel file format: jpg, png, gif, bmp or tiff. Default jpg",
		"enum":        []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff"},
	}
	extractProps["manifest"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Also write <name>_panels.yaml listing every panel",
	}
	extractProps["preview"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Also write <name>_preview.png with the panels outlined",
	}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a page image and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_unload",
			Description: "Drop a cached page so the next call reads it from disk again, e.g. after the file was edited. Without a path every cached page is dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{},
			},
		},
		{
			Name:        "panels_detect",
			Description: "Detect comic panels on a page without writing files. Returns each panel's index, the box found on the page, and the box expanded downward to include its caption, in reading order.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "panels_extract",
			Description: "Detect comic panels on a page and save each one as <name>_panel_<index>.<ext> in output_dir. Returns the list of written and failed panels.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": extractProps,
				"required":   []string{"path", "output_dir"},
			},
		},
		{
			Name:        "panels_preview",
			Description: "Render the page with detected panels outlined and numbered, returned as base64-encoded PNG. Use this to check detection settings before extracting.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentProperties(),
				"required":   []string{"path"},
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
