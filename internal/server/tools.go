package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func enumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        values,
		"description": description,
	}
}

// renderProperties describes the arguments shared by the render tools. They
// mirror the keys of a YAML request file.
func renderProperties() map[string]interface{} {
	return map[string]interface{}{
		"text":      prop("string", "Text to render"),
		"font":      prop("string", "Absolute path to a TrueType/OpenType font. Default: built-in Go Regular"),
		"font_size": prop("number", "Font size in pixels. Default: size"),
		"text_color": prop("string",
			"Text color as #RRGGBB, or #RRGGBB,#RRGGBB for a random color between the two. Default #282828"),
		"stroke_color":      prop("string", "Stroke color, same syntax as text_color"),
		"stroke_width":      prop("integer", "Stroke width in pixels. Default 0"),
		"orientation":       enumProp("Text direction. Default horizontal", "horizontal", "vertical"),
		"space_width":       prop("number", "Multiplier of the space width. 0 removes spaces from the ground truth. Default 1.0"),
		"character_spacing": prop("integer", "Pixels between characters. Ignored with word_split"),
		"word_split":        prop("boolean", "Render word by word instead of character by character"),
		"fit":               prop("boolean", "Crop the rendered text to its ink before resizing"),
		"draw_boxes_percent": prop("integer",
			"Chance (0-100) of drawing token outlines onto the image"),
		"alignment": enumProp("Horizontal placement when width is set. Default left", "left", "center", "right"),
		"margins": map[string]interface{}{
			"type":        "object",
			"description": "Margins in pixels. Default 5 on every side",
			"properties": map[string]interface{}{
				"top":    prop("integer", "Top margin"),
				"left":   prop("integer", "Left margin"),
				"bottom": prop("integer", "Bottom margin"),
				"right":  prop("integer", "Right margin"),
			},
		},
		"skew": map[string]interface{}{
			"type":        "object",
			"description": "Rotation of the text in degrees, counter-clockwise",
			"properties": map[string]interface{}{
				"angle":  prop("number", "Angle, or the bound of the random range"),
				"random": prop("boolean", "Draw the angle from [-angle, angle]"),
			},
		},
		"blur": map[string]interface{}{
			"type":        "object",
			"description": "Gaussian blur of the final image",
			"properties": map[string]interface{}{
				"radius": prop("number", "Blur radius, or the bound of the random range"),
				"random": prop("boolean", "Draw the radius from [0, radius)"),
			},
		},
		"background": enumProp("Background texture. Default gaussian",
			"gaussian", "plain", "quasicrystal", "image", "saltpepper", "random"),
		"background_dir":  prop("string", "Directory of images for the image background"),
		"distortion":      enumProp("Wave distortion. Default none", "none", "sin", "cos", "random"),
		"distortion_axis": enumProp("Displaced axis. Default vertical", "vertical", "horizontal", "both"),
		"size":            prop("integer", "Output height (horizontal text) or width (vertical text). Default 32"),
		"width":           prop("integer", "Output width for horizontal text. Default: fit the text"),
		"image_mode":      enumProp("Pixel format of the image. Default RGB", "RGB", "RGBA", "L"),
		"output": map[string]interface{}{
			"type":        "object",
			"description": "Artifacts to produce",
			"properties": map[string]interface{}{
				"mask":        prop("boolean", "Produce the instance mask"),
				"boxes":       enumProp("Bounding box output", "none", "lines", "chars"),
				"extension":   prop("string", "Image file extension. Default jpg"),
				"name_format": enumProp("File naming", "text_index", "index_text", "index"),
				"index":       prop("integer", "Sample index used in the file name"),
			},
		},
		"seed": prop("integer", "Random seed. 0 or absent picks one; the seed used is returned"),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	saveProps := renderProperties()
	saveProps["out_dir"] = prop("string", "Directory the files are written to. Default: the configured output directory")

	return []Tool{
		{
			Name: "text_render",
			Description: "Render text onto a synthetic background and return the image as base64 PNG, " +
				"with per-character bounding boxes and optionally the instance mask. " +
				"Samples failing the contrast check are reported as rejected without an image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": renderProperties(),
				"required":   []string{"text"},
			},
		},
		{
			Name: "text_render_save",
			Description: "Render text like text_render and write the image, mask, box and ground truth " +
				"files into a directory. Files appear only when every one of them was written.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": saveProps,
				"required":   []string{"text"},
			},
		},
		{
			Name:        "mask_boxes",
			Description: "Recover bounding boxes from a saved instance mask (<name>_mask.png).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": prop("string", "Absolute path to the mask PNG"),
					"ids": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"description": "Instance IDs to decode, in order. Default: every ID present",
					},
					"flip_y": prop("boolean", "Measure y from the bottom of the image as in tesseract box files"),
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
