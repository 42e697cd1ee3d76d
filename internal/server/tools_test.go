package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"text_render",
		"text_render_save",
		"mask_boxes",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema properties missing")
			}

			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required property %s is not defined", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RenderProperties(t *testing.T) {
	tools := GetToolDefinitions()
	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range []string{"text_render", "text_render_save"} {
		props := toolMap[name].InputSchema["properties"].(map[string]interface{})
		for _, key := range []string{"text", "font", "background", "distortion", "skew", "output", "seed"} {
			if _, ok := props[key]; !ok {
				t.Errorf("%s: missing property %s", name, key)
			}
		}
	}

	save := toolMap["text_render_save"].InputSchema["properties"].(map[string]interface{})
	if _, ok := save["out_dir"]; !ok {
		t.Error("text_render_save: missing out_dir")
	}
	render := toolMap["text_render"].InputSchema["properties"].(map[string]interface{})
	if _, ok := render["out_dir"]; ok {
		t.Error("text_render should not accept out_dir")
	}
}
