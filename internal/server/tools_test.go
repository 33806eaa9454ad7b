package server

import (
	"testing"

	"github.com/ironsheep/seedream-mcp/internal/generate"
)

func toolMap(tools []Tool) map[string]Tool {
	m := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		m[tool.Name] = tool
	}
	return m
}

func properties(t *testing.T, tool Tool) map[string]interface{} {
	t.Helper()
	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("%s: properties should be a map", tool.Name)
	}
	return props
}

func TestGetToolDefinitions_V4(t *testing.T) {
	tools := GetToolDefinitions(generate.ModelV4)

	if len(tools) != 2 {
		t.Fatalf("Expected 2 tools, got %d", len(tools))
	}

	m := toolMap(tools)
	gen, ok := m["generate_image"]
	if !ok {
		t.Fatal("generate_image not found")
	}
	batch, ok := m["generate_image_batch"]
	if !ok {
		t.Fatal("generate_image_batch not found")
	}

	genProps := properties(t, gen)
	for _, name := range []string{"prompt", "image_size", "num_images", "max_images", "seed", "sync_mode", "enable_safety_checker"} {
		if _, ok := genProps[name]; !ok {
			t.Errorf("generate_image missing property %s", name)
		}
	}
	if _, ok := genProps["aspect_ratio"]; ok {
		t.Error("generate_image should not advertise aspect_ratio for v4")
	}

	batchProps := properties(t, batch)
	for _, name := range []string{"prompts", "image_size", "enable_safety_checker"} {
		if _, ok := batchProps[name]; !ok {
			t.Errorf("generate_image_batch missing property %s", name)
		}
	}
}

func TestGetToolDefinitions_V3(t *testing.T) {
	tools := GetToolDefinitions(generate.ModelV3)
	m := toolMap(tools)

	genProps := properties(t, m["generate_image"])
	if _, ok := genProps["aspect_ratio"]; !ok {
		t.Error("generate_image should advertise aspect_ratio for v3")
	}
	if _, ok := genProps["image_size"]; ok {
		t.Error("generate_image should not advertise image_size for v3")
	}
	if _, ok := genProps["max_images"]; ok {
		t.Error("generate_image should not advertise max_images for v3")
	}

	ratio, ok := genProps["aspect_ratio"].(map[string]interface{})
	if !ok {
		t.Fatal("aspect_ratio should be a map")
	}
	enum, ok := ratio["enum"].([]string)
	if !ok {
		t.Fatal("aspect_ratio enum should be a string slice")
	}
	if len(enum) != len(generate.AspectRatios()) {
		t.Errorf("aspect_ratio enum: got %d values, want %d", len(enum), len(generate.AspectRatios()))
	}

	batchProps := properties(t, m["generate_image_batch"])
	if _, ok := batchProps["aspect_ratio"]; !ok {
		t.Error("generate_image_batch should advertise aspect_ratio for v3")
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, version := range []generate.ModelVersion{generate.ModelV4, generate.ModelV3} {
		for _, tool := range GetToolDefinitions(version) {
			t.Run(string(version)+"/"+tool.Name, func(t *testing.T) {
				if tool.Name == "" {
					t.Error("Tool name is empty")
				}
				if tool.Description == "" {
					t.Error("Tool description is empty")
				}
				if tool.InputSchema["type"] != "object" {
					t.Errorf("InputSchema type: got %v, want object", tool.InputSchema["type"])
				}

				required, ok := tool.InputSchema["required"].([]string)
				if !ok || len(required) == 0 {
					t.Fatal("InputSchema should mark required parameters")
				}
				props := properties(t, tool)
				for _, name := range required {
					if _, ok := props[name]; !ok {
						t.Errorf("required property %s not defined", name)
					}
				}
			})
		}
	}
}
