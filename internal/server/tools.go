package server

import (
	"fmt"
	"strings"

	"github.com/ironsheep/seedream-mcp/internal/generate"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns the tools exposed for the given model version.
// v4 advertises the image_size parameter (preset or explicit dimensions); the
// predecessor v3 advertises aspect_ratio instead.
func GetToolDefinitions(version generate.ModelVersion) []Tool {
	generateProps := map[string]interface{}{
		"prompt": map[string]interface{}{
			"type":        "string",
			"description": "Text prompt describing the image to generate",
		},
		"num_images": map[string]interface{}{
			"type":        "integer",
			"description": fmt.Sprintf("Number of images to generate (%d-%d, default %d)", generate.MinImages, generate.MaxImagesPerRequest, generate.MinImages),
			"default":     generate.MinImages,
		},
		"seed": map[string]interface{}{
			"type":        "integer",
			"description": "Random seed for reproducible generation. Omit to let the model pick one; the seed actually used is included in the result.",
		},
		"sync_mode": map[string]interface{}{
			"type":        "boolean",
			"description": "Return image data inline from the API instead of hosted URLs (may increase latency)",
			"default":     false,
		},
		"enable_safety_checker": map[string]interface{}{
			"type":        "boolean",
			"description": "Run the output safety checker (default true)",
			"default":     true,
		},
	}
	batchProps := map[string]interface{}{
		"prompts": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
			},
			"description": fmt.Sprintf("1-%d text prompts, each generated independently and concurrently", generate.MaxBatchPrompts),
		},
		"enable_safety_checker": map[string]interface{}{
			"type":        "boolean",
			"description": "Run the output safety checker (default true)",
			"default":     true,
		},
	}

	if version == generate.ModelV3 {
		ratio := map[string]interface{}{
			"type":        "string",
			"enum":        generate.AspectRatios(),
			"description": fmt.Sprintf("Output aspect ratio (default %s)", generate.DefaultAspectRatio),
		}
		generateProps["aspect_ratio"] = ratio
		batchProps["aspect_ratio"] = ratio
	} else {
		size := map[string]interface{}{
			"description": fmt.Sprintf("Output size: a preset name (%s) or an object {\"width\": w, \"height\": h} with both in [%d,%d]. Default %s.",
				strings.Join(generate.PresetNames(), ", "), generate.MinDimension, generate.MaxDimension, generate.DefaultPreset),
		}
		generateProps["image_size"] = size
		generateProps["max_images"] = map[string]interface{}{
			"type":        "integer",
			"description": fmt.Sprintf("Upper bound on returned images when the model produces variants (%d-%d, default %d)", generate.MinImages, generate.MaxImagesPerRequest, generate.MinImages),
			"default":     generate.MinImages,
		}
		batchProps["image_size"] = size
	}

	return []Tool{
		{
			Name:        "generate_image",
			Description: "Generate images from a text prompt with Bytedance SeedDream (via FAL). Downloads every result into the local images directory and reports the saved paths, dimensions, seed used, and source URLs.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": generateProps,
				"required":   []string{"prompt"},
			},
		},
		{
			Name:        "generate_image_batch",
			Description: fmt.Sprintf("Generate images for up to %d prompts concurrently. Each prompt succeeds or fails on its own; the report lists successful and failed generations separately with counts.", generate.MaxBatchPrompts),
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": batchProps,
				"required":   []string{"prompts"},
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
			"tools": GetToolDefinitions(s.svc.ModelVersion()),
		},
	}
}
