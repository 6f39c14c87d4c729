package tools

import (
	"context"
	"fmt"

	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// CreateTool is the built-in that lets the model extend the registry
// at runtime. Creation persists the tool to disk first, then swaps a
// freshly loaded handle into the registry. Failures are reported as
// result text; files written before the failing step stay on disk.
type CreateTool struct {
	registry *Registry
	store    *Store
}

func NewCreateTool(registry *Registry, store *Store) *CreateTool {
	return &CreateTool{
		registry: registry,
		store:    store,
	}
}

func (t *CreateTool) Name() string {
	return "create_tool"
}

func (t *CreateTool) Description() string {
	return "Create a new tool that persists to disk and becomes immediately available. " +
		"Use this when you need a capability that doesn't exist yet. " +
		"The code must define an `execute(**kwargs)` function that returns a string."
}

func (t *CreateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tool_name": map[string]any{
				"type":        "string",
				"description": "Snake_case name for the tool (e.g. 'web_search')",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "What the tool does, shown to the LLM",
			},
			"parameters": map[string]any{
				"type":        "object",
				"description": "JSON Schema describing the tool's parameters",
			},
			"code": map[string]any{
				"type": "string",
				"description": "Python source code for the tool. Must define an `execute(**kwargs)` " +
					"function that returns a string result.",
			},
			"dependencies": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "List of pip packages the tool needs (e.g. ['requests'])",
			},
			"tags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Optional tags for categorizing the tool (e.g. ['io', 'filesystem'])",
			},
		},
		"required": []string{"tool_name", "description", "parameters", "code"},
	}
}

func (t *CreateTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	name, _ := args["tool_name"].(string)
	description, _ := args["description"].(string)
	code, _ := args["code"].(string)
	parameters, _ := args["parameters"].(map[string]any)
	dependencies := stringSlice(args["dependencies"])
	tags := stringSlice(args["tags"])

	if err := t.create(ctx, name, description, parameters, code, dependencies, tags); err != nil {
		return ErrorResult(fmt.Sprintf("Failed to create tool '%s': %v", name, err))
	}

	logger.InfoCF("tools", "Tool created", map[string]any{
		"tool": name,
	})
	return SuccessResult(fmt.Sprintf("Tool '%s' created and registered successfully.", name))
}

func (t *CreateTool) create(
	ctx context.Context,
	name, description string,
	parameters map[string]any,
	code string,
	dependencies, tags []string,
) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if description == "" {
		return fmt.Errorf("description is required")
	}
	if code == "" {
		return fmt.Errorf("code is required")
	}
	if parameters == nil {
		return fmt.Errorf("parameters schema is required")
	}

	manifest := Manifest{
		Name:        name,
		Description: description,
		Parameters:  parameters,
		Tags:        tags,
	}

	// Each step is labelled so the failure text pinpoints where the
	// pipeline stopped; subprocess steps already embed their stderr.
	if err := t.store.Write(manifest, code, dependencies); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if len(dependencies) > 0 {
		if err := t.store.InstallDependencies(ctx, name); err != nil {
			return fmt.Errorf("install dependencies: %w", err)
		}
	}

	tool, err := t.store.Load(name)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if err := tool.Validate(ctx); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	t.registry.Register(tool)
	return nil
}

func stringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
