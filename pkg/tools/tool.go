package tools

import "context"

// Tool is one callable capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) *ToolResult
}

// ToolResult carries the outcome of one execution. Errors are data
// here: an IsError result is fed back to the model as text, never
// raised to the caller.
type ToolResult struct {
	Content string
	IsError bool
}

func SuccessResult(content string) *ToolResult {
	return &ToolResult{Content: content}
}

func ErrorResult(content string) *ToolResult {
	return &ToolResult{Content: content, IsError: true}
}
