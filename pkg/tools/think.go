package tools

import "context"

// ThinkTool gives the model a scratchpad. Executing it has no side
// effects; the thought is echoed back as the result.
type ThinkTool struct{}

func NewThinkTool() *ThinkTool {
	return &ThinkTool{}
}

func (t *ThinkTool) Name() string {
	return "think"
}

func (t *ThinkTool) Description() string {
	return "Use this tool to think through a problem step-by-step before acting. " +
		"Write out your reasoning, plan, or analysis. This does not produce any " +
		"side effects. It simply lets you reason before deciding what to do next."
}

func (t *ThinkTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"thought": map[string]any{
				"type":        "string",
				"description": "Your step-by-step reasoning or analysis",
			},
		},
		"required": []string{"thought"},
	}
}

func (t *ThinkTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	thought, _ := args["thought"].(string)
	return SuccessResult(thought)
}
