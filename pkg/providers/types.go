package providers

import "context"

// Message is the provider-neutral conversation unit. Tool results are
// stored with role "tool" plus the originating call ID; each adapter
// translates that to its own wire shape.
type Message struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// ToolCall is a model request to invoke one tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult pairs a completed execution back to its call.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// ToolDefinition describes a callable tool as a JSON Schema.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one model turn: assistant text plus zero or more tool
// calls in the order the model emitted them.
type Response struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
	Usage        *Usage     `json:"usage,omitempty"`
}

// Provider adapts one LLM backend. Chat performs a full (non-streaming)
// completion; the two Build methods produce history entries in whatever
// structure the backend expects to see replayed on the next call.
type Provider interface {
	Name() string
	DefaultModel() string
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition, model string, options map[string]any) (*Response, error)
	BuildAssistantMessage(resp *Response) Message
	BuildToolResultMessages(results []ToolResult) []Message
}
