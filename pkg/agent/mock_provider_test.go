package agent

import (
	"context"
	"sync"

	"github.com/toolsmith-ai/toolsmith/pkg/providers"
)

// mockProvider replays a scripted list of responses. Once the script
// runs out it keeps returning the final response.
type mockProvider struct {
	mu        sync.Mutex
	responses []*providers.Response
	err       error

	calls        int
	lastMessages []providers.Message
	lastTools    []providers.ToolDefinition
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) DefaultModel() string { return "mock-model" }

func (m *mockProvider) Chat(
	ctx context.Context,
	messages []providers.Message,
	tools []providers.ToolDefinition,
	model string,
	options map[string]any,
) (*providers.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastMessages = append([]providers.Message(nil), messages...)
	m.lastTools = append([]providers.ToolDefinition(nil), tools...)

	idx := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *mockProvider) BuildAssistantMessage(resp *providers.Response) providers.Message {
	return providers.Message{
		Role:      "assistant",
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	}
}

func (m *mockProvider) BuildToolResultMessages(results []providers.ToolResult) []providers.Message {
	out := make([]providers.Message, 0, len(results))
	for _, r := range results {
		out = append(out, providers.Message{
			Role:       "tool",
			Content:    r.Content,
			ToolCallID: r.ToolCallID,
		})
	}
	return out
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
