package agent

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/providers"
	"github.com/toolsmith-ai/toolsmith/pkg/session"
	"github.com/toolsmith-ai/toolsmith/pkg/state"
	"github.com/toolsmith-ai/toolsmith/pkg/tools"
)

type echoTool struct {
	calls []map[string]any
}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "echoes the text argument" }

func (e *echoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
	}
}

func (e *echoTool) Execute(ctx context.Context, args map[string]any) *tools.ToolResult {
	e.calls = append(e.calls, args)
	text, _ := args["text"].(string)
	return tools.SuccessResult(text)
}

func newTestAgent(t *testing.T, provider providers.Provider, maxIterations int) (*Agent, *tools.Registry, *events.Queue) {
	t.Helper()

	registry := tools.NewRegistry()
	registry.RegisterBuiltin(tools.NewThinkTool())

	sessionLog, err := session.NewLogger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sessionLog.Close() })

	status := state.NewPublisher(filepath.Join(t.TempDir(), "status.json"), sessionLog.SessionID())
	queue := events.NewQueue()

	a := New(provider, registry, queue, sessionLog, status, Options{
		MaxIterations: maxIterations,
		Output:        io.Discard,
	})
	return a, registry, queue
}

func textResponse(content string) *providers.Response {
	return &providers.Response{Content: content, FinishReason: "stop"}
}

func toolCallResponse(calls ...providers.ToolCall) *providers.Response {
	return &providers.Response{ToolCalls: calls, FinishReason: "tool_calls"}
}

func TestRunTurnPlainResponse(t *testing.T) {
	provider := &mockProvider{responses: []*providers.Response{textResponse("hello there")}}
	a, _, _ := newTestAgent(t, provider, 20)

	require.NoError(t, a.RunTurn(context.Background(), "hi"))

	assert.Equal(t, 1, provider.callCount())
	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "hello there", history[1].Content)
}

func TestRunTurnSendsSystemPromptAndSchemas(t *testing.T) {
	provider := &mockProvider{responses: []*providers.Response{textResponse("ok")}}
	a, registry, _ := newTestAgent(t, provider, 20)
	registry.Register(&echoTool{})

	require.NoError(t, a.RunTurn(context.Background(), "hi"))

	require.NotEmpty(t, provider.lastMessages)
	assert.Equal(t, "system", provider.lastMessages[0].Role)
	assert.Contains(t, provider.lastMessages[0].Content, `"echo"`)

	require.Len(t, provider.lastTools, 2)
	assert.Equal(t, "think", provider.lastTools[0].Name)
	assert.Equal(t, "echo", provider.lastTools[1].Name)
}

func TestRunTurnExecutesToolCallsInOrder(t *testing.T) {
	provider := &mockProvider{responses: []*providers.Response{
		toolCallResponse(
			providers.ToolCall{ID: "call_1", Name: "echo", Arguments: map[string]any{"text": "first"}},
			providers.ToolCall{ID: "call_2", Name: "echo", Arguments: map[string]any{"text": "second"}},
		),
		textResponse("done"),
	}}
	a, registry, _ := newTestAgent(t, provider, 20)
	echo := &echoTool{}
	registry.Register(echo)

	require.NoError(t, a.RunTurn(context.Background(), "run both"))

	require.Len(t, echo.calls, 2)
	assert.Equal(t, "first", echo.calls[0]["text"])
	assert.Equal(t, "second", echo.calls[1]["text"])

	// History: user, assistant(with calls), one result per call, final assistant.
	history := a.History()
	require.Len(t, history, 5)
	assert.Equal(t, "assistant", history[1].Role)
	require.Len(t, history[1].ToolCalls, 2)
	assert.Equal(t, "tool", history[2].Role)
	assert.Equal(t, "call_1", history[2].ToolCallID)
	assert.Equal(t, "first", history[2].Content)
	assert.Equal(t, "tool", history[3].Role)
	assert.Equal(t, "call_2", history[3].ToolCallID)
	assert.Equal(t, "second", history[3].Content)
	assert.Equal(t, "assistant", history[4].Role)
	assert.Equal(t, 2, provider.callCount())
}

func TestRunTurnUnknownToolBecomesResultText(t *testing.T) {
	provider := &mockProvider{responses: []*providers.Response{
		toolCallResponse(providers.ToolCall{ID: "call_1", Name: "missing", Arguments: map[string]any{}}),
		textResponse("done"),
	}}
	a, _, _ := newTestAgent(t, provider, 20)

	require.NoError(t, a.RunTurn(context.Background(), "go"))

	history := a.History()
	require.Len(t, history, 4)
	assert.Equal(t, "tool", history[2].Role)
	assert.Equal(t, "Error: tool 'missing' not found", history[2].Content)
}

func TestRunTurnBackendFaultAbortsTurn(t *testing.T) {
	provider := &mockProvider{err: errors.New("rate limited")}
	a, _, _ := newTestAgent(t, provider, 20)

	err := a.RunTurn(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")

	// The user message stays in history; no assistant message follows.
	history := a.History()
	require.Len(t, history, 1)
	assert.Equal(t, "user", history[0].Role)
}

func TestRunTurnMaxIterationsIsSoft(t *testing.T) {
	provider := &mockProvider{responses: []*providers.Response{
		toolCallResponse(providers.ToolCall{ID: "call_x", Name: "think", Arguments: map[string]any{"thought": "loop"}}),
	}}
	a, _, _ := newTestAgent(t, provider, 3)

	// The model keeps calling tools; the turn ends quietly at the bound.
	require.NoError(t, a.RunTurn(context.Background(), "go"))
	assert.Equal(t, 3, provider.callCount())
}

func TestRunDrainsEventsByPriorityBeforeInput(t *testing.T) {
	provider := &mockProvider{responses: []*providers.Response{textResponse("ack")}}
	a, _, queue := newTestAgent(t, provider, 20)

	queue.Push(events.New("cron", "daily", "routine report", events.PriorityNormal))
	queue.Push(events.New("webhook", "alert", "disk full", events.PriorityUrgent))

	lines := make(chan string)
	close(lines)
	a.Run(context.Background(), lines)

	history := a.History()
	require.Len(t, history, 4)
	assert.Equal(t, "[webhook/alert]: disk full", history[0].Content)
	assert.Equal(t, "[cron/daily]: routine report", history[2].Content)
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	// "é" is two bytes; a limit landing mid-rune must back off.
	cut := truncate(strings.Repeat("é", 10), 5)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, "éé...", cut)

	ascii := truncate(strings.Repeat("x", 10), 5)
	assert.Equal(t, "xxxxx...", ascii)
}

func TestFormatEvent(t *testing.T) {
	ev := events.New("telegram", "message", "ship it", events.PriorityNormal)
	assert.Equal(t, "[telegram/message]: ship it", FormatEvent(ev))
}
