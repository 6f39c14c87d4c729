package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/logger"
	"github.com/toolsmith-ai/toolsmith/pkg/providers"
	"github.com/toolsmith-ai/toolsmith/pkg/session"
	"github.com/toolsmith-ai/toolsmith/pkg/state"
	"github.com/toolsmith-ai/toolsmith/pkg/tools"
)

// Options configures one agent instance.
type Options struct {
	Model         string
	MaxIterations int
	MaxTokens     int
	Output        io.Writer
}

// Agent drives the conversation: external events first, then
// interactive input, each through the same iteration-bounded turn.
// History is append-only for the life of the process.
type Agent struct {
	provider providers.Provider
	registry *tools.Registry
	queue    *events.Queue
	session  *session.Logger
	status   *state.Publisher

	model         string
	maxIterations int
	maxTokens     int
	out           io.Writer

	messages []providers.Message
}

func New(
	provider providers.Provider,
	registry *tools.Registry,
	queue *events.Queue,
	sessionLog *session.Logger,
	status *state.Publisher,
	opts Options,
) *Agent {
	model := opts.Model
	if model == "" {
		model = provider.DefaultModel()
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 20
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return &Agent{
		provider:      provider,
		registry:      registry,
		queue:         queue,
		session:       sessionLog,
		status:        status,
		model:         model,
		maxIterations: maxIterations,
		maxTokens:     maxTokens,
		out:           out,
	}
}

// FormatEvent renders a queued event as agent input.
func FormatEvent(ev events.Event) string {
	return fmt.Sprintf("[%s/%s]: %s", ev.Source, ev.Type, ev.Text)
}

// Run is the outer cycle. Pending events drain before each interactive
// read; the lines channel closing ends the run. Each wait on input is
// bounded so newly queued events are picked up within a second.
func (a *Agent) Run(ctx context.Context, lines <-chan string) {
	a.status.Set(state.StateIdle)

	for {
		for _, ev := range a.queue.Drain() {
			input := FormatEvent(ev)
			fmt.Fprintf(a.out, "\n[event] %s\n", input)
			a.session.LogExternalEvent(ev)
			a.RunTurn(ctx, input)
			a.status.Set(state.StateIdle)
		}

		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			a.RunTurn(ctx, line)
			a.status.Set(state.StateIdle)
		case <-time.After(time.Second):
		}
	}
}

// RunTurn runs one full turn: the input is appended to history, then
// the model is called until it stops requesting tools or the iteration
// bound is hit. A backend fault aborts the turn; the error is returned
// after logging so callers can decide whether to surface it.
func (a *Agent) RunTurn(ctx context.Context, input string) error {
	a.status.Set(state.StateProcessing)

	a.messages = append(a.messages, providers.Message{Role: "user", Content: input})
	a.session.LogUserMessage("user", input)

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		systemPrompt := buildSystemPrompt(a.registry)
		llmMessages := make([]providers.Message, 0, len(a.messages)+1)
		llmMessages = append(llmMessages, providers.Message{Role: "system", Content: systemPrompt})
		llmMessages = append(llmMessages, a.messages...)

		schemas := a.registry.Schemas()
		a.session.LogRequest(iteration, len(llmMessages), len(schemas))

		response, err := a.provider.Chat(ctx, llmMessages, schemas, a.model, map[string]any{
			"max_tokens": a.maxTokens,
		})
		if err != nil {
			a.session.LogError("llm_call", err)
			logger.ErrorCF("agent", "LLM call failed", map[string]any{
				"iteration": iteration,
				"error":     err.Error(),
			})
			fmt.Fprintf(a.out, "\n[error] LLM call failed: %v\n", err)
			return err
		}

		a.session.LogResponse(response)

		if response.Content != "" {
			fmt.Fprintf(a.out, "\n%s\n", response.Content)
		}

		a.messages = append(a.messages, a.provider.BuildAssistantMessage(response))

		if len(response.ToolCalls) == 0 {
			return nil
		}

		results := a.executeToolCalls(ctx, response.ToolCalls)
		a.status.Set(state.StateProcessing)
		a.messages = append(a.messages, a.provider.BuildToolResultMessages(results)...)
	}

	fmt.Fprintf(a.out, "\n[warn] Max iterations reached.\n")
	logger.WarnCF("agent", "Max iterations reached", map[string]any{
		"max_iterations": a.maxIterations,
	})
	return nil
}

// executeToolCalls runs every call in emission order and produces
// exactly one result per call.
func (a *Agent) executeToolCalls(ctx context.Context, calls []providers.ToolCall) []providers.ToolResult {
	results := make([]providers.ToolResult, 0, len(calls))
	for _, tc := range calls {
		var result string
		if tc.Name == "think" {
			thought, _ := tc.Arguments["thought"].(string)
			fmt.Fprintf(a.out, "\n[think] %s\n", truncate(thought, 300))
			result = a.registry.Execute(ctx, tc.Name, tc.Arguments)
		} else {
			a.status.SetTool(state.StateToolExecuting, tc.Name)
			fmt.Fprintf(a.out, "\n[tool] %s(%s)\n", tc.Name, truncate(marshalArgs(tc.Arguments), 200))
			result = a.registry.Execute(ctx, tc.Name, tc.Arguments)
			fmt.Fprintf(a.out, "[result] %s\n", truncate(result, 300))
		}

		a.session.LogToolExecution(tc.Name, tc.Arguments, result)
		results = append(results, providers.ToolResult{
			ToolCallID: tc.ID,
			Name:       tc.Name,
			Content:    result,
		})
	}
	return results
}

// History returns the conversation so far.
func (a *Agent) History() []providers.Message {
	return a.messages
}

func marshalArgs(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// truncate cuts on a rune boundary so multi-byte characters are never
// split at the limit.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "..."
}
