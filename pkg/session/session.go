package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/providers"
)

// toolResultLogLimit keeps tool output records readable; the full
// result still goes to the model untruncated.
const toolResultLogLimit = 2000

// Logger writes one JSONL file per session under the logs root. Every
// record carries a timestamp and a type tag; the rest of the fields
// depend on the record type.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	sessionID string
	dir       string

	totalPrompt     int
	totalCompletion int
}

// NewLogger creates the session directory (timestamp plus a short
// unique suffix) and opens the session log inside it.
func NewLogger(logsRoot string) (*Logger, error) {
	sessionID := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	dir := filepath.Join(logsRoot, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, "session.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}

	return &Logger{
		file:      file,
		sessionID: sessionID,
		dir:       dir,
	}, nil
}

func (l *Logger) SessionID() string { return l.sessionID }

func (l *Logger) Dir() string { return l.dir }

func (l *Logger) write(recordType string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	record := map[string]any{
		"ts":   time.Now().UTC().Format(time.RFC3339Nano),
		"type": recordType,
	}
	for k, v := range fields {
		record[k] = v
	}

	if data, err := json.Marshal(record); err == nil {
		l.file.Write(append(data, '\n'))
	}
}

// LogUserMessage records agent input, interactive or event-driven.
func (l *Logger) LogUserMessage(source, text string) {
	l.write("user_message", map[string]any{
		"source": source,
		"text":   text,
	})
}

// LogRequest records one outbound model call.
func (l *Logger) LogRequest(iteration, messageCount, toolCount int) {
	l.write("llm_request", map[string]any{
		"iteration":     iteration,
		"message_count": messageCount,
		"tool_count":    toolCount,
	})
}

// LogResponse records a model reply along with cumulative token usage
// for the session.
func (l *Logger) LogResponse(resp *providers.Response) {
	fields := map[string]any{
		"content":       resp.Content,
		"tool_calls":    len(resp.ToolCalls),
		"finish_reason": resp.FinishReason,
	}

	l.mu.Lock()
	if resp.Usage != nil {
		l.totalPrompt += resp.Usage.PromptTokens
		l.totalCompletion += resp.Usage.CompletionTokens
	}
	fields["total_prompt_tokens"] = l.totalPrompt
	fields["total_completion_tokens"] = l.totalCompletion
	l.mu.Unlock()

	l.write("llm_response", fields)
}

// LogToolExecution records one tool run with its (truncated) result.
// The cut lands on a rune boundary so the record stays valid UTF-8.
func (l *Logger) LogToolExecution(name string, args map[string]any, result string) {
	if len(result) > toolResultLogLimit {
		cut := toolResultLogLimit
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}
	l.write("tool_exec", map[string]any{
		"tool":   name,
		"args":   args,
		"result": result,
	})
}

// LogExternalEvent records an event pulled off the queue.
func (l *Logger) LogExternalEvent(ev events.Event) {
	l.write("external_event", map[string]any{
		"source":   ev.Source,
		"event":    ev.Type,
		"text":     ev.Text,
		"priority": int(ev.Priority),
	})
}

// LogError records a fault that aborted part of a turn.
func (l *Logger) LogError(stage string, err error) {
	l.write("error", map[string]any{
		"stage": stage,
		"error": err.Error(),
	})
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
