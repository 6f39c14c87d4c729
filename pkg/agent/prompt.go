package agent

import (
	"encoding/json"
	"fmt"

	"github.com/toolsmith-ai/toolsmith/pkg/tools"
)

const systemPromptTemplate = `You are a capable AI assistant with the ability to create and use tools.

You have two built-in tools:
- ` + "`think`" + ` — use this to reason step-by-step before acting. Call it whenever you need to plan, analyze, or work through a problem. This is free and has no side effects.
- ` + "`create_tool`" + ` — use this to build new tools on the fly. Tools persist across sessions.

When you need a capability (web requests, file I/O, math, etc.), first check if a tool already exists. If not, use ` + "`think`" + ` to plan the tool, then ` + "`create_tool`" + ` to build it.

Guidelines for creating tools:
- The ` + "`code`" + ` must define an ` + "`execute(**kwargs)`" + ` function returning a string.
- List any pip dependencies in ` + "`dependencies`" + `.
- Keep tools focused: one tool per capability.
- Handle errors gracefully inside tool code.

Available tools:
%s
`

// buildSystemPrompt renders the prompt with a fresh schema snapshot,
// so tools created earlier in the conversation are already listed on
// the next iteration.
func buildSystemPrompt(registry *tools.Registry) string {
	schemas := registry.Schemas()
	toolList, err := json.MarshalIndent(schemas, "", "  ")
	if err != nil {
		toolList = []byte("[]")
	}
	return fmt.Sprintf(systemPromptTemplate, toolList)
}
