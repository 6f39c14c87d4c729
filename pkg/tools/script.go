package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ScriptTool is a dynamically created tool backed by a code file on
// disk. Each call runs the interpreter out of process through the
// runner harness, with the arguments passed as JSON on stdin.
type ScriptTool struct {
	manifest    Manifest
	interpreter string
	runnerPath  string
	codePath    string
}

func (t *ScriptTool) Name() string { return t.manifest.Name }

func (t *ScriptTool) Description() string { return t.manifest.Description }

func (t *ScriptTool) Parameters() map[string]any {
	if t.manifest.Parameters == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return t.manifest.Parameters
}

func (t *ScriptTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	if args == nil {
		args = map[string]any{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Error executing tool '%s': %v", t.manifest.Name, err))
	}

	execCtx := ctx
	if t.manifest.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, time.Duration(t.manifest.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(execCtx, t.interpreter, t.runnerPath, t.codePath)
	cmd.Stdin = bytes.NewReader(argsJSON)
	cmd.Env = append(os.Environ(), "TOOL_PARAMS_JSON="+string(argsJSON))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return ErrorResult(fmt.Sprintf("Error executing tool '%s': %v\n%s", t.manifest.Name, err, detail))
	}

	return SuccessResult(stdout.String())
}

// Validate compiles the tool code without running it, catching syntax
// errors before the handle is registered.
func (t *ScriptTool) Validate(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, t.interpreter, "-m", "py_compile", t.codePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("tool code does not compile: %s", detail)
	}
	return nil
}
