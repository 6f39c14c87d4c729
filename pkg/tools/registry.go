package tools

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/toolsmith-ai/toolsmith/pkg/logger"
	"github.com/toolsmith-ai/toolsmith/pkg/providers"
)

// Registry holds every tool the agent can call. The built-ins come
// first in schema order; dynamically registered tools follow in
// registration order. Re-registering a name swaps the handle in place
// (last write wins); there is no delete.
type Registry struct {
	mu       sync.RWMutex
	builtins []Tool
	dynamic  map[string]Tool
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{
		dynamic: make(map[string]Tool),
	}
}

// RegisterBuiltin appends a built-in. Built-ins resolve before dynamic
// tools and always lead the schema list.
func (r *Registry) RegisterBuiltin(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins = append(r.builtins, tool)
}

// Register installs or replaces a dynamic tool. A replaced tool keeps
// its original position in the schema order.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.dynamic[name]; !exists {
		r.order = append(r.order, name)
	}
	r.dynamic[name] = tool
}

// Get resolves a name, built-ins first.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.builtins {
		if b.Name() == name {
			return b, true
		}
	}
	tool, ok := r.dynamic[name]
	return tool, ok
}

// Has reports whether name resolves to any tool.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns all tool names, built-ins first then registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builtins)+len(r.order))
	for _, b := range r.builtins {
		names = append(names, b.Name())
	}
	names = append(names, r.order...)
	return names
}

// Schemas snapshots every tool definition in presentation order.
func (r *Registry) Schemas() []providers.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]providers.ToolDefinition, 0, len(r.builtins)+len(r.order))
	for _, b := range r.builtins {
		schemas = append(schemas, providers.ToolDefinition{
			Name:        b.Name(),
			Description: b.Description(),
			Parameters:  b.Parameters(),
		})
	}
	for _, name := range r.order {
		t := r.dynamic[name]
		schemas = append(schemas, providers.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return schemas
}

// Execute runs a tool by name and always returns result text. Unknown
// names, error results, and panics all come back as strings for the
// model to read; nothing propagates to the loop.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	tool, ok := r.Get(name)
	if !ok {
		return fmt.Sprintf("Error: tool '%s' not found", name)
	}

	result := r.executeRecovered(ctx, tool, args)
	if result.IsError {
		logger.WarnCF("tools", "Tool execution failed", map[string]any{
			"tool": name,
		})
	}
	return result.Content
}

func (r *Registry) executeRecovered(ctx context.Context, tool Tool, args map[string]any) (result *ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = ErrorResult(fmt.Sprintf(
				"Error executing tool '%s': %v\n%s",
				tool.Name(), rec, debug.Stack(),
			))
		}
	}()
	return tool.Execute(ctx, args)
}
