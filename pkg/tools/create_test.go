package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreateFixture(t *testing.T) (*Registry, *CreateTool, *Store) {
	t.Helper()
	registry := NewRegistry()
	store := newTestStore(t)
	create := NewCreateTool(registry, store)
	registry.RegisterBuiltin(NewThinkTool())
	registry.RegisterBuiltin(create)
	return registry, create, store
}

func TestCreateToolRejectsBadInput(t *testing.T) {
	_, create, _ := newCreateFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		args map[string]any
	}{
		{"bad name", map[string]any{
			"tool_name": "Bad Name", "description": "d", "code": "x",
			"parameters": map[string]any{"type": "object"},
		}},
		{"missing description", map[string]any{
			"tool_name": "ok_name", "code": "x",
			"parameters": map[string]any{"type": "object"},
		}},
		{"missing code", map[string]any{
			"tool_name": "ok_name", "description": "d",
			"parameters": map[string]any{"type": "object"},
		}},
		{"missing parameters", map[string]any{
			"tool_name": "ok_name", "description": "d", "code": "x",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := create.Execute(ctx, tc.args)
			require.True(t, result.IsError)
			assert.Contains(t, result.Content, "Failed to create tool")
		})
	}
}

func TestCreateToolFailureLeavesFiles(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	registry, create, store := newCreateFixture(t)

	result := create.Execute(context.Background(), map[string]any{
		"tool_name":   "syntax_err",
		"description": "does not compile",
		"parameters":  map[string]any{"type": "object"},
		"code":        "def execute(**kwargs\n    return ''\n",
	})

	require.True(t, result.IsError)
	assert.Contains(t, result.Content, "Failed to create tool 'syntax_err'")
	assert.Contains(t, result.Content, "validate:")
	assert.Contains(t, result.Content, "SyntaxError")

	// No rollback: the written files stay on disk, but the registry
	// never sees the broken tool.
	_, err := os.Stat(filepath.Join(store.Root(), "syntax_err", codeFile))
	assert.NoError(t, err)
	assert.False(t, registry.Has("syntax_err"))
}

func TestCreateToolRegistersAndExecutes(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	registry, create, _ := newCreateFixture(t)
	ctx := context.Background()

	result := create.Execute(ctx, map[string]any{
		"tool_name":   "shout",
		"description": "Uppercases the text argument",
		"parameters": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []any{"text"},
		},
		"code": "def execute(**kwargs):\n    return kwargs.get('text', '').upper()\n",
		"tags": []any{"demo"},
	})

	require.False(t, result.IsError, result.Content)
	assert.Equal(t, "Tool 'shout' created and registered successfully.", result.Content)

	// Immediately callable through the registry.
	out := registry.Execute(ctx, "shout", map[string]any{"text": "quiet"})
	assert.Equal(t, "QUIET", out)

	// Schema snapshot includes it after the builtins.
	schemas := registry.Schemas()
	require.Len(t, schemas, 3)
	assert.Equal(t, "shout", schemas[2].Name)
}

func TestCreateToolOverwriteSwapsBehavior(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	registry, create, _ := newCreateFixture(t)
	ctx := context.Background()

	args := map[string]any{
		"tool_name":   "version_probe",
		"description": "returns a constant",
		"parameters":  map[string]any{"type": "object"},
		"code":        "def execute(**kwargs):\n    return 'v1'\n",
	}
	result := create.Execute(ctx, args)
	require.False(t, result.IsError, result.Content)
	assert.Equal(t, "v1", registry.Execute(ctx, "version_probe", nil))

	args["code"] = "def execute(**kwargs):\n    return 'v2'\n"
	result = create.Execute(ctx, args)
	require.False(t, result.IsError, result.Content)
	assert.Equal(t, "v2", registry.Execute(ctx, "version_probe", nil))

	// Overwrite keeps the schema count stable.
	assert.Len(t, registry.Schemas(), 3)
}
