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

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir(), "python3", "pip", false)
	require.NoError(t, s.EnsureRoot())
	return s
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("web_search"))
	assert.NoError(t, ValidateName("a"))
	assert.NoError(t, ValidateName("tool2"))

	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("WebSearch"))
	assert.Error(t, ValidateName("2tool"))
	assert.Error(t, ValidateName("has-dash"))
	assert.Error(t, ValidateName("../escape"))
}

func TestStoreWriteLoadRoundtrip(t *testing.T) {
	s := newTestStore(t)

	manifest := Manifest{
		Name:        "greet",
		Description: "Greets someone by name",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
		},
		Tags: []string{"demo"},
	}
	code := "def execute(**kwargs):\n    return 'hello ' + kwargs.get('name', '')\n"

	require.NoError(t, s.Write(manifest, code, nil))

	tool, err := s.Load("greet")
	require.NoError(t, err)
	assert.Equal(t, "greet", tool.Name())
	assert.Equal(t, "Greets someone by name", tool.Description())
	assert.Contains(t, tool.Parameters(), "properties")
}

func TestStoreWriteRequirements(t *testing.T) {
	s := newTestStore(t)

	manifest := Manifest{Name: "fetch", Description: "d", Parameters: map[string]any{"type": "object"}}
	require.NoError(t, s.Write(manifest, "def execute(**kwargs):\n    return ''\n", []string{"requests", "lxml"}))

	data, err := os.ReadFile(filepath.Join(s.Root(), "fetch", requirementsFile))
	require.NoError(t, err)
	assert.Equal(t, "requests\nlxml\n", string(data))
}

func TestStoreLoadAllSkipsMalformed(t *testing.T) {
	s := newTestStore(t)

	good := Manifest{Name: "good", Description: "d", Parameters: map[string]any{"type": "object"}}
	require.NoError(t, s.Write(good, "def execute(**kwargs):\n    return 'ok'\n", nil))

	// Directory without a manifest.
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "no_manifest"), 0o755))

	// Directory with a corrupt manifest.
	corrupt := filepath.Join(s.Root(), "corrupt")
	require.NoError(t, os.MkdirAll(corrupt, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(corrupt, manifestFile), []byte("{not json"), 0o644))

	registry := NewRegistry()
	loaded := s.LoadAll(context.Background(), registry)

	assert.Equal(t, 1, loaded)
	assert.True(t, registry.Has("good"))
	assert.False(t, registry.Has("no_manifest"))
	assert.False(t, registry.Has("corrupt"))
}

func TestStoreLoadAllSkipsUncompilableCode(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	s := newTestStore(t)

	good := Manifest{Name: "good", Description: "d", Parameters: map[string]any{"type": "object"}}
	require.NoError(t, s.Write(good, "def execute(**kwargs):\n    return 'ok'\n", nil))

	broken := Manifest{Name: "broken_tool", Description: "d", Parameters: map[string]any{"type": "object"}}
	require.NoError(t, s.Write(broken, "def execute(**kwargs\n    return ''\n", nil))

	registry := NewRegistry()
	loaded := s.LoadAll(context.Background(), registry)

	assert.Equal(t, 1, loaded)
	assert.True(t, registry.Has("good"))
	assert.False(t, registry.Has("broken_tool"))

	for _, schema := range registry.Schemas() {
		assert.NotEqual(t, "broken_tool", schema.Name)
	}
}

func TestStoreOverwriteReplacesFiles(t *testing.T) {
	s := newTestStore(t)

	manifest := Manifest{Name: "echo", Description: "v1", Parameters: map[string]any{"type": "object"}}
	require.NoError(t, s.Write(manifest, "def execute(**kwargs):\n    return 'v1'\n", nil))

	manifest.Description = "v2"
	require.NoError(t, s.Write(manifest, "def execute(**kwargs):\n    return 'v2'\n", nil))

	tool, err := s.Load("echo")
	require.NoError(t, err)
	assert.Equal(t, "v2", tool.Description())

	code, err := os.ReadFile(filepath.Join(s.Root(), "echo", codeFile))
	require.NoError(t, err)
	assert.Contains(t, string(code), "'v2'")
}

func TestScriptToolExecute(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	s := newTestStore(t)
	manifest := Manifest{
		Name:        "echo_text",
		Description: "Echoes the text argument",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
	}
	code := "def execute(**kwargs):\n    return kwargs.get('text', '')\n"
	require.NoError(t, s.Write(manifest, code, nil))

	tool, err := s.Load("echo_text")
	require.NoError(t, err)
	require.NoError(t, tool.Validate(context.Background()))

	result := tool.Execute(context.Background(), map[string]any{"text": "ping"})
	require.False(t, result.IsError, result.Content)
	assert.Equal(t, "ping", result.Content)
}

func TestScriptToolExecuteFailure(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	s := newTestStore(t)
	manifest := Manifest{Name: "crasher", Description: "d", Parameters: map[string]any{"type": "object"}}
	code := "def execute(**kwargs):\n    raise RuntimeError('intentional')\n"
	require.NoError(t, s.Write(manifest, code, nil))

	tool, err := s.Load("crasher")
	require.NoError(t, err)

	result := tool.Execute(context.Background(), nil)
	require.True(t, result.IsError)
	assert.Contains(t, result.Content, "Error executing tool 'crasher'")
	assert.Contains(t, result.Content, "intentional")
}
