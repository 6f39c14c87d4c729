package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Agent.Provider)
	assert.Equal(t, 20, cfg.Agent.MaxIterations)
	assert.Equal(t, "python3", cfg.Tools.PythonBin)
	assert.True(t, cfg.Tools.InstallDeps)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"agent": {"provider": "openai", "model": "gpt-4o", "max_iterations": 5},
		"listeners": {"cron": {"enabled": true, "jobs": [{"name": "ping", "schedule": "* * * * *", "message": "ping"}]}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Agent.Provider)
	assert.Equal(t, "gpt-4o", cfg.Agent.Model)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	require.Len(t, cfg.Listeners.Cron.Jobs, 1)
	assert.Equal(t, "* * * * *", cfg.Listeners.Cron.Jobs[0].Schedule)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"agent": {"provider": "anthropic", "max_iterations": 5}}`), 0o644))

	t.Setenv("MAX_ITERATIONS", "7")
	t.Setenv("TOOLSMITH_PROVIDER", "openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Agent.MaxIterations)
	assert.Equal(t, "openai", cfg.Agent.Provider)
	assert.Equal(t, "sk-test", cfg.Providers.Anthropic.APIKey)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"agent": {"provider": "llama-at-home"}}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llama-at-home")
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolveRuntimePathsHonorsHomeOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TOOLSMITH_HOME", home)

	paths, err := ResolveRuntimePaths()
	require.NoError(t, err)

	assert.Equal(t, home, paths.Home)
	assert.Equal(t, filepath.Join(home, "config.json"), paths.ConfigPath)
	assert.Equal(t, filepath.Join(home, "tools"), paths.ToolsDir)
	assert.Equal(t, filepath.Join(home, "logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(home, "agent_status.json"), paths.StatusPath)

	require.NoError(t, paths.EnsureDirs())
	for _, dir := range []string{paths.ToolsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
