package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RuntimePaths locates everything the agent persists under one home
// directory, so multiple installs can coexist via TOOLSMITH_HOME.
type RuntimePaths struct {
	Home       string
	ConfigPath string
	ToolsDir   string
	LogsDir    string
	StatusPath string
}

// ResolveRuntimePaths determines the runtime home: TOOLSMITH_HOME if
// set, otherwise ~/.toolsmith.
func ResolveRuntimePaths() (*RuntimePaths, error) {
	home := os.Getenv("TOOLSMITH_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		home = filepath.Join(userHome, ".toolsmith")
	} else {
		expanded, err := expandHome(home)
		if err != nil {
			return nil, err
		}
		home = expanded
	}

	return &RuntimePaths{
		Home:       home,
		ConfigPath: filepath.Join(home, "config.json"),
		ToolsDir:   filepath.Join(home, "tools"),
		LogsDir:    filepath.Join(home, "logs"),
		StatusPath: filepath.Join(home, "agent_status.json"),
	}, nil
}

// EnsureDirs creates the runtime directory tree if missing.
func (p *RuntimePaths) EnsureDirs() error {
	for _, dir := range []string{p.Home, p.ToolsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand ~: %w", err)
		}
		if path == "~" {
			return userHome, nil
		}
		return filepath.Join(userHome, path[2:]), nil
	}
	return path, nil
}
