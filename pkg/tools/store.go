package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

const (
	manifestFile     = "manifest.json"
	codeFile         = "tool.py"
	requirementsFile = "requirements.txt"
	runnerFile       = "_runner.py"
)

var toolNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// runnerScript is the harness every script tool runs through: it loads
// the tool file, reads the call arguments as JSON on stdin, invokes
// execute(**kwargs), and writes the string result to stdout.
const runnerScript = `import importlib.util
import json
import sys


def main():
    path = sys.argv[1]
    spec = importlib.util.spec_from_file_location("tool_module", path)
    module = importlib.util.module_from_spec(spec)
    spec.loader.exec_module(module)

    raw = sys.stdin.read()
    kwargs = json.loads(raw) if raw.strip() else {}
    result = module.execute(**kwargs)
    sys.stdout.write("" if result is None else str(result))


if __name__ == "__main__":
    main()
`

// Manifest describes one stored tool. It is what the registry exposes
// to the model, plus how the runtime should invoke the code file.
type Manifest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Tags        []string       `json:"tags,omitempty"`
	Interpreter string         `json:"interpreter,omitempty"`
	// TimeoutSeconds bounds one invocation when set. Zero means the
	// tool runs to completion.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// Store persists tools as one directory per tool under root, each with
// a manifest, a code file, and optionally a requirements file.
type Store struct {
	root        string
	pythonBin   string
	pipBin      string
	installDeps bool
}

func NewStore(root, pythonBin, pipBin string, installDeps bool) *Store {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	if pipBin == "" {
		pipBin = "pip"
	}
	return &Store{
		root:        root,
		pythonBin:   pythonBin,
		pipBin:      pipBin,
		installDeps: installDeps,
	}
}

func (s *Store) Root() string { return s.root }

// EnsureRoot creates the tools directory and refreshes the runner
// harness inside it.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create tools dir: %w", err)
	}
	runnerPath := filepath.Join(s.root, runnerFile)
	if err := os.WriteFile(runnerPath, []byte(runnerScript), 0o644); err != nil {
		return fmt.Errorf("failed to write runner harness: %w", err)
	}
	return nil
}

func (s *Store) toolDir(name string) string {
	return filepath.Join(s.root, name)
}

// ValidateName enforces the snake_case contract for dynamic tool names.
func ValidateName(name string) error {
	if !toolNameRegex.MatchString(name) {
		return fmt.Errorf("invalid tool name %q: must match %s", name, toolNameRegex.String())
	}
	return nil
}

// Write persists a tool directory: manifest, code, and requirements if
// any dependencies were requested. Existing files are overwritten.
func (s *Store) Write(manifest Manifest, code string, dependencies []string) error {
	dir := s.toolDir(manifest.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create tool dir: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, codeFile), []byte(code), 0o644); err != nil {
		return fmt.Errorf("failed to write tool code: %w", err)
	}

	if len(dependencies) > 0 {
		reqs := ""
		for _, dep := range dependencies {
			reqs += dep + "\n"
		}
		if err := os.WriteFile(filepath.Join(dir, requirementsFile), []byte(reqs), 0o644); err != nil {
			return fmt.Errorf("failed to write requirements: %w", err)
		}
	}

	return nil
}

// Load reads one tool directory and builds a fresh executable handle.
func (s *Store) Load(name string) (*ScriptTool, error) {
	dir := s.toolDir(name)

	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("manifest in %s has no name", dir)
	}

	codePath := filepath.Join(dir, codeFile)
	if _, err := os.Stat(codePath); err != nil {
		return nil, fmt.Errorf("tool code missing: %w", err)
	}

	interpreter := manifest.Interpreter
	if interpreter == "" {
		interpreter = s.pythonBin
	}

	return &ScriptTool{
		manifest:    manifest,
		interpreter: interpreter,
		runnerPath:  filepath.Join(s.root, runnerFile),
		codePath:    codePath,
	}, nil
}

// LoadAll scans the tools root and registers every loadable tool.
// Directories that are malformed or whose code does not compile are
// logged and skipped. When the interpreter itself is missing the
// compile check is skipped so stored tools still register.
func (s *Store) LoadAll(ctx context.Context, registry *Registry) int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WarnCF("tools", "Failed to scan tools dir", map[string]any{
				"dir":   s.root,
				"error": err.Error(),
			})
		}
		return 0
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		tool, err := s.Load(name)
		if err != nil {
			logger.WarnCF("tools", "Failed to load tool", map[string]any{
				"tool":  name,
				"error": err.Error(),
			})
			continue
		}
		if _, err := exec.LookPath(tool.interpreter); err != nil {
			logger.WarnCF("tools", "Interpreter unavailable, skipping compile check", map[string]any{
				"tool":        name,
				"interpreter": tool.interpreter,
			})
		} else if err := tool.Validate(ctx); err != nil {
			logger.WarnCF("tools", "Failed to load tool", map[string]any{
				"tool":  name,
				"error": err.Error(),
			})
			continue
		}
		registry.Register(tool)
		loaded++
	}

	if loaded > 0 {
		logger.InfoCF("tools", "Loaded stored tools", map[string]any{
			"count": loaded,
		})
	}
	return loaded
}
