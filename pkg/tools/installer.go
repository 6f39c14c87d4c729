package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// InstallDependencies runs a blocking pip install against the tool's
// requirements file. The install shares the host environment, so a
// newly installed package is visible to every subsequent invocation.
func (s *Store) InstallDependencies(ctx context.Context, name string) error {
	if !s.installDeps {
		logger.DebugCF("tools", "Dependency install disabled, skipping", map[string]any{
			"tool": name,
		})
		return nil
	}

	reqPath := filepath.Join(s.toolDir(name), requirementsFile)

	cmd := exec.CommandContext(ctx, s.pipBin, "install", "-r", reqPath)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.InfoCF("tools", "Installing tool dependencies", map[string]any{
		"tool": name,
	})

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(output.String())
		if len(detail) > 1000 {
			detail = detail[len(detail)-1000:]
		}
		return fmt.Errorf("pip install failed: %v\n%s", err, detail)
	}
	return nil
}
