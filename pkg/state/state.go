package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// Agent states published for external observers.
const (
	StateIdle          = "idle"
	StateProcessing    = "processing"
	StateToolExecuting = "tool_executing"
)

// Status is the externally visible snapshot written to disk on every
// transition.
type Status struct {
	State        string `json:"state"`
	SessionID    string `json:"session_id"`
	CurrentTool  string `json:"current_tool,omitempty"`
	LastActivity string `json:"last_activity"`
	PID          int    `json:"pid"`
}

// Publisher writes the status file atomically so readers never see a
// partial document.
type Publisher struct {
	mu     sync.Mutex
	path   string
	status Status
}

func NewPublisher(path, sessionID string) *Publisher {
	return &Publisher{
		path: path,
		status: Status{
			State:     StateIdle,
			SessionID: sessionID,
			PID:       os.Getpid(),
		},
	}
}

// Set transitions to a state with no tool in flight.
func (p *Publisher) Set(state string) {
	p.SetTool(state, "")
}

// SetTool transitions to a state, recording which tool is running.
func (p *Publisher) SetTool(state, tool string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.CurrentTool = tool
	p.status.LastActivity = time.Now().UTC().Format(time.RFC3339)

	if err := p.saveAtomic(); err != nil {
		logger.WarnCF("state", "Failed to publish status", map[string]any{
			"error": err.Error(),
		})
	}
}

func (p *Publisher) saveAtomic() error {
	data, err := json.MarshalIndent(p.status, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := p.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp status: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace status file: %w", err)
	}
	return nil
}

// Clear removes the status file on clean shutdown.
func (p *Publisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		logger.WarnCF("state", "Failed to remove status file", map[string]any{
			"path":  p.path,
			"error": err.Error(),
		})
	}
}
