package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// EmitFunc is how listeners hand events to the queue.
type EmitFunc func(Event)

// Listener is a long-running event source. Start must return promptly
// after spawning its goroutines; Stop tears them down.
type Listener interface {
	Name() string
	Start(ctx context.Context, emit EmitFunc) error
	Stop() error
}

// Manager owns listener lifecycles. A listener that fails to start is
// logged and skipped; the rest keep running.
type Manager struct {
	queue     *Queue
	listeners []Listener

	mu      sync.Mutex
	started []Listener
}

func NewManager(queue *Queue, listeners []Listener) *Manager {
	return &Manager{
		queue:     queue,
		listeners: listeners,
	}
}

// StartAll starts every registered listener. Individual failures do
// not abort the others.
func (m *Manager) StartAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.listeners {
		if err := l.Start(ctx, m.queue.Push); err != nil {
			logger.ErrorCF("events", "Listener failed to start", map[string]any{
				"listener": l.Name(),
				"error":    err.Error(),
			})
			continue
		}
		m.started = append(m.started, l)
		logger.InfoCF("events", "Listener started", map[string]any{
			"listener": l.Name(),
		})
	}
}

// StopAll stops every listener that started. Stop errors and panics
// are swallowed so one broken listener cannot block shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.started {
		m.stopOne(l)
	}
	m.started = nil
}

func (m *Manager) stopOne(l Listener) {
	defer func() {
		if r := recover(); r != nil {
			logger.WarnCF("events", "Listener panicked during stop", map[string]any{
				"listener": l.Name(),
				"panic":    fmt.Sprintf("%v", r),
			})
		}
	}()

	if err := l.Stop(); err != nil {
		logger.WarnCF("events", "Listener stop failed", map[string]any{
			"listener": l.Name(),
			"error":    err.Error(),
		})
	}
}

// Running reports the names of listeners that started successfully.
func (m *Manager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.started))
	for _, l := range m.started {
		names = append(names, l.Name())
	}
	return names
}
