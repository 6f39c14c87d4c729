package listeners

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// WebSocketListener maintains a client connection to an event feed and
// turns every text frame into an event. Dropped connections are
// redialed with backoff until the listener stops.
type WebSocketListener struct {
	cfg    config.WebSocketConfig
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebSocketListener(cfg config.WebSocketConfig) *WebSocketListener {
	return &WebSocketListener{cfg: cfg}
}

func (l *WebSocketListener) Name() string { return "websocket" }

func (l *WebSocketListener) Start(ctx context.Context, emit events.EmitFunc) error {
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)
	go l.run(runCtx, emit)
	return nil
}

func (l *WebSocketListener) run(ctx context.Context, emit events.EmitFunc) {
	defer l.wg.Done()

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.DialContext(ctx, l.cfg.URL, nil)
		if err != nil {
			logger.WarnCF("listeners", "WebSocket dial failed", map[string]any{
				"url":   l.cfg.URL,
				"error": err.Error(),
			})
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		l.mu.Lock()
		l.conn = conn
		l.mu.Unlock()

		l.readLoop(ctx, conn, emit)
	}
}

func (l *WebSocketListener) readLoop(ctx context.Context, conn *websocket.Conn, emit events.EmitFunc) {
	defer conn.Close()

	priority := events.Priority(l.cfg.Priority)
	if priority <= 0 {
		priority = events.PriorityNormal
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.WarnCF("listeners", "WebSocket read failed", map[string]any{
					"error": err.Error(),
				})
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		emit(events.New("websocket", "message", string(data), priority))
	}
}

func (l *WebSocketListener) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}

	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
	}
	l.mu.Unlock()

	l.wg.Wait()
	return nil
}
