package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// WebhookListener accepts external events over HTTP POST. Requests
// beyond the configured rate are rejected with 429.
type WebhookListener struct {
	cfg     config.WebhookConfig
	server  *http.Server
	limiter *rate.Limiter
	addr    string
}

type webhookPayload struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Priority int    `json:"priority"`
}

func NewWebhookListener(cfg config.WebhookConfig) *WebhookListener {
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	return &WebhookListener{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (l *WebhookListener) Name() string { return "webhook" }

func (l *WebhookListener) Start(ctx context.Context, emit events.EmitFunc) error {
	mux := http.NewServeMux()
	mux.HandleFunc(l.cfg.Path, func(w http.ResponseWriter, r *http.Request) {
		l.handle(w, r, emit)
	})

	addr := fmt.Sprintf("%s:%d", l.cfg.Host, l.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("webhook listen on %s: %w", addr, err)
	}

	l.addr = listener.Addr().String()
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := l.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("listeners", "Webhook server stopped", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	logger.InfoCF("listeners", "Webhook listening", map[string]any{
		"addr": l.addr,
		"path": l.cfg.Path,
	})
	return nil
}

// Addr reports the bound address once started, useful when the
// configured port is 0.
func (l *WebhookListener) Addr() string { return l.addr }

func (l *WebhookListener) handle(w http.ResponseWriter, r *http.Request, emit events.EmitFunc) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if l.cfg.Token != "" && r.Header.Get("Authorization") != "Bearer "+l.cfg.Token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !l.limiter.Allow() {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if payload.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if payload.Type == "" {
		payload.Type = "webhook_event"
	}

	priority := events.Priority(payload.Priority)
	if priority <= 0 {
		priority = events.PriorityNormal
	}

	ev := events.New("webhook", payload.Type, payload.Text, priority)
	ev.Metadata = map[string]any{
		"event_id":    uuid.NewString(),
		"remote_addr": r.RemoteAddr,
	}
	emit(ev)

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued", "event_id": ev.Metadata["event_id"].(string)})
}

func (l *WebhookListener) Stop() error {
	if l.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.server.Shutdown(shutdownCtx)
}
