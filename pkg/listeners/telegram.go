package listeners

import (
	"context"
	"fmt"
	"sync"

	"github.com/mymmrac/telego"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// TelegramListener turns incoming bot messages into events. An empty
// chat allowlist accepts every chat.
type TelegramListener struct {
	cfg    config.TelegramConfig
	bot    *telego.Bot
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTelegramListener(cfg config.TelegramConfig) *TelegramListener {
	return &TelegramListener{cfg: cfg}
}

func (l *TelegramListener) Name() string { return "telegram" }

func (l *TelegramListener) Start(ctx context.Context, emit events.EmitFunc) error {
	if l.cfg.Token == "" {
		return fmt.Errorf("telegram listener requires a bot token")
	}

	bot, err := telego.NewBot(l.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	l.bot = bot

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	updates, err := bot.UpdatesViaLongPolling(runCtx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	allowed := make(map[int64]bool, len(l.cfg.ChatIDs))
	for _, id := range l.cfg.ChatIDs {
		allowed[id] = true
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil || update.Message.Text == "" {
					continue
				}
				chatID := update.Message.Chat.ID
				if len(allowed) > 0 && !allowed[chatID] {
					logger.DebugCF("listeners", "Telegram message from disallowed chat", map[string]any{
						"chat_id": chatID,
					})
					continue
				}

				ev := events.New("telegram", "message", update.Message.Text, events.PriorityNormal)
				ev.Metadata = map[string]any{"chat_id": chatID}
				if update.Message.From != nil {
					ev.Metadata["from"] = update.Message.From.Username
				}
				emit(ev)
			}
		}
	}()

	return nil
}

func (l *TelegramListener) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	return nil
}
