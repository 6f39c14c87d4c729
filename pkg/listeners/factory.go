package listeners

import (
	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
)

// Build constructs every listener enabled in the config. Listeners
// that fail later, at start, are skipped by the manager; construction
// itself never fails.
func Build(cfg config.ListenersConfig) []events.Listener {
	var listeners []events.Listener

	if cfg.Cron.Enabled {
		listeners = append(listeners, NewCronListener(cfg.Cron))
	}
	if cfg.Webhook.Enabled {
		listeners = append(listeners, NewWebhookListener(cfg.Webhook))
	}
	if cfg.WebSocket.Enabled {
		listeners = append(listeners, NewWebSocketListener(cfg.WebSocket))
	}
	if cfg.Telegram.Enabled {
		listeners = append(listeners, NewTelegramListener(cfg.Telegram))
	}
	if cfg.Discord.Enabled {
		listeners = append(listeners, NewDiscordListener(cfg.Discord))
	}

	return listeners
}
