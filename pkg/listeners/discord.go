package listeners

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
)

// DiscordListener turns channel messages into events. An empty channel
// allowlist accepts every channel the bot can see.
type DiscordListener struct {
	cfg     config.DiscordConfig
	session *discordgo.Session
}

func NewDiscordListener(cfg config.DiscordConfig) *DiscordListener {
	return &DiscordListener{cfg: cfg}
}

func (l *DiscordListener) Name() string { return "discord" }

func (l *DiscordListener) Start(ctx context.Context, emit events.EmitFunc) error {
	if l.cfg.Token == "" {
		return fmt.Errorf("discord listener requires a bot token")
	}

	session, err := discordgo.New("Bot " + l.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	allowed := make(map[string]bool, len(l.cfg.ChannelIDs))
	for _, id := range l.cfg.ChannelIDs {
		allowed[id] = true
	}

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.ID == s.State.User.ID {
			return
		}
		if m.Content == "" {
			return
		}
		if len(allowed) > 0 && !allowed[m.ChannelID] {
			return
		}

		ev := events.New("discord", "message", m.Content, events.PriorityNormal)
		ev.Metadata = map[string]any{
			"channel_id": m.ChannelID,
			"author":     m.Author.Username,
		}
		emit(ev)
	})

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}

	l.session = session
	return nil
}

func (l *DiscordListener) Stop() error {
	if l.session == nil {
		return nil
	}
	return l.session.Close()
}
