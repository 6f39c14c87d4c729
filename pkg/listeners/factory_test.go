package listeners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
)

func TestBuildReturnsOnlyEnabledListeners(t *testing.T) {
	cfg := config.ListenersConfig{
		Cron:    config.CronConfig{Enabled: true},
		Webhook: config.WebhookConfig{Enabled: true, Host: "127.0.0.1"},
	}

	built := Build(cfg)
	require.Len(t, built, 2)

	names := []string{built[0].Name(), built[1].Name()}
	assert.Equal(t, []string{"cron", "webhook"}, names)
}

func TestBuildEmptyConfig(t *testing.T) {
	assert.Empty(t, Build(config.ListenersConfig{}))
}

func TestCronRejectsInvalidSchedule(t *testing.T) {
	l := NewCronListener(config.CronConfig{
		Enabled: true,
		Jobs: []config.CronJob{
			{Name: "bad", Schedule: "not a cron expr", Message: "x"},
		},
	})

	err := l.Start(context.Background(), func(events.Event) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestCronStartsAndStopsCleanly(t *testing.T) {
	l := NewCronListener(config.CronConfig{
		Enabled: true,
		Jobs: []config.CronJob{
			{Name: "minutely", Schedule: "* * * * *", Message: "tick"},
		},
	})

	require.NoError(t, l.Start(context.Background(), func(events.Event) {}))
	assert.NoError(t, l.Stop())
}
