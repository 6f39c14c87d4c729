package listeners

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/logger"
)

// CronListener emits one event each time a configured schedule fires.
type CronListener struct {
	cfg    config.CronConfig
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCronListener(cfg config.CronConfig) *CronListener {
	return &CronListener{cfg: cfg}
}

func (l *CronListener) Name() string { return "cron" }

func (l *CronListener) Start(ctx context.Context, emit events.EmitFunc) error {
	gron := gronx.New()
	for _, job := range l.cfg.Jobs {
		if !gron.IsValid(job.Schedule) {
			return fmt.Errorf("invalid cron expression %q for job %q", job.Schedule, job.Name)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	for _, job := range l.cfg.Jobs {
		l.wg.Add(1)
		go l.runJob(runCtx, job, emit)
	}
	return nil
}

func (l *CronListener) runJob(ctx context.Context, job config.CronJob, emit events.EmitFunc) {
	defer l.wg.Done()

	for {
		next, err := gronx.NextTickAfter(job.Schedule, time.Now(), false)
		if err != nil {
			logger.WarnCF("listeners", "Cron schedule evaluation failed", map[string]any{
				"job":   job.Name,
				"error": err.Error(),
			})
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		priority := events.Priority(job.Priority)
		if priority <= 0 {
			priority = events.PriorityNormal
		}
		emit(events.New("cron", job.Name, job.Message, priority))
	}
}

func (l *CronListener) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	return nil
}
