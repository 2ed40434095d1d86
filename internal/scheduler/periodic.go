package scheduler

import (
	"context"
	"fmt"
	"time"

	"papex_backend/platform/config"
	"papex_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const (
	defaultReminderCron = "0 9 * * *"
	defaultAbsenceCron  = "*/30 * * * *"
)

// Periodic enqueues the lead lifecycle jobs on their cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.GetTimezone())
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: loc,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic enqueue failed", "error", err)
				return
			}
			log.Info("periodic task enqueued", "task", info.Type, "id", info.ID)
		},
	})

	queue := asynq.Queue(queueName(cfg))
	if _, err := s.Register(cronOr(cfg.GetReminderCron(), defaultReminderCron), NewSendRemindersTask(), queue); err != nil {
		return nil, fmt.Errorf("register reminder job: %w", err)
	}
	if _, err := s.Register(cronOr(cfg.GetAbsenceCron(), defaultAbsenceCron), NewMarkAbsentTask(), queue); err != nil {
		return nil, fmt.Errorf("register absence job: %w", err)
	}

	return &Periodic{scheduler: s, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}

func cronOr(spec, fallback string) string {
	if spec == "" {
		return fallback
	}
	return spec
}
