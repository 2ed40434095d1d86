package scheduler

import (
	"context"
	"fmt"
	"time"

	"papex_backend/internal/leads/lifecycle"
	"papex_backend/internal/notification"
	"papex_backend/platform/config"
	"papex_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// LifecycleRunner runs the periodic lead jobs.
type LifecycleRunner interface {
	SendReminders(ctx context.Context, now time.Time) (lifecycle.Result, error)
	MarkAbsent(ctx context.Context, now time.Time) (lifecycle.Result, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, msg notification.Message) error
}

type Caller interface {
	Click2Call(ctx context.Context, number string) error
}

// Handlers holds the task handlers, independent of the asynq server so they
// can be driven directly.
type Handlers struct {
	deliverer Deliverer
	caller    Caller
	lifecycle LifecycleRunner
	log       *logger.Logger
	now       func() time.Time
}

func NewHandlers(deliverer Deliverer, caller Caller, runner LifecycleRunner, log *logger.Logger) *Handlers {
	return &Handlers{deliverer: deliverer, caller: caller, lifecycle: runner, log: log, now: time.Now}
}

// Register mounts every task type on mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskNotifyEmail, h.handleNotification)
	mux.HandleFunc(TaskNotifySMS, h.handleNotification)
	mux.HandleFunc(TaskClick2Call, h.handleClick2Call)
	mux.HandleFunc(TaskSendReminders, h.handleSendReminders)
	mux.HandleFunc(TaskMarkAbsent, h.handleMarkAbsent)
}

// handleNotification never fails the task: delivery errors are logged and
// the message is dropped.
func (h *Handlers) handleNotification(ctx context.Context, task *asynq.Task) error {
	msg, err := ParseNotificationPayload(task)
	if err != nil {
		h.log.Error("invalid notification payload", "task", task.Type(), "error", err)
		return nil
	}
	if err := h.deliverer.Deliver(ctx, msg); err != nil {
		h.log.NotificationFailed(string(msg.Channel), string(msg.Kind), msg.Lead.ID, err)
	}
	return nil
}

func (h *Handlers) handleClick2Call(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseClick2CallPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return h.caller.Click2Call(ctx, payload.PhoneNumber)
}

func (h *Handlers) handleSendReminders(ctx context.Context, _ *asynq.Task) error {
	_, err := h.lifecycle.SendReminders(ctx, h.now())
	return err
}

func (h *Handlers) handleMarkAbsent(ctx context.Context, _ *asynq.Task) error {
	_, err := h.lifecycle.MarkAbsent(ctx, h.now())
	return err
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, handlers *Handlers, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error("task failed", "task", task.Type(), "error", err)
		}),
	})

	mux := asynq.NewServeMux()
	handlers.Register(mux)

	return &Worker{server: server, mux: mux, log: log}, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
