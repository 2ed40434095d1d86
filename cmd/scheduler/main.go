package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"papex_backend/internal/email"
	leadrepo "papex_backend/internal/leads/repository"
	"papex_backend/internal/leads/lifecycle"
	"papex_backend/internal/notification"
	"papex_backend/internal/scheduler"
	"papex_backend/internal/sms"
	"papex_backend/internal/telephony"
	"papex_backend/platform/branding"
	"papex_backend/platform/config"
	"papex_backend/platform/db"
	"papex_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.GetRedisURL() == "" {
		return fmt.Errorf("REDIS_URL is required to run the scheduler")
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	profile, err := branding.Load(cfg.GetBrandingFile())
	if err != nil {
		return err
	}
	emailSender, err := email.NewSender(cfg, profile)
	if err != nil {
		return fmt.Errorf("email sender: %w", err)
	}
	smsSender, err := sms.NewSender(cfg, log)
	if err != nil {
		return fmt.Errorf("sms sender: %w", err)
	}
	caller, err := telephony.NewCaller(cfg, log)
	if err != nil {
		return fmt.Errorf("telephony: %w", err)
	}

	queue, err := scheduler.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("task queue: %w", err)
	}
	defer func() { _ = queue.Close() }()

	deliverer := notification.NewService(emailSender, smsSender, profile, cfg)
	dispatcher := notification.NewDispatcher(queue, deliverer, log)
	defer dispatcher.Wait()

	runner := lifecycle.New(leadrepo.New(pool), deliverer, dispatcher, cfg, log)
	handlers := scheduler.NewHandlers(deliverer, caller, runner, log)

	worker, err := scheduler.NewWorker(cfg, handlers, log)
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		return fmt.Errorf("periodic scheduler: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		periodic.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping scheduler")
	wg.Wait()
	return nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", lastErr)

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt*attempt) * baseDelay):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
