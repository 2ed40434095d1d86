package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/auth"
	"papex_backend/internal/candidates"
	"papex_backend/internal/clients"
	"papex_backend/internal/email"
	"papex_backend/internal/events"
	"papex_backend/internal/exports"
	apphttp "papex_backend/internal/http"
	"papex_backend/internal/http/router"
	"papex_backend/internal/jobs"
	"papex_backend/internal/leads"
	"papex_backend/internal/notification"
	"papex_backend/internal/notification/sse"
	"papex_backend/internal/pdf"
	"papex_backend/internal/scheduler"
	"papex_backend/internal/sms"
	"papex_backend/internal/telephony"
	"papex_backend/migrations"
	"papex_backend/platform/branding"
	"papex_backend/platform/config"
	"papex_backend/platform/db"
	"papex_backend/platform/logger"
	"papex_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("database migrations applied")

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
	log.Info("database connection established")

	profile, err := branding.Load(cfg.GetBrandingFile())
	if err != nil {
		return err
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	ensureBucket(ctx, log, storageSvc)

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

	health := []apphttp.HealthChecker{db.NewPoolAdapter(pool), storageSvc}

	queue, closeQueue := initQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}
	if redisHealth, err := scheduler.NewRedisHealth(cfg.GetRedisURL()); err == nil {
		health = append(health, redisHealth)
		defer func() { _ = redisHealth.Close() }()
	}

	val := validator.New()
	eventBus := events.NewInMemoryBus(log)

	deliverer := notification.NewService(emailSender, smsSender, profile, cfg)
	var notifyQueue notification.Enqueuer
	var clickQueue telephony.Enqueuer
	if queue != nil {
		notifyQueue = queue
		clickQueue = queue
	}
	dispatcher := notification.NewDispatcher(notifyQueue, deliverer, log)
	defer dispatcher.Wait()
	notification.New(dispatcher, log).RegisterHandlers(eventBus)

	streams := sse.New(log)
	streamModule := sse.NewModule(streams)
	streamModule.RegisterHandlers(eventBus)

	authModule := auth.NewModule(pool, cfg, val, log)
	leadsModule := leads.NewModule(pool, eventBus, val, cfg, authModule.StaffDirectory(), log)
	jobsModule := jobs.NewModule(pool, log)
	candidatesModule := candidates.NewModule(pool, jobsModule.Service(), storageSvc, val, log)
	clientsModule := clients.NewModule(pool, leadsModule.Repository(), storageSvc, pdf.NewGenerator(profile),
		emailSender, eventBus, val, log)
	telephonyModule := telephony.NewModule(clickQueue, caller, log)
	exportsModule := exports.NewModule(pool)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			jobsModule,
			candidatesModule,
			clientsModule,
			telephonyModule,
			exportsModule,
			streamModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(streams.Close)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-srvErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// initQueue returns nil without Redis; notifications are then delivered inline
// and click2call runs in a goroutine.
func initQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; notifications will be sent inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc *storage.MinIOService) {
	if err := withRetry(ctx, log, "ensure storage bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket", "bucket", storageSvc.Bucket(), "error", err)
		return
	}
	log.Info("storage bucket ready", "bucket", storageSvc.Bucket())
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
