package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artisan_backend/internal/followup"
	"artisan_backend/internal/quotes"
	"artisan_backend/internal/scheduler"
	"artisan_backend/platform/config"
	"artisan_backend/platform/db"
	"artisan_backend/platform/logger"
	"artisan_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "cron", cfg.GetQuoteExpirationCron(), "timezone", cfg.GetLocation().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Worker-side quote wiring (no HTTP handlers required).
	quotesModule := quotes.NewModule(pool, validator.New(), log)
	quoteSvc := quotesModule.Service()
	quoteSvc.SetLocation(cfg.GetLocation())
	quoteSvc.SetFollowUpScheduler(followup.New(cfg, log))

	rdb, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	sweeps := scheduler.NewSweepHandler(quoteSvc, scheduler.NewSweepLock(rdb), log)

	retention := scheduler.NewRetentionCleanup(quotesModule.Repository(), cfg.GetDraftRetention(), cfg.GetAccessLogRetention(), log)
	go retention.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, cfg.GetLocation(), sweeps, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	if err := worker.Run(ctx); err != nil {
		log.Error("scheduler exited", "error", err)
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

	return errors.New(name + ": " + lastErr.Error())
}
