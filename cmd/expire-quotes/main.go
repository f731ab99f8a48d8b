// Command expire-quotes runs the quote expiration sweep once and prints the
// aggregate result as JSON. With -enqueue the sweep is handed to the
// scheduler worker instead of running in-process.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"artisan_backend/internal/followup"
	"artisan_backend/internal/quotes"
	"artisan_backend/internal/scheduler"
	"artisan_backend/platform/config"
	"artisan_backend/platform/db"
	"artisan_backend/platform/logger"
	"artisan_backend/platform/validator"

	"github.com/google/uuid"
)

func main() {
	userFlag := flag.String("user", "", "limit the sweep to one user id")
	enqueue := flag.Bool("enqueue", false, "enqueue the sweep on the scheduler queue instead of running it here")
	flag.Parse()

	if err := run(*userFlag, *enqueue); err != nil {
		fmt.Fprintln(os.Stderr, "expire-quotes:", err)
		os.Exit(1)
	}
}

func run(userFlag string, enqueue bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	var userID *uuid.UUID
	if userFlag != "" {
		id, err := uuid.Parse(userFlag)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = &id
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if enqueue {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		taskID, err := client.EnqueueExpirationSweep(ctx, userID, scheduler.TriggerManual)
		if err != nil {
			return fmt.Errorf("enqueue sweep: %w", err)
		}
		return printJSON(map[string]string{"taskId": taskID})
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	quotesModule := quotes.NewModule(pool, validator.New(), log)
	svc := quotesModule.Service()
	svc.SetLocation(cfg.GetLocation())
	svc.SetFollowUpScheduler(followup.New(cfg, log))

	var lock scheduler.Locker
	if cfg.GetRedisURL() != "" {
		rdb, err := scheduler.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		lock = scheduler.NewSweepLock(rdb)
	}

	result, err := scheduler.NewSweepHandler(svc, lock, log).Run(ctx, userID, scheduler.TriggerManual)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("another sweep is already running")
	}
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
