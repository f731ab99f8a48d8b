package scheduler

import (
	"context"
	"fmt"
	"time"

	"artisan_backend/platform/config"
	"artisan_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewWorker builds the asynq server that processes sweep tasks and the cron
// scheduler that enqueues them on QUOTE_EXPIRATION_CRON.
func NewWorker(cfg config.SchedulerConfig, loc *time.Location, sweeps *SweepHandler, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.Handle(TaskExpirationSweep, sweeps)

	var cron *asynq.Scheduler
	if spec := cfg.GetQuoteExpirationCron(); spec != "" {
		if loc == nil {
			loc = time.Local
		}
		cron = asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: loc})
		task, err := NewExpirationSweepTask(ExpirationSweepPayload{TriggeredBy: TriggerCron})
		if err != nil {
			return nil, err
		}
		if _, err := cron.Register(spec, task, asynq.Queue(queue), asynq.Timeout(sweepTaskTimeout), asynq.MaxRetry(3)); err != nil {
			return nil, fmt.Errorf("register expiration cron %q: %w", spec, err)
		}
	}

	return &Worker{
		server:    server,
		mux:       mux,
		scheduler: cron,
		log:       log,
	}, nil
}

// Run blocks until ctx is cancelled or the server stops.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("start cron scheduler: %w", err)
		}
		defer w.scheduler.Shutdown()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return nil
	case err := <-errCh:
		if err != nil {
			w.log.Error("scheduler worker stopped", "error", err)
		}
		return err
	}
}
