package scheduler

import (
	"context"
	"fmt"

	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ExpirationSweeper runs one pass of the quote expiration sweep.
type ExpirationSweeper interface {
	ProcessExpirations(ctx context.Context, userID *uuid.UUID) (*transport.ExpirationRunResult, error)
}

// Locker guards the sweep against concurrent replicas.
type Locker interface {
	Acquire(ctx context.Context) (string, error)
	Release(ctx context.Context, token string) error
}

// SweepHandler processes quotes:expiration_sweep tasks.
type SweepHandler struct {
	sweeper ExpirationSweeper
	lock    Locker
	log     *logger.Logger
}

func NewSweepHandler(sweeper ExpirationSweeper, lock Locker, log *logger.Logger) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, lock: lock, log: log}
}

func (h *SweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseExpirationSweepPayload(task)
	if err != nil {
		return fmt.Errorf("parse sweep payload: %v: %w", err, asynq.SkipRetry)
	}
	scope, err := payload.Scope()
	if err != nil {
		return fmt.Errorf("invalid sweep user %q: %v: %w", payload.UserID, err, asynq.SkipRetry)
	}

	_, err = h.Run(ctx, scope, payload.TriggeredBy)
	return err
}

// Run executes one sweep under the lock. A nil result with a nil error means
// another holder was already sweeping.
func (h *SweepHandler) Run(ctx context.Context, userID *uuid.UUID, trigger string) (*transport.ExpirationRunResult, error) {
	if trigger == "" {
		trigger = TriggerManual
	}

	if h.lock != nil {
		token, err := h.lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if token == "" {
			h.log.Info("expiration sweep skipped, lock held elsewhere", "trigger", trigger)
			return nil, nil
		}
		defer func() {
			if err := h.lock.Release(context.WithoutCancel(ctx), token); err != nil {
				h.log.Warn("release sweep lock failed", "error", err)
			}
		}()
	}

	result, err := h.sweeper.ProcessExpirations(ctx, userID)
	if result != nil {
		h.log.SweepCompleted(trigger, result.Scanned, result.Processed, result.Expired)
	}
	if err != nil {
		return result, fmt.Errorf("expiration sweep: %w", err)
	}
	return result, nil
}
