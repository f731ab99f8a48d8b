package scheduler

import (
	"context"
	"time"

	"artisan_backend/platform/logger"
)

const defaultRetentionCleanupInterval = 6 * time.Hour

// RetentionPurger deletes rows that have outlived their retention window.
type RetentionPurger interface {
	DeleteDraftsSavedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeAccessLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeResult counts the rows removed by one cleanup pass.
type PurgeResult struct {
	Drafts     int64
	AccessLogs int64
}

// RetentionCleanup periodically purges stale quote drafts and old share
// access logs. A zero retention disables that half of the pass.
type RetentionCleanup struct {
	repo               RetentionPurger
	draftRetention     time.Duration
	accessLogRetention time.Duration
	interval           time.Duration
	now                func() time.Time
	log                *logger.Logger
}

func NewRetentionCleanup(repo RetentionPurger, draftRetention, accessLogRetention time.Duration, log *logger.Logger) *RetentionCleanup {
	return &RetentionCleanup{
		repo:               repo,
		draftRetention:     draftRetention,
		accessLogRetention: accessLogRetention,
		interval:           defaultRetentionCleanupInterval,
		now:                time.Now,
		log:                log,
	}
}

// RunOnce runs a single purge pass. A draft purge failure does not stop the
// access log purge; the first error is returned.
func (c *RetentionCleanup) RunOnce(ctx context.Context) (PurgeResult, error) {
	var (
		result   PurgeResult
		firstErr error
	)
	now := c.now()

	if c.draftRetention > 0 {
		cutoff := now.Add(-c.draftRetention)
		deleted, err := c.repo.DeleteDraftsSavedBefore(ctx, cutoff)
		if err != nil {
			firstErr = err
		} else {
			result.Drafts = deleted
			if deleted > 0 {
				c.log.Info("stale quote drafts purged", "deleted", deleted, "cutoff", cutoff)
			}
		}
	}

	if c.accessLogRetention > 0 {
		cutoff := now.Add(-c.accessLogRetention)
		deleted, err := c.repo.PurgeAccessLogsBefore(ctx, cutoff)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			result.AccessLogs = deleted
			if deleted > 0 {
				c.log.Info("quote access logs purged", "deleted", deleted, "cutoff", cutoff)
			}
		}
	}

	return result, firstErr
}

func (c *RetentionCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil || (c.draftRetention <= 0 && c.accessLogRetention <= 0) {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *RetentionCleanup) tick(ctx context.Context) {
	if _, err := c.RunOnce(ctx); err != nil && ctx.Err() == nil {
		c.log.Error("quote retention cleanup failed", "error", err)
	}
}
