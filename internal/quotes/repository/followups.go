package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// StopActiveFollowUps marks every pending or scheduled follow-up of a quote as
// stopped and records the reason in its meta. It returns the number of rows
// that were stopped; zero is not an error.
func (r *Repository) StopActiveFollowUps(ctx context.Context, quoteID uuid.UUID, reason string, now time.Time) (int64, error) {
	query := `
		UPDATE quote_follow_ups SET
			status = 'stopped',
			updated_at = $3,
			meta = COALESCE(meta, '{}'::jsonb) || jsonb_build_object('reason', $2::text, 'stopped_at', $3::timestamptz)
		WHERE quote_id = $1 AND status IN ('pending', 'scheduled')`

	result, err := r.pool.Exec(ctx, query, quoteID, reason, now)
	if err != nil {
		return 0, fmt.Errorf("failed to stop follow-ups: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListFollowUps returns all follow-ups of a quote, newest first
func (r *Repository) ListFollowUps(ctx context.Context, quoteID uuid.UUID) ([]FollowUp, error) {
	query := `
		SELECT id, quote_id, user_id, status, scheduled_at, meta, created_at, updated_at
		FROM quote_follow_ups WHERE quote_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	defer rows.Close()

	items := make([]FollowUp, 0)
	for rows.Next() {
		var f FollowUp
		if err := rows.Scan(&f.ID, &f.QuoteID, &f.UserID, &f.Status, &f.ScheduledAt, &f.Meta, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate follow-ups: %w", err)
	}
	return items, nil
}
