package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"artisan_backend/platform/apperr"
	"artisan_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AppendEvent writes an audit log entry for a quote
func (r *Repository) AppendEvent(ctx context.Context, event QuoteEvent) error {
	meta := event.Meta
	if meta == nil {
		meta = []byte("{}")
	}

	query := `
		INSERT INTO quote_events (id, quote_id, user_id, type, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query, event.ID, event.QuoteID, event.UserID, event.Type, meta, event.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound(quoteNotFoundMsg)
		}
		return fmt.Errorf("failed to insert quote event: %w", err)
	}
	return nil
}

// ListEvents returns the audit log of a quote in chronological order
func (r *Repository) ListEvents(ctx context.Context, quoteID uuid.UUID) ([]QuoteEvent, error) {
	query := `
		SELECT id, quote_id, user_id, type, meta, created_at
		FROM quote_events WHERE quote_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote events: %w", err)
	}
	defer rows.Close()

	items := make([]QuoteEvent, 0)
	for rows.Next() {
		var e QuoteEvent
		if err := rows.Scan(&e.ID, &e.QuoteID, &e.UserID, &e.Type, &e.Meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote event: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote events: %w", err)
	}
	return items, nil
}

// CreateShare records the share link of a quote. An existing record for the
// same token is left as is.
func (r *Repository) CreateShare(ctx context.Context, share QuoteShare) error {
	query := `
		INSERT INTO quote_shares (id, quote_id, user_id, share_token, access_count, is_active, created_at)
		VALUES ($1, $2, $3, $4, 0, true, $5)
		ON CONFLICT (share_token) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, share.ID, share.QuoteID, share.UserID, share.ShareToken, share.CreatedAt); err != nil {
		return fmt.Errorf("failed to create quote share: %w", err)
	}
	return nil
}

// GetShareByToken returns the share record for a token
func (r *Repository) GetShareByToken(ctx context.Context, token string) (*QuoteShare, error) {
	var s QuoteShare
	query := `
		SELECT id, quote_id, user_id, share_token, access_count, is_active, last_accessed_at, created_at
		FROM quote_shares WHERE share_token = $1`

	err := r.pool.QueryRow(ctx, query, token).Scan(
		&s.ID, &s.QuoteID, &s.UserID, &s.ShareToken, &s.AccessCount, &s.IsActive, &s.LastAccessedAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("share not found")
		}
		return nil, fmt.Errorf("failed to get quote share: %w", err)
	}
	return &s, nil
}

// RecordShareAccess bumps the access counter of a share and writes an access
// log entry in one transaction.
func (r *Repository) RecordShareAccess(ctx context.Context, entry AccessLog) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE quote_shares SET access_count = access_count + 1, last_accessed_at = $2
			WHERE share_token = $1`, entry.ShareToken, entry.AccessedAt); err != nil {
			return fmt.Errorf("failed to update share access: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO quote_access_logs (id, quote_id, share_token, ip_address, user_agent, accessed_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			entry.ID, entry.QuoteID, entry.ShareToken, entry.IPAddress, entry.UserAgent, entry.AccessedAt,
		); err != nil {
			return fmt.Errorf("failed to insert access log: %w", err)
		}
		return nil
	})
}

// PurgeAccessLogsBefore deletes access log entries older than the cutoff
func (r *Repository) PurgeAccessLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM quote_access_logs WHERE accessed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge access logs: %w", err)
	}
	return result.RowsAffected(), nil
}
