package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const draftNotFoundMsg = "draft not found"

const draftColumns = `id, user_id, profile_id, quote_number, payload, last_saved, created_at`

func scanDraft(row rowScanner, d *Draft) error {
	return row.Scan(&d.ID, &d.UserID, &d.ProfileID, &d.QuoteNumber, &d.Payload, &d.LastSaved, &d.CreatedAt)
}

func (r *Repository) queryDraft(ctx context.Context, query string, args ...any) (*Draft, error) {
	var d Draft
	if err := scanDraft(r.pool.QueryRow(ctx, query, args...), &d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(draftNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &d, nil
}

func (r *Repository) queryDrafts(ctx context.Context, query string, args ...any) ([]Draft, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	items := make([]Draft, 0)
	for rows.Next() {
		var d Draft
		if err := scanDraft(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drafts: %w", err)
	}
	return items, nil
}

// UpdateDraftByID overwrites the payload of a draft identified by id
func (r *Repository) UpdateDraftByID(ctx context.Context, id uuid.UUID, userID uuid.UUID, payload []byte, now time.Time) (*Draft, error) {
	query := `
		UPDATE quote_drafts SET payload = $3, last_saved = $4
		WHERE id = $1 AND user_id = $2
		RETURNING ` + draftColumns
	return r.queryDraft(ctx, query, id, userID, payload, now)
}

// FindDraftByKey returns the draft matching (user, profile, quote number).
// A nil profile matches drafts saved without a profile.
func (r *Repository) FindDraftByKey(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) (*Draft, error) {
	query := `
		SELECT ` + draftColumns + `
		FROM quote_drafts
		WHERE user_id = $1 AND profile_id IS NOT DISTINCT FROM $2 AND quote_number = $3`
	return r.queryDraft(ctx, query, userID, profileID, quoteNumber)
}

// UpdateDraftPayload overwrites the payload of a draft found by natural key
func (r *Repository) UpdateDraftPayload(ctx context.Context, id uuid.UUID, payload []byte, now time.Time) (*Draft, error) {
	query := `
		UPDATE quote_drafts SET payload = $2, last_saved = $3
		WHERE id = $1
		RETURNING ` + draftColumns
	return r.queryDraft(ctx, query, id, payload, now)
}

// InsertDraft creates a new draft
func (r *Repository) InsertDraft(ctx context.Context, d Draft) (*Draft, error) {
	query := `
		INSERT INTO quote_drafts (id, user_id, profile_id, quote_number, payload, last_saved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + draftColumns

	out, err := r.queryDraft(ctx, query, d.ID, d.UserID, d.ProfileID, d.QuoteNumber, d.Payload, d.LastSaved, d.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return nil, apperr.Conflict("draft already exists for this quote number")
	}
	return out, err
}

// GetDraft returns a draft by id
func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM quote_drafts WHERE id = $1 AND user_id = $2`
	return r.queryDraft(ctx, query, id, userID)
}

// GetDraftByQuoteNumber returns the draft saved under a quote number
func (r *Repository) GetDraftByQuoteNumber(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) (*Draft, error) {
	return r.FindDraftByKey(ctx, userID, profileID, quoteNumber)
}

// DeleteDraft removes a draft by id
func (r *Repository) DeleteDraft(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM quote_drafts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(draftNotFoundMsg)
	}
	return nil
}

// DeleteDraftByQuoteNumber removes the draft saved under a quote number
func (r *Repository) DeleteDraftByQuoteNumber(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) error {
	query := `
		DELETE FROM quote_drafts
		WHERE user_id = $1 AND profile_id IS NOT DISTINCT FROM $2 AND quote_number = $3`
	result, err := r.pool.Exec(ctx, query, userID, profileID, quoteNumber)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(draftNotFoundMsg)
	}
	return nil
}

// ListDrafts returns the user's drafts, optionally filtered by profile
func (r *Repository) ListDrafts(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) ([]Draft, error) {
	query := `
		SELECT ` + draftColumns + `
		FROM quote_drafts
		WHERE user_id = $1 AND ($2::uuid IS NULL OR profile_id = $2)
		ORDER BY last_saved DESC`
	return r.queryDrafts(ctx, query, userID, profileID)
}

// ListRecentDrafts returns the most recently saved drafts
func (r *Repository) ListRecentDrafts(ctx context.Context, userID uuid.UUID, limit int) ([]Draft, error) {
	query := `
		SELECT ` + draftColumns + `
		FROM quote_drafts
		WHERE user_id = $1
		ORDER BY last_saved DESC
		LIMIT $2`
	return r.queryDrafts(ctx, query, userID, limit)
}

// DeleteDraftsSavedBefore removes drafts that have not been saved since cutoff
func (r *Repository) DeleteDraftsSavedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM quote_drafts WHERE last_saved < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale drafts: %w", err)
	}
	return result.RowsAffected(), nil
}
