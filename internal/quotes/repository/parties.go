package repository

import (
	"context"
	"errors"
	"fmt"

	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetClient returns a client owned by the user
func (r *Repository) GetClient(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Client, error) {
	var c Client
	query := `SELECT id, user_id, name, email, phone, address FROM clients WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("client not found")
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

// GetCompanyProfile returns the given profile, or the user's default profile
// when profileID is nil. It returns nil when the user has no profile at all.
func (r *Repository) GetCompanyProfile(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) (*CompanyProfile, error) {
	var p CompanyProfile
	query := `
		SELECT id, user_id, company_name, email, phone, address, is_default
		FROM company_profiles
		WHERE user_id = $1 AND ($2::uuid IS NULL OR id = $2)
		ORDER BY is_default DESC, created_at ASC
		LIMIT 1`

	err := r.pool.QueryRow(ctx, query, userID, profileID).Scan(
		&p.ID, &p.UserID, &p.CompanyName, &p.Email, &p.Phone, &p.Address, &p.IsDefault,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	return &p, nil
}
