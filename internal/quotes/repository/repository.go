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
	"github.com/jackc/pgx/v5/pgxpool"
)

const quoteNotFoundMsg = "quote not found"

const quoteColumns = `
	id, user_id, client_id, lead_id, profile_id, quote_number, title, description,
	status, share_token, is_public,
	total_amount, tax_amount, discount_amount, final_amount, net_amount,
	valid_until, notes, sent_at, created_at, updated_at`

// Repository provides database operations for quotes
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner, q *Quote) error {
	return row.Scan(
		&q.ID, &q.UserID, &q.ClientID, &q.LeadID, &q.ProfileID, &q.QuoteNumber, &q.Title, &q.Description,
		&q.Status, &q.ShareToken, &q.IsPublic,
		&q.TotalAmount, &q.TaxAmount, &q.DiscountAmount, &q.FinalAmount, &q.NetAmount,
		&q.ValidUntil, &q.Notes, &q.SentAt, &q.CreatedAt, &q.UpdatedAt,
	)
}

// NextQuoteNumber atomically generates the next quote number for a user
func (r *Repository) NextQuoteNumber(ctx context.Context, userID uuid.UUID, year int) (string, error) {
	var nextNum int
	query := `
		INSERT INTO quote_counters (user_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE SET last_number = quote_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, userID).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}

	return fmt.Sprintf("DEV-%d-%04d", year, nextNum), nil
}

// CreateAggregate inserts a quote and its children in a single transaction
func (r *Repository) CreateAggregate(ctx context.Context, quote *Quote, children Children) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO quotes (` + quoteColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

		if _, err := tx.Exec(ctx, query,
			quote.ID, quote.UserID, quote.ClientID, quote.LeadID, quote.ProfileID, quote.QuoteNumber, quote.Title, quote.Description,
			quote.Status, quote.ShareToken, quote.IsPublic,
			quote.TotalAmount, quote.TaxAmount, quote.DiscountAmount, quote.FinalAmount, quote.NetAmount,
			quote.ValidUntil, quote.Notes, quote.SentAt, quote.CreatedAt, quote.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("quote number already exists")
			}
			return fmt.Errorf("failed to insert quote: %w", err)
		}

		return r.writeChildren(ctx, tx, quote.ID, children, quote.UpdatedAt)
	})
}

// UpdateAggregate updates the quote header and replaces any provided child
// collections in a single transaction. The status column is not written here.
func (r *Repository) UpdateAggregate(ctx context.Context, quote *Quote, children Children) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE quotes SET
				client_id = $3, profile_id = $4, quote_number = $5, title = $6, description = $7,
				total_amount = $8, tax_amount = $9, discount_amount = $10, final_amount = $11, net_amount = $12,
				valid_until = $13, notes = $14, updated_at = $15
			WHERE id = $1 AND user_id = $2`

		result, err := tx.Exec(ctx, query,
			quote.ID, quote.UserID, quote.ClientID, quote.ProfileID, quote.QuoteNumber, quote.Title, quote.Description,
			quote.TotalAmount, quote.TaxAmount, quote.DiscountAmount, quote.FinalAmount, quote.NetAmount,
			quote.ValidUntil, quote.Notes, quote.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("quote number already exists")
			}
			return fmt.Errorf("failed to update quote: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperr.NotFound(quoteNotFoundMsg)
		}

		return r.writeChildren(ctx, tx, quote.ID, children, quote.UpdatedAt)
	})
}

func (r *Repository) writeChildren(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, children Children, now time.Time) error {
	if children.Tasks != nil {
		// Materials cascade with their tasks.
		if _, err := tx.Exec(ctx, `DELETE FROM quote_tasks WHERE quote_id = $1`, quoteID); err != nil {
			return fmt.Errorf("failed to delete old quote tasks: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM quote_materials WHERE quote_id = $1`, quoteID); err != nil {
			return fmt.Errorf("failed to delete old quote materials: %w", err)
		}
		if err := insertTasks(ctx, tx, quoteID, *children.Tasks); err != nil {
			return err
		}
	}

	if children.Files != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM quote_files WHERE quote_id = $1`, quoteID); err != nil {
			return fmt.Errorf("failed to delete old quote files: %w", err)
		}
		if err := insertFiles(ctx, tx, quoteID, *children.Files); err != nil {
			return err
		}
	}

	if children.FinancialConfig != nil {
		fc := children.FinancialConfig
		query := `
			INSERT INTO quote_financial_configs (quote_id, vat, advance, discount, payment_terms, marketing_banner, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (quote_id) DO UPDATE SET
				vat = EXCLUDED.vat, advance = EXCLUDED.advance, discount = EXCLUDED.discount,
				payment_terms = EXCLUDED.payment_terms, marketing_banner = EXCLUDED.marketing_banner,
				updated_at = EXCLUDED.updated_at`
		if _, err := tx.Exec(ctx, query,
			quoteID, fc.VAT, fc.Advance, fc.Discount, fc.PaymentTerms, fc.MarketingBanner, now,
		); err != nil {
			return fmt.Errorf("failed to upsert financial config: %w", err)
		}
	}

	return nil
}

func insertTasks(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, tasks []Task) error {
	taskQuery := `
		INSERT INTO quote_tasks (
			id, quote_id, name, description, quantity, unit, unit_price,
			duration, duration_unit, category, custom_category, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	materialQuery := `
		INSERT INTO quote_materials (id, quote_id, task_id, name, quantity, unit, unit_price, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, t := range tasks {
		if _, err := tx.Exec(ctx, taskQuery,
			t.ID, quoteID, t.Name, t.Description, t.Quantity, t.Unit, t.UnitPrice,
			t.Duration, t.DurationUnit, t.Category, t.CustomCategory, t.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to insert quote task: %w", err)
		}
		for _, m := range t.Materials {
			taskID := t.ID
			if _, err := tx.Exec(ctx, materialQuery,
				m.ID, quoteID, &taskID, m.Name, m.Quantity, m.Unit, m.UnitPrice, m.SortOrder,
			); err != nil {
				return fmt.Errorf("failed to insert quote material: %w", err)
			}
		}
	}
	return nil
}

func insertFiles(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, files []File) error {
	query := `
		INSERT INTO quote_files (id, quote_id, category, file_name, file_key, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, f := range files {
		if _, err := tx.Exec(ctx, query,
			f.ID, quoteID, f.Category, f.FileName, f.FileKey, f.ContentType, f.SizeBytes, f.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert quote file: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a quote by its ID scoped to its owner
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Quote, error) {
	var q Quote
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1 AND user_id = $2`

	if err := scanQuote(r.pool.QueryRow(ctx, query, id, userID), &q); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}

// GetByShareToken retrieves a quote by its public share token
func (r *Repository) GetByShareToken(ctx context.Context, token string) (*Quote, error) {
	var q Quote
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE share_token = $1`

	if err := scanQuote(r.pool.QueryRow(ctx, query, token), &q); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote by token: %w", err)
	}
	return &q, nil
}

// ListTasks retrieves all tasks of a quote with their materials
func (r *Repository) ListTasks(ctx context.Context, quoteID uuid.UUID) ([]Task, error) {
	query := `
		SELECT id, quote_id, name, description, quantity, unit, unit_price,
			duration, duration_unit, category, custom_category, sort_order
		FROM quote_tasks WHERE quote_id = $1
		ORDER BY sort_order ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.QuoteID, &t.Name, &t.Description, &t.Quantity, &t.Unit, &t.UnitPrice,
			&t.Duration, &t.DurationUnit, &t.Category, &t.CustomCategory, &t.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote task: %w", err)
		}
		t.Materials = make([]Material, 0)
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote tasks: %w", err)
	}

	materials, err := r.listMaterials(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	for _, m := range materials {
		if m.TaskID == nil {
			continue
		}
		if i, ok := index[*m.TaskID]; ok {
			tasks[i].Materials = append(tasks[i].Materials, m)
		}
	}

	return tasks, nil
}

func (r *Repository) listMaterials(ctx context.Context, quoteID uuid.UUID) ([]Material, error) {
	query := `
		SELECT id, quote_id, task_id, name, quantity, unit, unit_price, sort_order
		FROM quote_materials WHERE quote_id = $1
		ORDER BY sort_order ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote materials: %w", err)
	}
	defer rows.Close()

	var materials []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.QuoteID, &m.TaskID, &m.Name, &m.Quantity, &m.Unit, &m.UnitPrice, &m.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan quote material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote materials: %w", err)
	}
	return materials, nil
}

// ListFiles retrieves the attachments of a quote
func (r *Repository) ListFiles(ctx context.Context, quoteID uuid.UUID) ([]File, error) {
	query := `
		SELECT id, quote_id, category, file_name, file_key, content_type, size_bytes, created_at
		FROM quote_files WHERE quote_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote files: %w", err)
	}
	defer rows.Close()

	files := make([]File, 0)
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.QuoteID, &f.Category, &f.FileName, &f.FileKey, &f.ContentType, &f.SizeBytes, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote files: %w", err)
	}
	return files, nil
}

// GetFile retrieves a single attachment of a quote
func (r *Repository) GetFile(ctx context.Context, quoteID, fileID uuid.UUID) (*File, error) {
	var f File
	query := `
		SELECT id, quote_id, category, file_name, file_key, content_type, size_bytes, created_at
		FROM quote_files WHERE id = $1 AND quote_id = $2`

	err := r.pool.QueryRow(ctx, query, fileID, quoteID).Scan(
		&f.ID, &f.QuoteID, &f.Category, &f.FileName, &f.FileKey, &f.ContentType, &f.SizeBytes, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("file not found")
		}
		return nil, fmt.Errorf("failed to get quote file: %w", err)
	}
	return &f, nil
}

// GetFinancialConfig retrieves the financial settings of a quote. It returns
// nil when none were saved.
func (r *Repository) GetFinancialConfig(ctx context.Context, quoteID uuid.UUID) (*FinancialConfig, error) {
	var fc FinancialConfig
	query := `
		SELECT quote_id, vat, advance, discount, payment_terms, marketing_banner, updated_at
		FROM quote_financial_configs WHERE quote_id = $1`

	err := r.pool.QueryRow(ctx, query, quoteID).Scan(
		&fc.QuoteID, &fc.VAT, &fc.Advance, &fc.Discount, &fc.PaymentTerms, &fc.MarketingBanner, &fc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get financial config: %w", err)
	}
	return &fc, nil
}

// UpdateStatus updates the status of a quote
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status string, now time.Time) error {
	query := `UPDATE quotes SET status = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID, status, now)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// MarkSent moves a quote to sent, publishes it and stamps the first send time
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, userID uuid.UUID, now time.Time) error {
	query := `
		UPDATE quotes SET status = 'sent', is_public = true, sent_at = COALESCE(sent_at, $3), updated_at = $3
		WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID, now)
	if err != nil {
		return fmt.Errorf("failed to mark quote sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// ExpireQuote sets the status to expired only if the quote is still in one of
// the given statuses. It reports whether a row was changed.
func (r *Repository) ExpireQuote(ctx context.Context, id uuid.UUID, fromStatuses []string, now time.Time) (bool, error) {
	query := `UPDATE quotes SET status = 'expired', updated_at = $3 WHERE id = $1 AND status = ANY($2)`
	result, err := r.pool.Exec(ctx, query, id, fromStatuses, now)
	if err != nil {
		return false, fmt.Errorf("failed to expire quote: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListExpirationCandidates returns quotes with a deadline whose status is one
// of the given statuses, optionally scoped to a single user.
func (r *Repository) ListExpirationCandidates(ctx context.Context, userID *uuid.UUID, statuses []string) ([]Quote, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE status = ANY($1)
			AND valid_until IS NOT NULL AND valid_until <> ''
			AND ($2::uuid IS NULL OR user_id = $2)
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, statuses, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiration candidates: %w", err)
	}
	defer rows.Close()

	var items []Quote
	for rows.Next() {
		var q Quote
		if err := scanQuote(rows, &q); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}
	return items, nil
}

// Delete removes a quote (cascade deletes children)
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM quotes WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// List retrieves quotes with filtering and pagination
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var searchParam any
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var statusParam any
	if params.Status != nil {
		statusParam = *params.Status
	}

	var clientParam any
	if params.ClientID != nil {
		clientParam = *params.ClientID
	}

	baseQuery := `
		FROM quotes
		WHERE user_id = $1
			AND ($2::uuid IS NULL OR client_id = $2)
			AND ($3::text IS NULL OR status = $3)
			AND ($4::text IS NULL OR quote_number ILIKE $4 OR title ILIKE $4)
	`
	args := []any{params.UserID, clientParam, statusParam, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `SELECT ` + quoteColumns + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	items := make([]Quote, 0)
	for rows.Next() {
		var q Quote
		if err := scanQuote(rows, &q); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}
