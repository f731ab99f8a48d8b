package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	invoiceNotFoundMsg = "invoice not found"

	uniqueViolation       = "23505"
	quoteUniqueConstraint = "idx_invoices_quote_unique"
)

// Invoice is the database model for an invoice
type Invoice struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	ClientID       uuid.UUID       `db:"client_id"`
	QuoteID        *uuid.UUID      `db:"quote_id"`
	QuoteNumber    *string         `db:"quote_number"`
	InvoiceNumber  string          `db:"invoice_number"`
	Status         string          `db:"status"`
	IssueDate      time.Time       `db:"issue_date"`
	DueDate        time.Time       `db:"due_date"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	NetAmount      decimal.Decimal `db:"net_amount"`
	FinalAmount    decimal.Decimal `db:"final_amount"`
	Notes          *string         `db:"notes"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// ListParams contains parameters for listing invoices
type ListParams struct {
	UserID   uuid.UUID
	Status   *string
	Page     int
	PageSize int
}

// ListResult contains the paginated result of listing invoices
type ListResult struct {
	Items      []Invoice
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const invoiceColumns = `
	id, user_id, client_id, quote_id, quote_number, invoice_number, status,
	issue_date, due_date, total_amount, tax_amount, discount_amount, net_amount, final_amount,
	notes, created_at, updated_at`

// Repository provides database operations for invoices
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new invoices repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanInvoice(row pgx.Row, inv *Invoice) error {
	return row.Scan(
		&inv.ID, &inv.UserID, &inv.ClientID, &inv.QuoteID, &inv.QuoteNumber, &inv.InvoiceNumber, &inv.Status,
		&inv.IssueDate, &inv.DueDate, &inv.TotalAmount, &inv.TaxAmount, &inv.DiscountAmount, &inv.NetAmount, &inv.FinalAmount,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
}

// NextInvoiceNumber atomically generates the next invoice number for a user
func (r *Repository) NextInvoiceNumber(ctx context.Context, userID uuid.UUID, year int) (string, error) {
	var nextNum int
	query := `
		INSERT INTO invoice_counters (user_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE SET last_number = invoice_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, userID).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate invoice number: %w", err)
	}

	return fmt.Sprintf("FAC-%d-%04d", year, nextNum), nil
}

// Create inserts a new invoice
func (r *Repository) Create(ctx context.Context, inv *Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.UserID, inv.ClientID, inv.QuoteID, inv.QuoteNumber, inv.InvoiceNumber, inv.Status,
		inv.IssueDate, inv.DueDate, inv.TotalAmount, inv.TaxAmount, inv.DiscountAmount, inv.NetAmount, inv.FinalAmount,
		inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return mapInsertError(err)
	}
	return nil
}

// mapInsertError turns unique violations into conflicts. Two concurrent
// conversions of one quote collide on the quote index.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == quoteUniqueConstraint {
			return apperr.Conflict("quote has already been converted to an invoice")
		}
		return apperr.Conflict("invoice number already exists")
	}
	return fmt.Errorf("failed to insert invoice: %w", err)
}

// GetByID retrieves an invoice owned by the user
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND user_id = $2`

	var inv Invoice
	if err := scanInvoice(r.pool.QueryRow(ctx, query, id, userID), &inv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(invoiceNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// List retrieves a page of invoices, newest first
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM invoices WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)`
	if err := r.pool.QueryRow(ctx, countQuery, params.UserID, params.Status).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, params.UserID, params.Status, params.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	items := make([]Invoice, 0)
	for rows.Next() {
		var inv Invoice
		if err := scanInvoice(rows, &inv); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		items = append(items, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (total + params.PageSize - 1) / params.PageSize
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}
