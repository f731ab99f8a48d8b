package service

import (
	"context"
	"time"

	"artisan_backend/internal/invoices/repository"
	"artisan_backend/internal/invoices/transport"
	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Repository is the persistence port of the invoices service
type Repository interface {
	NextInvoiceNumber(ctx context.Context, userID uuid.UUID, year int) (string, error)
	Create(ctx context.Context, inv *repository.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*repository.Invoice, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
}

// Service provides business logic for invoices
type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// New creates a new invoices service
func New(repo Repository) *Service {
	return &Service{repo: repo, loc: time.Local, now: time.Now}
}

// SetLocation sets the timezone used for invoice numbering years.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// NextInvoiceNumber reserves the next invoice number for the user
func (s *Service) NextInvoiceNumber(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.repo.NextInvoiceNumber(ctx, userID, s.now().In(s.loc).Year())
}

// CreateFromQuote inserts an unpaid invoice carrying the figures of a quote
func (s *Service) CreateFromQuote(ctx context.Context, p transport.CreateFromQuoteParams) (*transport.InvoiceResponse, error) {
	if p.UserID == uuid.Nil {
		return nil, apperr.Validation("user_id is required")
	}
	if p.ClientID == uuid.Nil {
		return nil, apperr.Validation("client_id is required")
	}
	if p.InvoiceNumber == "" {
		return nil, apperr.Validation("invoice_number is required")
	}

	now := s.now()
	quoteID := p.QuoteID
	quoteNumber := p.QuoteNumber
	inv := repository.Invoice{
		ID:             uuid.New(),
		UserID:         p.UserID,
		ClientID:       p.ClientID,
		QuoteID:        &quoteID,
		QuoteNumber:    &quoteNumber,
		InvoiceNumber:  p.InvoiceNumber,
		Status:         string(transport.InvoiceStatusUnpaid),
		IssueDate:      p.IssueDate,
		DueDate:        p.DueDate,
		TotalAmount:    p.TotalAmount,
		TaxAmount:      p.TaxAmount,
		DiscountAmount: p.DiscountAmount,
		NetAmount:      p.NetAmount,
		FinalAmount:    p.FinalAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.Notes != "" {
		notes := p.Notes
		inv.Notes = &notes
	}

	if err := s.repo.Create(ctx, &inv); err != nil {
		return nil, err
	}
	resp := toResponse(&inv)
	return &resp, nil
}

// GetByID returns a single invoice
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*transport.InvoiceResponse, error) {
	inv, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(inv)
	return &resp, nil
}

// List returns a page of invoices
func (s *Service) List(ctx context.Context, userID uuid.UUID, req transport.ListInvoicesRequest) (*transport.InvoiceListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	params := repository.ListParams{UserID: userID, Page: page, PageSize: pageSize}
	if req.Status != "" {
		params.Status = &req.Status
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.InvoiceResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toResponse(&result.Items[i]))
	}
	return &transport.InvoiceListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

func toResponse(inv *repository.Invoice) transport.InvoiceResponse {
	return transport.InvoiceResponse{
		ID:             inv.ID,
		UserID:         inv.UserID,
		ClientID:       inv.ClientID,
		QuoteID:        inv.QuoteID,
		QuoteNumber:    inv.QuoteNumber,
		InvoiceNumber:  inv.InvoiceNumber,
		Status:         transport.InvoiceStatus(inv.Status),
		IssueDate:      inv.IssueDate.Format(dateLayout),
		DueDate:        inv.DueDate.Format(dateLayout),
		TotalAmount:    inv.TotalAmount,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		NetAmount:      inv.NetAmount,
		FinalAmount:    inv.FinalAmount,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt,
	}
}
