package adapters

import (
	"context"
	"fmt"

	invoicesvc "artisan_backend/internal/invoices/service"
	invoicetransport "artisan_backend/internal/invoices/transport"
	quotesvc "artisan_backend/internal/quotes/service"
	quotetransport "artisan_backend/internal/quotes/transport"

	"github.com/google/uuid"
)

// QuotesInvoiceWriter adapts the invoices service for the quotes domain.
// It implements quotesvc.InvoiceWriter.
type QuotesInvoiceWriter struct {
	svc *invoicesvc.Service
}

// NewQuotesInvoiceWriter creates a new invoice writer adapter.
func NewQuotesInvoiceWriter(svc *invoicesvc.Service) *QuotesInvoiceWriter {
	return &QuotesInvoiceWriter{svc: svc}
}

// NextInvoiceNumber reserves the next invoice number for the user.
func (a *QuotesInvoiceWriter) NextInvoiceNumber(ctx context.Context, userID uuid.UUID) (string, error) {
	return a.svc.NextInvoiceNumber(ctx, userID)
}

// CreateInvoice translates the quotes-domain InvoiceParams and delegates to
// the invoices service.
func (a *QuotesInvoiceWriter) CreateInvoice(ctx context.Context, p quotesvc.InvoiceParams) (*quotetransport.InvoiceResponse, error) {
	inv, err := a.svc.CreateFromQuote(ctx, invoicetransport.CreateFromQuoteParams{
		UserID:         p.UserID,
		ClientID:       p.ClientID,
		QuoteID:        p.QuoteID,
		QuoteNumber:    p.QuoteNumber,
		InvoiceNumber:  p.InvoiceNumber,
		IssueDate:      p.IssueDate,
		DueDate:        p.DueDate,
		TotalAmount:    p.TotalAmount,
		TaxAmount:      p.TaxAmount,
		DiscountAmount: p.DiscountAmount,
		NetAmount:      p.NetAmount,
		FinalAmount:    p.FinalAmount,
		Notes:          p.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("quotes invoice adapter: %w", err)
	}

	return toQuoteInvoice(inv), nil
}

func toQuoteInvoice(inv *invoicetransport.InvoiceResponse) *quotetransport.InvoiceResponse {
	return &quotetransport.InvoiceResponse{
		ID:             inv.ID,
		UserID:         inv.UserID,
		ClientID:       inv.ClientID,
		QuoteID:        inv.QuoteID,
		QuoteNumber:    inv.QuoteNumber,
		InvoiceNumber:  inv.InvoiceNumber,
		Status:         string(inv.Status),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		TotalAmount:    inv.TotalAmount,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		NetAmount:      inv.NetAmount,
		FinalAmount:    inv.FinalAmount,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt,
	}
}

// Compile-time check that QuotesInvoiceWriter implements quotesvc.InvoiceWriter.
var _ quotesvc.InvoiceWriter = (*QuotesInvoiceWriter)(nil)
