package service

import (
	"context"
	"fmt"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
)

const invoiceDueDays = 30

// ConvertToInvoice creates exactly one unpaid invoice from a quote. Every
// failure up to and including the invoice insert aborts the conversion;
// everything after it is best-effort bookkeeping.
func (s *Service) ConvertToInvoice(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*transport.InvoiceResponse, error) {
	if s.invoices == nil {
		return nil, apperr.Internal("invoice conversion is not configured")
	}

	agg, err := s.loadAggregate(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	switch agg.Status {
	case transport.QuoteStatusDraft, transport.QuoteStatusExpired:
		return nil, apperr.Validationf("a quote with status %s cannot be converted to an invoice", agg.Status)
	case transport.QuoteStatusConvertedToInvoice:
		return nil, apperr.Conflict("quote has already been converted to an invoice")
	}

	clientID := agg.ClientID
	if agg.Client != nil && agg.Client.ID != uuid.Nil {
		clientID = agg.Client.ID
	}
	if clientID == uuid.Nil {
		return nil, apperr.Validation("client_id is required")
	}

	invoiceNumber, err := s.invoices.NextInvoiceNumber(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}

	net := agg.TotalAmount.Sub(agg.DiscountAmount)
	if agg.NetAmount != nil {
		net = *agg.NetAmount
	}
	final := agg.FinalAmount
	if final.IsZero() {
		final = net.Add(agg.TaxAmount)
	}

	issueDate := s.today()
	invoice, err := s.invoices.CreateInvoice(ctx, InvoiceParams{
		UserID:         userID,
		ClientID:       clientID,
		QuoteID:        agg.ID,
		QuoteNumber:    agg.QuoteNumber,
		InvoiceNumber:  invoiceNumber,
		IssueDate:      issueDate,
		DueDate:        issueDate.AddDate(0, 0, invoiceDueDays),
		TotalAmount:    agg.TotalAmount,
		TaxAmount:      agg.TaxAmount,
		DiscountAmount: agg.DiscountAmount,
		NetAmount:      net,
		FinalAmount:    final,
		Notes:          fmt.Sprintf("Automatically generated from quote %s", agg.QuoteNumber),
	})
	if err != nil {
		return nil, err
	}

	quote := &repository.Quote{ID: agg.ID, UserID: userID}
	s.runEffects(ctx, agg.ID, []effect{
		{
			name: "quote_status_converted",
			run: func(ctx context.Context) error {
				return s.repo.UpdateStatus(ctx, agg.ID, userID, string(transport.QuoteStatusConvertedToInvoice), s.now())
			},
		},
		{
			name: "followup_stop",
			run: func(ctx context.Context) error {
				_, err := s.repo.StopActiveFollowUps(ctx, agg.ID, StopReasonConverted, s.now())
				return err
			},
		},
		{
			name: "invoice_followup",
			run: func(ctx context.Context) error {
				if s.followUps == nil {
					return nil
				}
				return s.followUps.CreateForInvoice(ctx, invoice.ID)
			},
		},
	})
	s.logEvent(ctx, quote, EventQuoteConverted, map[string]any{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
	})

	return invoice, nil
}
