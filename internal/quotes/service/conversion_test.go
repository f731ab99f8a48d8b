package service

import (
	"context"
	"testing"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) seedPricedQuote(status transport.QuoteStatus, number string) repository.Quote {
	q := f.seedQuote(status, number, strPtr("2024-12-31"))
	f.repo.mu.Lock()
	stored := f.repo.quotes[q.ID]
	stored.TotalAmount = decimal.RequireFromString("1000")
	stored.DiscountAmount = decimal.RequireFromString("100")
	stored.TaxAmount = decimal.RequireFromString("180")
	f.repo.mu.Unlock()
	return q
}

func TestConvertAcceptedQuote(t *testing.T) {
	f := newFixture(t)
	q := f.seedPricedQuote(transport.QuoteStatusAccepted, "DEV-2024-0007")
	f.repo.addFollowUp(q.ID, string(transport.FollowUpStatusPending), f.clock.Now())

	invoice, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.NoError(t, err)

	require.Len(t, f.invoices.created, 1)
	params := f.invoices.created[0]
	assert.Equal(t, f.clientID, params.ClientID)
	assert.Equal(t, "FAC-2024-0001", params.InvoiceNumber)
	assert.Equal(t, "2024-06-01", params.IssueDate.Format("2006-01-02"))
	assert.Equal(t, "2024-07-01", params.DueDate.Format("2006-01-02"))
	assert.True(t, decimal.RequireFromString("900").Equal(params.NetAmount), "net falls back to total minus discount")
	assert.True(t, decimal.RequireFromString("1080").Equal(params.FinalAmount), "final falls back to net plus tax")
	assert.Equal(t, "Automatically generated from quote DEV-2024-0007", params.Notes)

	assert.Equal(t, "unpaid", invoice.Status)
	assert.Equal(t, "converted_to_invoice", f.repo.quote(q.ID).Status)
	assert.Equal(t, 0, f.repo.activeFollowUps(q.ID))
	assert.Len(t, f.scheduler.invoices, 1)
	assert.Len(t, f.repo.eventsOfType(q.ID, EventQuoteConverted), 1)
}

func TestConvertKeepsExplicitAmounts(t *testing.T) {
	f := newFixture(t)
	q := f.seedPricedQuote(transport.QuoteStatusSent, "DEV-2024-0008")
	f.repo.mu.Lock()
	f.repo.quotes[q.ID].NetAmount = decimal.NewNullDecimal(decimal.RequireFromString("850"))
	f.repo.quotes[q.ID].FinalAmount = decimal.RequireFromString("1020")
	f.repo.mu.Unlock()

	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.NoError(t, err)

	params := f.invoices.created[0]
	assert.True(t, decimal.RequireFromString("850").Equal(params.NetAmount))
	assert.True(t, decimal.RequireFromString("1020").Equal(params.FinalAmount))
}

func TestConvertRejectsDraftAndExpired(t *testing.T) {
	for _, status := range []transport.QuoteStatus{transport.QuoteStatusDraft, transport.QuoteStatusExpired} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			q := f.seedPricedQuote(status, "DEV-2024-0009")

			_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))

			assert.Empty(t, f.invoices.created)
			assert.Zero(t, f.invoices.numbers, "no invoice number may be consumed")
			assert.Equal(t, string(status), f.repo.quote(q.ID).Status)
		})
	}
}

func TestConvertTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	q := f.seedPricedQuote(transport.QuoteStatusAccepted, "DEV-2024-0010")

	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.NoError(t, err)

	_, err = f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, f.invoices.created, 1)
}

func TestConvertFailsWhenInvoiceInsertFails(t *testing.T) {
	f := newFixture(t)
	f.invoices.failWrite = errBoom
	q := f.seedPricedQuote(transport.QuoteStatusAccepted, "DEV-2024-0011")

	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, "accepted", f.repo.quote(q.ID).Status)
	assert.Empty(t, f.repo.eventsOfType(q.ID, EventQuoteConverted))
}

func TestConvertSucceedsWhenStatusWriteFails(t *testing.T) {
	f := newFixture(t)
	q := f.seedPricedQuote(transport.QuoteStatusAccepted, "DEV-2024-0012")
	f.repo.failUpdateStatus = errBoom

	invoice, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.NoError(t, err)
	require.NotNil(t, invoice)
	assert.Len(t, f.invoices.created, 1)
	assert.Equal(t, "accepted", f.repo.quote(q.ID).Status)
}

func TestConvertWithoutInvoiceWriter(t *testing.T) {
	f := newFixture(t)
	f.svc.SetInvoiceWriter(nil)
	q := f.seedPricedQuote(transport.QuoteStatusAccepted, "DEV-2024-0013")

	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestConvertRaceLosesOnInvoiceUniqueness(t *testing.T) {
	f := newFixture(t)
	q := f.seedPricedQuote(transport.QuoteStatusAccepted, "DEV-2024-0014")
	// The status write never lands, so the second call passes the status
	// check the way a concurrent request would.
	f.repo.failUpdateStatus = errBoom

	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.NoError(t, err)

	_, err = f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, f.invoices.created, 1)
	assert.Len(t, f.scheduler.invoices, 1)
	assert.Len(t, f.repo.eventsOfType(q.ID, EventQuoteConverted), 1)
}

func TestConvertRejectedQuote(t *testing.T) {
	f := newFixture(t)
	q := f.seedPricedQuote(transport.QuoteStatusRejected, "DEV-2024-0015")

	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, "converted_to_invoice", f.repo.quote(q.ID).Status)
}
