package service

import (
	"context"
	"time"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStore is the quote aggregate part of the persistence port.
type QuoteStore interface {
	NextQuoteNumber(ctx context.Context, userID uuid.UUID, year int) (string, error)
	CreateAggregate(ctx context.Context, quote *repository.Quote, children repository.Children) error
	UpdateAggregate(ctx context.Context, quote *repository.Quote, children repository.Children) error
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*repository.Quote, error)
	GetByShareToken(ctx context.Context, token string) (*repository.Quote, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	ListTasks(ctx context.Context, quoteID uuid.UUID) ([]repository.Task, error)
	ListFiles(ctx context.Context, quoteID uuid.UUID) ([]repository.File, error)
	GetFile(ctx context.Context, quoteID, fileID uuid.UUID) (*repository.File, error)
	GetFinancialConfig(ctx context.Context, quoteID uuid.UUID) (*repository.FinancialConfig, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status string, now time.Time) error
	MarkSent(ctx context.Context, id uuid.UUID, userID uuid.UUID, now time.Time) error
	ExpireQuote(ctx context.Context, id uuid.UUID, fromStatuses []string, now time.Time) (bool, error)
	ListExpirationCandidates(ctx context.Context, userID *uuid.UUID, statuses []string) ([]repository.Quote, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

// FollowUpStore stops active follow-up chains.
type FollowUpStore interface {
	StopActiveFollowUps(ctx context.Context, quoteID uuid.UUID, reason string, now time.Time) (int64, error)
	ListFollowUps(ctx context.Context, quoteID uuid.UUID) ([]repository.FollowUp, error)
}

// ActivityStore records events, share links and share visits.
type ActivityStore interface {
	AppendEvent(ctx context.Context, event repository.QuoteEvent) error
	ListEvents(ctx context.Context, quoteID uuid.UUID) ([]repository.QuoteEvent, error)
	CreateShare(ctx context.Context, share repository.QuoteShare) error
	GetShareByToken(ctx context.Context, token string) (*repository.QuoteShare, error)
	RecordShareAccess(ctx context.Context, entry repository.AccessLog) error
}

// PartyStore reads the client and issuing company of a quote.
type PartyStore interface {
	GetClient(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*repository.Client, error)
	GetCompanyProfile(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) (*repository.CompanyProfile, error)
}

// DraftStore persists in-progress quote editor state.
type DraftStore interface {
	UpdateDraftByID(ctx context.Context, id uuid.UUID, userID uuid.UUID, payload []byte, now time.Time) (*repository.Draft, error)
	FindDraftByKey(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) (*repository.Draft, error)
	UpdateDraftPayload(ctx context.Context, id uuid.UUID, payload []byte, now time.Time) (*repository.Draft, error)
	InsertDraft(ctx context.Context, d repository.Draft) (*repository.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*repository.Draft, error)
	GetDraftByQuoteNumber(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) (*repository.Draft, error)
	DeleteDraft(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	DeleteDraftByQuoteNumber(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) error
	ListDrafts(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) ([]repository.Draft, error)
	ListRecentDrafts(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Draft, error)
}

// Repository is everything the quotes service needs from persistence.
// *repository.Repository implements it.
type Repository interface {
	QuoteStore
	FollowUpStore
	ActivityStore
	PartyStore
	DraftStore
}

// FollowUpScheduler (re)computes the next follow-up touchpoint. Implemented by
// internal/followup.
type FollowUpScheduler interface {
	CreateForQuote(ctx context.Context, quoteID uuid.UUID, status string, replaceExisting bool) error
	MarkQuoteViewed(ctx context.Context, quoteID uuid.UUID) error
	CreateForInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// Notifier emails the client about a quote. Implemented by internal/notification.
type Notifier interface {
	QuoteReady(ctx context.Context, n transport.QuoteNotification) error
	QuoteUpdated(ctx context.Context, n transport.QuoteNotification) error
}

// InvoiceParams captures the invoice row created from a quote without
// importing the invoices domain.
type InvoiceParams struct {
	UserID         uuid.UUID
	ClientID       uuid.UUID
	QuoteID        uuid.UUID
	QuoteNumber    string
	InvoiceNumber  string
	IssueDate      time.Time
	DueDate        time.Time
	TotalAmount    decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
	FinalAmount    decimal.Decimal
	Notes          string
}

// InvoiceWriter creates invoices. Implemented by an adapter in internal/adapters
// that wraps the invoices repository.
type InvoiceWriter interface {
	NextInvoiceNumber(ctx context.Context, userID uuid.UUID) (string, error)
	CreateInvoice(ctx context.Context, params InvoiceParams) (*transport.InvoiceResponse, error)
}

// FileStore issues presigned URLs for quote attachments and removes objects
// when a quote is deleted. Implemented by an adapter over MinIO.
type FileStore interface {
	GenerateUploadURL(ctx context.Context, userID, quoteID uuid.UUID, fileName, contentType string, sizeBytes int64) (*transport.PresignedURL, error)
	GenerateDownloadURL(ctx context.Context, fileKey string) (*transport.PresignedURL, error)
	DeleteObject(ctx context.Context, fileKey string) error
}
