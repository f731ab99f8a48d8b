package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft              QuoteStatus = "draft"
	QuoteStatusSent               QuoteStatus = "sent"
	QuoteStatusViewed             QuoteStatus = "viewed"
	QuoteStatusAccepted           QuoteStatus = "accepted"
	QuoteStatusRejected           QuoteStatus = "rejected"
	QuoteStatusExpired            QuoteStatus = "expired"
	QuoteStatusConvertedToInvoice QuoteStatus = "converted_to_invoice"
)

// Valid reports whether s is one of the known statuses.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusViewed, QuoteStatusAccepted,
		QuoteStatusRejected, QuoteStatusExpired, QuoteStatusConvertedToInvoice:
		return true
	}
	return false
}

// FollowUpStatus represents the status of a single follow-up touchpoint
type FollowUpStatus string

const (
	FollowUpStatusPending   FollowUpStatus = "pending"
	FollowUpStatusScheduled FollowUpStatus = "scheduled"
	FollowUpStatusStopped   FollowUpStatus = "stopped"
	FollowUpStatusSent      FollowUpStatus = "sent"
)

// ── Financial configuration ──────────────────────────────────────────────────

// VATSettings controls how VAT is presented on the quote.
type VATSettings struct {
	Enabled bool            `json:"enabled"`
	Rate    decimal.Decimal `json:"rate"`
	Regime  string          `json:"regime,omitempty" validate:"omitempty,oneof=standard reverse_charge exempt"`
	Mention *string         `json:"mention,omitempty"`
}

// AdvanceSettings describes a deposit requested on signature.
type AdvanceSettings struct {
	Enabled        bool             `json:"enabled"`
	Percentage     *decimal.Decimal `json:"percentage,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	DueOnSignature bool             `json:"dueOnSignature"`
}

// DiscountSettings describes a global discount.
type DiscountSettings struct {
	Enabled bool            `json:"enabled"`
	Kind    string          `json:"kind,omitempty" validate:"omitempty,oneof=percentage fixed"`
	Value   decimal.Decimal `json:"value"`
	Reason  *string         `json:"reason,omitempty"`
}

// PaymentTermsSettings describes when and how the client pays.
type PaymentTermsSettings struct {
	DueDays     int      `json:"dueDays" validate:"gte=0,lte=365"`
	Methods     []string `json:"methods,omitempty"`
	LatePenalty *string  `json:"latePenalty,omitempty"`
}

// MarketingBannerSettings is an optional promotional message shown on the quote.
type MarketingBannerSettings struct {
	Enabled  bool    `json:"enabled"`
	Message  string  `json:"message"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

// FinancialConfig groups the per-section settings. Each section is optional.
type FinancialConfig struct {
	VAT             *VATSettings             `json:"vat,omitempty" validate:"omitempty"`
	Advance         *AdvanceSettings         `json:"advance,omitempty"`
	Discount        *DiscountSettings        `json:"discount,omitempty" validate:"omitempty"`
	PaymentTerms    *PaymentTermsSettings    `json:"paymentTerms,omitempty" validate:"omitempty"`
	MarketingBanner *MarketingBannerSettings `json:"marketingBanner,omitempty"`
}

// ── Requests ─────────────────────────────────────────────────────────────────

// MaterialRequest is a material nested under a task
type MaterialRequest struct {
	Name      string          `json:"name" validate:"notblank"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// TaskRequest is a single task (line of work) on a quote
type TaskRequest struct {
	Name           string            `json:"name" validate:"notblank"`
	Description    *string           `json:"description"`
	Quantity       decimal.Decimal   `json:"quantity"`
	Unit           string            `json:"unit"`
	UnitPrice      decimal.Decimal   `json:"unitPrice"`
	Duration       *decimal.Decimal  `json:"duration"`
	DurationUnit   string            `json:"durationUnit"`
	Category       string            `json:"category"`
	CustomCategory string            `json:"customCategory"`
	Materials      []MaterialRequest `json:"materials" validate:"dive"`
}

// FileRequest references an already uploaded object
type FileRequest struct {
	Category    string `json:"category" validate:"required,oneof=plan photo document other"`
	FileName    string `json:"fileName" validate:"notblank"`
	FileKey     string `json:"fileKey" validate:"required"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes" validate:"gte=0"`
}

// CreateQuoteRequest is the request body for creating a quote
type CreateQuoteRequest struct {
	ClientID        uuid.UUID        `json:"clientId"`
	LeadID          *uuid.UUID       `json:"leadId"`
	ProfileID       *uuid.UUID       `json:"profileId"`
	QuoteNumber     string           `json:"quoteNumber"`
	Title           string           `json:"title"`
	Description     *string          `json:"description"`
	Status          *QuoteStatus     `json:"status" validate:"omitempty,oneof=draft sent"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	TaxAmount       decimal.Decimal  `json:"taxAmount"`
	DiscountAmount  decimal.Decimal  `json:"discountAmount"`
	FinalAmount     decimal.Decimal  `json:"finalAmount"`
	NetAmount       *decimal.Decimal `json:"netAmount"`
	ValidUntil      *string          `json:"validUntil" validate:"omitempty,validdate"`
	Notes           *string          `json:"notes"`
	Tasks           []TaskRequest    `json:"tasks" validate:"dive"`
	Files           []FileRequest    `json:"files" validate:"dive"`
	FinancialConfig *FinancialConfig `json:"financialConfig"`
	EmailOverride   *string          `json:"emailOverride" validate:"omitempty,email"`
	DraftID         *uuid.UUID       `json:"draftId"`
}

// UpdateQuoteRequest is the request body for updating a quote. Nil fields are
// left untouched; a provided child collection replaces the stored one.
type UpdateQuoteRequest struct {
	ClientID        *uuid.UUID       `json:"clientId"`
	ProfileID       *uuid.UUID       `json:"profileId"`
	QuoteNumber     *string          `json:"quoteNumber" validate:"omitempty,notblank"`
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Status          *QuoteStatus     `json:"status" validate:"omitempty,oneof=draft sent viewed accepted rejected"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	TaxAmount       *decimal.Decimal `json:"taxAmount"`
	DiscountAmount  *decimal.Decimal `json:"discountAmount"`
	FinalAmount     *decimal.Decimal `json:"finalAmount"`
	NetAmount       *decimal.Decimal `json:"netAmount"`
	ValidUntil      *string          `json:"validUntil" validate:"omitempty,validdate"`
	Notes           *string          `json:"notes"`
	Tasks           *[]TaskRequest   `json:"tasks" validate:"omitempty,dive"`
	Files           *[]FileRequest   `json:"files" validate:"omitempty,dive"`
	FinancialConfig *FinancialConfig `json:"financialConfig"`
	EmailOverride   *string          `json:"emailOverride" validate:"omitempty,email"`
}

// UpdateQuoteStatusRequest is the request body for an explicit status change
type UpdateQuoteStatusRequest struct {
	Status        QuoteStatus `json:"status" validate:"required,oneof=draft sent viewed accepted rejected"`
	EmailOverride *string     `json:"emailOverride" validate:"omitempty,email"`
}

// ListQuotesRequest contains query parameters for listing quotes
type ListQuotesRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft sent viewed accepted rejected expired converted_to_invoice"`
	ClientID string `form:"clientId" validate:"omitempty,uuid"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ProcessExpirationsRequest optionally scopes a sweep to the caller only.
type ProcessExpirationsRequest struct {
	AllUsers bool `json:"allUsers"`
}

// PresignFileRequest asks for an upload URL for a quote attachment
type PresignFileRequest struct {
	FileName    string `json:"fileName" validate:"notblank,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"gt=0"`
}

// ── Responses ────────────────────────────────────────────────────────────────

// MaterialResponse is a material in a quote response
type MaterialResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// TaskResponse is a task in a quote response
type TaskResponse struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	Quantity       decimal.Decimal    `json:"quantity"`
	Unit           string             `json:"unit"`
	UnitPrice      decimal.Decimal    `json:"unitPrice"`
	Duration       *decimal.Decimal   `json:"duration,omitempty"`
	DurationUnit   string             `json:"durationUnit"`
	Category       string             `json:"category"`
	CustomCategory string             `json:"customCategory"`
	SortOrder      int                `json:"sortOrder"`
	Materials      []MaterialResponse `json:"materials"`
}

// FileResponse is an attachment in a quote response
type FileResponse struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	FileName    string    `json:"fileName"`
	FileKey     string    `json:"fileKey"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ClientSummary is the client embedded in a quote response
type ClientSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

// CompanyProfileSummary is the issuing company embedded in a quote response
type CompanyProfileSummary struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"companyName"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
}

// FollowUpResponse is a follow-up touchpoint of a quote
type FollowUpResponse struct {
	ID          uuid.UUID      `json:"id"`
	Status      FollowUpStatus `json:"status"`
	ScheduledAt *time.Time     `json:"scheduledAt,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// QuoteResponse is the full quote aggregate
type QuoteResponse struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"userId"`
	ClientID        uuid.UUID              `json:"clientId"`
	LeadID          *uuid.UUID             `json:"leadId,omitempty"`
	ProfileID       *uuid.UUID             `json:"profileId,omitempty"`
	QuoteNumber     string                 `json:"quoteNumber"`
	Title           string                 `json:"title"`
	Description     *string                `json:"description,omitempty"`
	Status          QuoteStatus            `json:"status"`
	ShareToken      string                 `json:"shareToken"`
	IsPublic        bool                   `json:"isPublic"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
	TaxAmount       decimal.Decimal        `json:"taxAmount"`
	DiscountAmount  decimal.Decimal        `json:"discountAmount"`
	FinalAmount     decimal.Decimal        `json:"finalAmount"`
	NetAmount       *decimal.Decimal       `json:"netAmount,omitempty"`
	ValidUntil      *string                `json:"validUntil,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	SentAt          *time.Time             `json:"sentAt,omitempty"`
	Tasks           []TaskResponse         `json:"tasks"`
	Files           []FileResponse         `json:"files"`
	FinancialConfig *FinancialConfig       `json:"financialConfig,omitempty"`
	Client          *ClientSummary         `json:"client,omitempty"`
	CompanyProfile  *CompanyProfileSummary `json:"companyProfile,omitempty"`
	FollowUps       []FollowUpResponse     `json:"followUps"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// QuoteListResponse is the paginated list of quotes
type QuoteListResponse struct {
	Items      []QuoteResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// PublicQuoteResponse is the client-facing projection served by share token
type PublicQuoteResponse struct {
	QuoteNumber     string                 `json:"quoteNumber"`
	Title           string                 `json:"title"`
	Description     *string                `json:"description,omitempty"`
	Status          QuoteStatus            `json:"status"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
	TaxAmount       decimal.Decimal        `json:"taxAmount"`
	DiscountAmount  decimal.Decimal        `json:"discountAmount"`
	FinalAmount     decimal.Decimal        `json:"finalAmount"`
	ValidUntil      *string                `json:"validUntil,omitempty"`
	Tasks           []TaskResponse         `json:"tasks"`
	FinancialConfig *FinancialConfig       `json:"financialConfig,omitempty"`
	ClientName      string                 `json:"clientName"`
	CompanyProfile  *CompanyProfileSummary `json:"companyProfile,omitempty"`
}

// QuoteEventResponse is an entry of the quote audit log
type QuoteEventResponse struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Meta      map[string]any `json:"meta"`
	CreatedAt time.Time      `json:"createdAt"`
}

// PresignedURL is an upload or download URL for a quote attachment
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NextQuoteNumberResponse carries a freshly generated quote number
type NextQuoteNumberResponse struct {
	QuoteNumber string `json:"quoteNumber"`
}

// ── Expiration ───────────────────────────────────────────────────────────────

// ExpirationResult reports what happened to one quote during a sweep.
type ExpirationResult struct {
	QuoteID          uuid.UUID   `json:"quoteId"`
	QuoteNumber      string      `json:"quoteNumber"`
	PreviousStatus   QuoteStatus `json:"previousStatus"`
	ValidUntil       string      `json:"validUntil"`
	Success          bool        `json:"success"`
	StatusUpdated    bool        `json:"statusUpdated"`
	FollowUpsStopped bool        `json:"followUpsStopped"`
	StoppedCount     int64       `json:"stoppedCount"`
	EventLogged      bool        `json:"eventLogged"`
	Errors           []string    `json:"errors,omitempty"`
}

// ExpirationRunResult is the aggregate outcome of a sweep. Scanned counts the
// candidates read, Processed the quotes found past their deadline and Expired
// the ones whose status write succeeded.
type ExpirationRunResult struct {
	Scanned   int                `json:"scanned"`
	Processed int                `json:"processed"`
	Expired   int                `json:"expired"`
	Results   []ExpirationResult `json:"results"`
}

// Reason codes returned by the single-quote expiration check.
const (
	ExpirationReasonNoDate        = "no_expiration_date"
	ExpirationReasonFinalState    = "already_in_final_state"
	ExpirationReasonNotYetExpired = "not_yet_expired"
)

// ExpirationCheckResult is returned by the on-demand single quote check.
type ExpirationCheckResult struct {
	QuoteID   uuid.UUID         `json:"quoteId"`
	IsExpired bool              `json:"isExpired"`
	Reason    string            `json:"reason,omitempty"`
	Result    *ExpirationResult `json:"result,omitempty"`
}

// ── Invoice conversion ───────────────────────────────────────────────────────

// InvoiceResponse is the invoice created from a quote
type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	ClientID       uuid.UUID       `json:"clientId"`
	QuoteID        *uuid.UUID      `json:"quoteId,omitempty"`
	QuoteNumber    *string         `json:"quoteNumber,omitempty"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	Status         string          `json:"status"`
	IssueDate      string          `json:"issueDate"`
	DueDate        string          `json:"dueDate"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ── Drafts ───────────────────────────────────────────────────────────────────

// DraftPayload is the in-progress editor state saved between sessions.
type DraftPayload struct {
	ClientID        *uuid.UUID       `json:"clientId,omitempty"`
	LeadID          *uuid.UUID       `json:"leadId,omitempty"`
	Title           string           `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	ValidUntil      *string          `json:"validUntil,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	Tasks           []TaskRequest    `json:"tasks,omitempty"`
	Files           []FileRequest    `json:"files,omitempty"`
	FinancialConfig *FinancialConfig `json:"financialConfig,omitempty"`
	TotalAmount     *decimal.Decimal `json:"totalAmount,omitempty"`
	TaxAmount       *decimal.Decimal `json:"taxAmount,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discountAmount,omitempty"`
	FinalAmount     *decimal.Decimal `json:"finalAmount,omitempty"`
}

// SaveDraftRequest saves editor state by draft id or by natural key
type SaveDraftRequest struct {
	ID          *uuid.UUID   `json:"id"`
	ProfileID   *uuid.UUID   `json:"profileId"`
	QuoteNumber *string      `json:"quoteNumber"`
	Payload     DraftPayload `json:"payload"`
}

// ListDraftsRequest filters drafts by company profile
type ListDraftsRequest struct {
	ProfileID string `form:"profileId" validate:"omitempty,uuid"`
}

// DraftKeyRequest identifies a draft by its natural key
type DraftKeyRequest struct {
	ProfileID string `form:"profileId" validate:"omitempty,uuid"`
}

// RecentDraftsRequest limits the number of recent drafts returned
type RecentDraftsRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=50"`
}

// DraftResponse is a saved draft
type DraftResponse struct {
	ID          uuid.UUID    `json:"id"`
	ProfileID   *uuid.UUID   `json:"profileId,omitempty"`
	QuoteNumber *string      `json:"quoteNumber,omitempty"`
	Payload     DraftPayload `json:"payload"`
	LastSaved   time.Time    `json:"lastSaved"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ── Notifications ────────────────────────────────────────────────────────────

// QuoteNotification carries everything the notification dispatcher needs to
// email a client about a quote.
type QuoteNotification struct {
	QuoteID       uuid.UUID
	UserID        uuid.UUID
	LeadID        *uuid.UUID
	QuoteNumber   string
	Title         string
	ShareToken    string
	FinalAmount   decimal.Decimal
	ValidUntil    *string
	ClientName    string
	ClientEmail   *string
	CompanyName   string
	EmailOverride *string
}
