package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the database model for a quote header
type Quote struct {
	ID             uuid.UUID           `db:"id"`
	UserID         uuid.UUID           `db:"user_id"`
	ClientID       uuid.UUID           `db:"client_id"`
	LeadID         *uuid.UUID          `db:"lead_id"`
	ProfileID      *uuid.UUID          `db:"profile_id"`
	QuoteNumber    string              `db:"quote_number"`
	Title          string              `db:"title"`
	Description    *string             `db:"description"`
	Status         string              `db:"status"`
	ShareToken     string              `db:"share_token"`
	IsPublic       bool                `db:"is_public"`
	TotalAmount    decimal.Decimal     `db:"total_amount"`
	TaxAmount      decimal.Decimal     `db:"tax_amount"`
	DiscountAmount decimal.Decimal     `db:"discount_amount"`
	FinalAmount    decimal.Decimal     `db:"final_amount"`
	NetAmount      decimal.NullDecimal `db:"net_amount"`
	ValidUntil     *string             `db:"valid_until"`
	Notes          *string             `db:"notes"`
	SentAt         *time.Time          `db:"sent_at"`
	CreatedAt      time.Time           `db:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at"`
}

// Task is the database model for a line of work on a quote
type Task struct {
	ID             uuid.UUID        `db:"id"`
	QuoteID        uuid.UUID        `db:"quote_id"`
	Name           string           `db:"name"`
	Description    *string          `db:"description"`
	Quantity       decimal.Decimal  `db:"quantity"`
	Unit           string           `db:"unit"`
	UnitPrice      decimal.Decimal  `db:"unit_price"`
	Duration       *decimal.Decimal `db:"duration"`
	DurationUnit   string           `db:"duration_unit"`
	Category       string           `db:"category"`
	CustomCategory string           `db:"custom_category"`
	SortOrder      int              `db:"sort_order"`
	Materials      []Material       `db:"-"`
}

// Material is the database model for a material attached to a task
type Material struct {
	ID        uuid.UUID       `db:"id"`
	QuoteID   uuid.UUID       `db:"quote_id"`
	TaskID    *uuid.UUID      `db:"task_id"`
	Name      string          `db:"name"`
	Quantity  decimal.Decimal `db:"quantity"`
	Unit      string          `db:"unit"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	SortOrder int             `db:"sort_order"`
}

// File is the database model for a quote attachment stored in object storage
type File struct {
	ID          uuid.UUID `db:"id"`
	QuoteID     uuid.UUID `db:"quote_id"`
	Category    string    `db:"category"`
	FileName    string    `db:"file_name"`
	FileKey     string    `db:"file_key"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	CreatedAt   time.Time `db:"created_at"`
}

// FinancialConfig holds the raw JSON sections of a quote's financial settings.
// A nil section means the section is not configured.
type FinancialConfig struct {
	QuoteID         uuid.UUID `db:"quote_id"`
	VAT             []byte    `db:"vat"`
	Advance         []byte    `db:"advance"`
	Discount        []byte    `db:"discount"`
	PaymentTerms    []byte    `db:"payment_terms"`
	MarketingBanner []byte    `db:"marketing_banner"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Children groups the child collections of a quote aggregate. A nil field
// leaves the stored collection untouched on update.
type Children struct {
	Tasks           *[]Task
	Files           *[]File
	FinancialConfig *FinancialConfig
}

// FollowUp is a scheduled reminder touchpoint for a quote
type FollowUp struct {
	ID          uuid.UUID  `db:"id"`
	QuoteID     uuid.UUID  `db:"quote_id"`
	UserID      uuid.UUID  `db:"user_id"`
	Status      string     `db:"status"`
	ScheduledAt *time.Time `db:"scheduled_at"`
	Meta        []byte     `db:"meta"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// QuoteEvent is an audit log entry for a quote
type QuoteEvent struct {
	ID        uuid.UUID `db:"id"`
	QuoteID   uuid.UUID `db:"quote_id"`
	UserID    uuid.UUID `db:"user_id"`
	Type      string    `db:"type"`
	Meta      []byte    `db:"meta"`
	CreatedAt time.Time `db:"created_at"`
}

// QuoteShare is the record behind a public share link
type QuoteShare struct {
	ID             uuid.UUID  `db:"id"`
	QuoteID        uuid.UUID  `db:"quote_id"`
	UserID         uuid.UUID  `db:"user_id"`
	ShareToken     string     `db:"share_token"`
	AccessCount    int        `db:"access_count"`
	IsActive       bool       `db:"is_active"`
	LastAccessedAt *time.Time `db:"last_accessed_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// AccessLog is a single visit to a public share link
type AccessLog struct {
	ID         uuid.UUID `db:"id"`
	QuoteID    uuid.UUID `db:"quote_id"`
	ShareToken string    `db:"share_token"`
	IPAddress  *string   `db:"ip_address"`
	UserAgent  *string   `db:"user_agent"`
	AccessedAt time.Time `db:"accessed_at"`
}

// Draft is a saved in-progress quote editor state
type Draft struct {
	ID          uuid.UUID  `db:"id"`
	UserID      uuid.UUID  `db:"user_id"`
	ProfileID   *uuid.UUID `db:"profile_id"`
	QuoteNumber *string    `db:"quote_number"`
	Payload     []byte     `db:"payload"`
	LastSaved   time.Time  `db:"last_saved"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Client is the customer a quote is addressed to
type Client struct {
	ID      uuid.UUID `db:"id"`
	UserID  uuid.UUID `db:"user_id"`
	Name    string    `db:"name"`
	Email   *string   `db:"email"`
	Phone   *string   `db:"phone"`
	Address *string   `db:"address"`
}

// CompanyProfile is the issuing company shown on a quote
type CompanyProfile struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	CompanyName string    `db:"company_name"`
	Email       *string   `db:"email"`
	Phone       *string   `db:"phone"`
	Address     *string   `db:"address"`
	IsDefault   bool      `db:"is_default"`
}

// ListParams contains parameters for listing quotes
type ListParams struct {
	UserID   uuid.UUID
	ClientID *uuid.UUID
	Status   *string
	Search   string
	Page     int
	PageSize int
}

// ListResult contains the paginated result of listing quotes
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
