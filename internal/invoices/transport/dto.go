package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceResponse is a single invoice
type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	ClientID       uuid.UUID       `json:"clientId"`
	QuoteID        *uuid.UUID      `json:"quoteId,omitempty"`
	QuoteNumber    *string         `json:"quoteNumber,omitempty"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	Status         InvoiceStatus   `json:"status"`
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

// ListInvoicesRequest holds the query parameters for listing invoices
type ListInvoicesRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=unpaid paid overdue cancelled"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// InvoiceListResponse is the paginated list of invoices
type InvoiceListResponse struct {
	Items      []InvoiceResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// CreateFromQuoteParams carries the figures of a converted quote
type CreateFromQuoteParams struct {
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
