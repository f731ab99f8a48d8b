// Package followup talks to the external Follow-up Scheduler that owns the
// reminder cadence for quotes and invoices.
package followup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"artisan_backend/platform/config"
	"artisan_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	ActionCreateForQuote   = "create_followup_for_quote"
	ActionMarkQuoteViewed  = "mark_quote_viewed"
	ActionCreateForInvoice = "create_followup_for_invoice"
)

const defaultTimeout = 10 * time.Second

// Scheduler is the set of calls the quote lifecycle makes.
type Scheduler interface {
	CreateForQuote(ctx context.Context, quoteID uuid.UUID, status string, replaceExisting bool) error
	MarkQuoteViewed(ctx context.Context, quoteID uuid.UUID) error
	CreateForInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

type request struct {
	Action          string     `json:"action"`
	QuoteID         *uuid.UUID `json:"quote_id,omitempty"`
	InvoiceID       *uuid.UUID `json:"invoice_id,omitempty"`
	Status          string     `json:"status,omitempty"`
	ReplaceExisting *bool      `json:"replace_existing,omitempty"`
}

// Client posts actions to the scheduler endpoint.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
	log    *logger.Logger
}

var _ Scheduler = (*Client)(nil)

// New returns an HTTP client when a scheduler URL is configured, otherwise a Noop.
func New(cfg config.FollowUpConfig, log *logger.Logger) Scheduler {
	if !cfg.IsFollowUpSchedulerEnabled() {
		return Noop{}
	}
	timeout := cfg.GetFollowUpSchedulerTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(cfg.GetFollowUpSchedulerURL(), cfg.GetFollowUpSchedulerAPIKey(), &http.Client{Timeout: timeout}, log)
}

func NewClient(url, apiKey string, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		url:    strings.TrimRight(url, "/"),
		apiKey: apiKey,
		http:   httpClient,
		log:    log,
	}
}

func (c *Client) CreateForQuote(ctx context.Context, quoteID uuid.UUID, status string, replaceExisting bool) error {
	return c.post(ctx, request{
		Action:          ActionCreateForQuote,
		QuoteID:         &quoteID,
		Status:          status,
		ReplaceExisting: &replaceExisting,
	})
}

func (c *Client) MarkQuoteViewed(ctx context.Context, quoteID uuid.UUID) error {
	return c.post(ctx, request{Action: ActionMarkQuoteViewed, QuoteID: &quoteID})
}

func (c *Client) CreateForInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return c.post(ctx, request{Action: ActionCreateForInvoice, InvoiceID: &invoiceID})
}

func (c *Client) post(ctx context.Context, payload request) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal follow-up payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build follow-up request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("follow-up scheduler request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("follow-up scheduler returned %d for %s: %s", resp.StatusCode, payload.Action, strings.TrimSpace(string(data)))
	}

	if c.log != nil {
		c.log.Debug("follow-up scheduler called", "action", payload.Action)
	}
	return nil
}

// Noop is used when no scheduler is configured.
type Noop struct{}

var _ Scheduler = Noop{}

func (Noop) CreateForQuote(context.Context, uuid.UUID, string, bool) error { return nil }
func (Noop) MarkQuoteViewed(context.Context, uuid.UUID) error             { return nil }
func (Noop) CreateForInvoice(context.Context, uuid.UUID) error            { return nil }
