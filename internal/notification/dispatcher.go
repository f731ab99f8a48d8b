// Package notification maps quote notifications onto transactional emails.
// Domain code only knows the Notifier port; templates and delivery live here.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artisan_backend/internal/email"
	quotesvc "artisan_backend/internal/quotes/service"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/config"
	"artisan_backend/platform/logger"
)

// ErrNoRecipient is returned when neither an override nor a client email is known.
var ErrNoRecipient = errors.New("no recipient email for quote notification")

// Dispatcher implements the quote service's Notifier port.
type Dispatcher struct {
	sender  email.Sender
	baseURL string
	log     *logger.Logger
}

var _ quotesvc.Notifier = (*Dispatcher)(nil)

func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		baseURL: strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		log:     log,
	}
}

// QuoteReady sends the first "your quote is ready" email. Quotes tied to a lead
// get the request-specific template.
func (d *Dispatcher) QuoteReady(ctx context.Context, n transport.QuoteNotification) error {
	to, err := recipient(n)
	if err != nil {
		return err
	}

	shareURL := d.shareURL(n.ShareToken)
	if n.LeadID != nil {
		err = d.sender.SendLeadQuoteReadyEmail(ctx, to, n.ClientName, n.CompanyName, n.QuoteNumber, shareURL)
	} else {
		err = d.sender.SendQuoteReadyEmail(ctx, to, n.ClientName, n.CompanyName, n.QuoteNumber, shareURL)
	}
	if err != nil {
		return fmt.Errorf("send quote ready email: %w", err)
	}

	d.log.WithContext(ctx).Info("quote ready email sent", "quote_id", n.QuoteID, "lead", n.LeadID != nil)
	return nil
}

func (d *Dispatcher) QuoteUpdated(ctx context.Context, n transport.QuoteNotification) error {
	to, err := recipient(n)
	if err != nil {
		return err
	}

	if err := d.sender.SendQuoteUpdatedEmail(ctx, to, n.ClientName, n.CompanyName, n.QuoteNumber, d.shareURL(n.ShareToken)); err != nil {
		return fmt.Errorf("send quote updated email: %w", err)
	}

	d.log.WithContext(ctx).Info("quote updated email sent", "quote_id", n.QuoteID)
	return nil
}

func (d *Dispatcher) shareURL(token string) string {
	return d.baseURL + "/q/" + token
}

func recipient(n transport.QuoteNotification) (string, error) {
	if n.EmailOverride != nil && strings.TrimSpace(*n.EmailOverride) != "" {
		return strings.TrimSpace(*n.EmailOverride), nil
	}
	if n.ClientEmail != nil && strings.TrimSpace(*n.ClientEmail) != "" {
		return strings.TrimSpace(*n.ClientEmail), nil
	}
	return "", ErrNoRecipient
}
