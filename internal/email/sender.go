package email

import (
	"context"

	"artisan_backend/platform/config"
)

// Sender delivers the client-facing quote emails.
type Sender interface {
	SendQuoteReadyEmail(ctx context.Context, toEmail, clientName, companyName, quoteNumber, shareURL string) error
	SendLeadQuoteReadyEmail(ctx context.Context, toEmail, clientName, companyName, quoteNumber, shareURL string) error
	SendQuoteUpdatedEmail(ctx context.Context, toEmail, clientName, companyName, quoteNumber, shareURL string) error
}

type NoopSender struct{}

var _ Sender = NoopSender{}

func (NoopSender) SendQuoteReadyEmail(ctx context.Context, toEmail, clientName, companyName, quoteNumber, shareURL string) error {
	return nil
}

func (NoopSender) SendLeadQuoteReadyEmail(ctx context.Context, toEmail, clientName, companyName, quoteNumber, shareURL string) error {
	return nil
}

func (NoopSender) SendQuoteUpdatedEmail(ctx context.Context, toEmail, clientName, companyName, quoteNumber, shareURL string) error {
	return nil
}

// NewSender returns an SMTP sender when email is enabled, otherwise a NoopSender.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
