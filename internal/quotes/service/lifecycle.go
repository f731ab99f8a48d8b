package service

import (
	"context"
	"fmt"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	notificationQuoteReady   = "quote_ready"
	notificationQuoteUpdated = "quote_updated"
)

// UpdateStatus performs an explicit status change requested by the owner.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, req transport.UpdateQuoteStatusRequest) (*transport.QuoteResponse, error) {
	// Always decide from the persisted status, never from a caller projection.
	quote, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, quote, req.Status, req.EmailOverride); err != nil {
		return nil, err
	}
	return s.loadAggregate(ctx, id, userID)
}

// applyTransition moves quote to target and runs the side effects the
// transition requires. Only the status write can fail the call.
func (s *Service) applyTransition(ctx context.Context, quote *repository.Quote, target transport.QuoteStatus, emailOverride *string) error {
	switch target {
	case transport.QuoteStatusExpired:
		return apperr.Validation("quotes are only expired by the expiration sweep")
	case transport.QuoteStatusConvertedToInvoice:
		return apperr.Validation("use the convert action to turn a quote into an invoice")
	}
	if !target.Valid() {
		return apperr.Validationf("unknown quote status %q", target)
	}
	if quote.Status == string(transport.QuoteStatusConvertedToInvoice) {
		return apperr.Conflict(msgConvertedImmutable)
	}

	switch target {
	case transport.QuoteStatusSent:
		return s.transitionToSent(ctx, quote, emailOverride)
	case transport.QuoteStatusViewed:
		return s.transitionToViewed(ctx, quote)
	default:
		// draft, accepted and rejected are plain status writes with no
		// scheduler involvement.
		previous := quote.Status
		now := s.now()
		if err := s.repo.UpdateStatus(ctx, quote.ID, quote.UserID, string(target), now); err != nil {
			return err
		}
		quote.Status = string(target)
		quote.UpdatedAt = now
		if previous != quote.Status {
			s.logEvent(ctx, quote, EventStatusChanged, map[string]any{"from": previous, "to": quote.Status})
		}
		return nil
	}
}

// transitionToSent publishes the quote. A quote that is already sent is
// treated as a revision: the client gets an update email and the follow-up
// chain is left alone.
func (s *Service) transitionToSent(ctx context.Context, quote *repository.Quote, emailOverride *string) error {
	if quote.Status == string(transport.QuoteStatusSent) {
		s.runEffects(ctx, quote.ID, []effect{{
			name: "quote_updated_notification",
			run: func(ctx context.Context) error {
				return s.notifyClient(ctx, quote, emailOverride, notificationQuoteUpdated)
			},
		}})
		return nil
	}

	now := s.now()
	if err := s.repo.MarkSent(ctx, quote.ID, quote.UserID, now); err != nil {
		return err
	}
	previous := quote.Status
	quote.Status = string(transport.QuoteStatusSent)
	quote.IsPublic = true
	quote.UpdatedAt = now
	if quote.SentAt == nil {
		quote.SentAt = &now
	}

	s.logEvent(ctx, quote, EventQuoteSent, map[string]any{"from": previous})
	s.runEffects(ctx, quote.ID, s.sentEffects(quote, emailOverride))
	return nil
}

// sentEffects are the best-effort effects of a quote becoming sent, in order:
// share link, follow-up chain replacement, then the single "quote ready" email.
func (s *Service) sentEffects(quote *repository.Quote, emailOverride *string) []effect {
	return []effect{
		{
			name: "quote_share",
			run: func(ctx context.Context) error {
				return s.repo.CreateShare(ctx, repository.QuoteShare{
					ID:         uuid.New(),
					QuoteID:    quote.ID,
					UserID:     quote.UserID,
					ShareToken: quote.ShareToken,
					IsActive:   true,
					CreatedAt:  s.now(),
				})
			},
		},
		{
			name: "followup_chain",
			run: func(ctx context.Context) error {
				return s.replaceFollowUpChain(ctx, quote.ID, StopReasonReplaced, func(ctx context.Context, f FollowUpScheduler) error {
					return f.CreateForQuote(ctx, quote.ID, string(transport.QuoteStatusSent), true)
				})
			},
		},
		{
			name: "quote_ready_notification",
			run: func(ctx context.Context) error {
				return s.notifyClient(ctx, quote, emailOverride, notificationQuoteReady)
			},
		},
	}
}

// transitionToViewed records that the client opened the quote and restarts
// the follow-up chain for a viewed-but-undecided quote. Every call performs the
// full stop-then-create sequence.
func (s *Service) transitionToViewed(ctx context.Context, quote *repository.Quote) error {
	previous := quote.Status
	now := s.now()
	if err := s.repo.UpdateStatus(ctx, quote.ID, quote.UserID, string(transport.QuoteStatusViewed), now); err != nil {
		return err
	}
	quote.Status = string(transport.QuoteStatusViewed)
	quote.UpdatedAt = now

	if previous != quote.Status {
		s.logEvent(ctx, quote, EventQuoteViewed, map[string]any{"from": previous})
	}

	s.runEffects(ctx, quote.ID, []effect{{
		name: "followup_chain",
		run: func(ctx context.Context) error {
			return s.replaceFollowUpChain(ctx, quote.ID, StopReasonViewed, func(ctx context.Context, f FollowUpScheduler) error {
				return f.MarkQuoteViewed(ctx, quote.ID)
			})
		},
	}})
	return nil
}

// notifyClient is the only place client emails are sent from. The dispatcher
// picks the lead or generic template from the presence of a lead id. An
// email_sent event is logged only when the email went out.
func (s *Service) notifyClient(ctx context.Context, quote *repository.Quote, emailOverride *string, kind string) error {
	if s.notifier == nil {
		return nil
	}

	n, err := s.buildNotification(ctx, quote, emailOverride)
	if err != nil {
		return err
	}

	switch kind {
	case notificationQuoteReady:
		err = s.notifier.QuoteReady(ctx, n)
	case notificationQuoteUpdated:
		err = s.notifier.QuoteUpdated(ctx, n)
	default:
		err = fmt.Errorf("unknown notification kind %q", kind)
	}
	if err != nil {
		return err
	}

	meta := map[string]any{"kind": kind}
	if n.EmailOverride != nil {
		meta["recipient"] = *n.EmailOverride
	} else if n.ClientEmail != nil {
		meta["recipient"] = *n.ClientEmail
	}
	s.logEvent(ctx, quote, EventEmailSent, meta)
	return nil
}

func (s *Service) buildNotification(ctx context.Context, quote *repository.Quote, emailOverride *string) (transport.QuoteNotification, error) {
	client, err := s.repo.GetClient(ctx, quote.ClientID, quote.UserID)
	if err != nil {
		return transport.QuoteNotification{}, fmt.Errorf("load client: %w", err)
	}

	n := transport.QuoteNotification{
		QuoteID:       quote.ID,
		UserID:        quote.UserID,
		LeadID:        quote.LeadID,
		QuoteNumber:   quote.QuoteNumber,
		Title:         quote.Title,
		ShareToken:    quote.ShareToken,
		FinalAmount:   quote.FinalAmount,
		ValidUntil:    quote.ValidUntil,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		EmailOverride: nilIfEmpty(emailOverride),
	}

	profile, err := s.repo.GetCompanyProfile(ctx, quote.UserID, quote.ProfileID)
	if err != nil {
		s.log.WithContext(ctx).Warn("company_profile_lookup_failed", "quote_id", quote.ID, "error", err)
	}
	if profile != nil {
		n.CompanyName = profile.CompanyName
	}
	return n, nil
}
