package service

import (
	"context"
	"fmt"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"
	"artisan_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AccessInfo describes who opened a public share link.
type AccessInfo struct {
	IPAddress string
	UserAgent string
}

// ViewShared serves a quote through its share token. Opening a sent or viewed
// quote moves it to viewed and restarts the follow-up chain.
func (s *Service) ViewShared(ctx context.Context, token string, info AccessInfo) (*transport.PublicQuoteResponse, error) {
	quote, err := s.repo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	// A quote moved back to draft keeps its is_public flag; drafts are never served.
	if !quote.IsPublic || quote.Status == string(transport.QuoteStatusDraft) {
		return nil, apperr.NotFound("quote not found")
	}

	share, err := s.repo.GetShareByToken(ctx, token)
	switch {
	case err == nil:
		if !share.IsActive {
			return nil, apperr.Gone("this quote link is no longer active")
		}
	case apperr.Is(err, apperr.KindNotFound):
		// Share rows are created best-effort; a missing one does not block viewing.
	default:
		s.log.WithContext(ctx).SideEffectFailed("share_lookup", quote.ID.String(), err)
	}

	s.runEffects(ctx, quote.ID, []effect{{
		name: "share_access_log",
		run: func(ctx context.Context) error {
			return s.repo.RecordShareAccess(ctx, repository.AccessLog{
				ID:         uuid.New(),
				QuoteID:    quote.ID,
				ShareToken: token,
				IPAddress:  sanitize.TruncatePtr(nilIfEmpty(&info.IPAddress), maxIPAddressLen),
				UserAgent:  nilIfEmpty(&info.UserAgent),
				AccessedAt: s.now(),
			})
		},
	}})

	if _, err := s.CheckAndUpdateExpiration(ctx, quote.ID, quote.UserID); err != nil {
		s.log.WithContext(ctx).SideEffectFailed("expiration_check", quote.ID.String(), err)
	}

	// Re-read: the expiration check may have changed the status.
	quote, err = s.repo.GetByID(ctx, quote.ID, quote.UserID)
	if err != nil {
		return nil, err
	}

	switch transport.QuoteStatus(quote.Status) {
	case transport.QuoteStatusSent, transport.QuoteStatusViewed:
		if err := s.transitionToViewed(ctx, quote); err != nil {
			s.log.WithContext(ctx).SideEffectFailed("viewed_transition", quote.ID.String(), err)
		}
	}

	return s.buildPublicResponse(ctx, quote)
}

func (s *Service) buildPublicResponse(ctx context.Context, quote *repository.Quote) (*transport.PublicQuoteResponse, error) {
	var (
		tasks   []repository.Task
		fc      *repository.FinancialConfig
		client  *repository.Client
		profile *repository.CompanyProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.repo.ListTasks(gctx, quote.ID)
		return err
	})
	g.Go(func() error {
		var err error
		fc, err = s.repo.GetFinancialConfig(gctx, quote.ID)
		return err
	})
	g.Go(func() error {
		var err error
		client, err = s.repo.GetClient(gctx, quote.ClientID, quote.UserID)
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = s.repo.GetCompanyProfile(gctx, quote.UserID, quote.ProfileID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load public quote: %w", err)
	}

	resp := &transport.PublicQuoteResponse{
		QuoteNumber:     quote.QuoteNumber,
		Title:           quote.Title,
		Description:     quote.Description,
		Status:          transport.QuoteStatus(quote.Status),
		TotalAmount:     quote.TotalAmount,
		TaxAmount:       quote.TaxAmount,
		DiscountAmount:  quote.DiscountAmount,
		FinalAmount:     quote.FinalAmount,
		ValidUntil:      quote.ValidUntil,
		Tasks:           toTaskResponses(tasks),
		FinancialConfig: decodeFinancialConfig(fc),
		CompanyProfile:  toProfileSummary(profile),
	}
	if client != nil {
		resp.ClientName = client.Name
	}
	return resp, nil
}
