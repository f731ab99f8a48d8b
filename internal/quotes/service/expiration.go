package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"

	"github.com/google/uuid"
)

// expirableStatuses are scanned by the sweep. Drafts are included so that
// unsent quotes also age out once their deadline passes.
var expirableStatuses = []string{
	string(transport.QuoteStatusSent),
	string(transport.QuoteStatusViewed),
	string(transport.QuoteStatusDraft),
}

var validUntilLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// parseValidUntil accepts a bare date, read as local midnight of that day, or
// a full timestamp.
func parseValidUntil(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty valid_until")
	}
	if len(value) == len("2006-01-02") {
		return time.ParseInLocation("2006-01-02", value, loc)
	}
	for _, layout := range validUntilLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised valid_until %q", value)
}

// ProcessExpirations expires every non-terminal quote whose deadline lies
// before today, optionally scoped to one user. Per-quote failures are
// reported in the result and never abort the sweep.
func (s *Service) ProcessExpirations(ctx context.Context, userID *uuid.UUID) (*transport.ExpirationRunResult, error) {
	candidates, err := s.repo.ListExpirationCandidates(ctx, userID, expirableStatuses)
	if err != nil {
		return nil, err
	}

	today := s.today()
	result := &transport.ExpirationRunResult{
		Scanned: len(candidates),
		Results: make([]transport.ExpirationResult, 0),
	}

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		quote := &candidates[i]
		if quote.ValidUntil == nil {
			continue
		}
		deadline, err := parseValidUntil(*quote.ValidUntil, s.loc)
		if err != nil {
			s.log.WithContext(ctx).Warn("invalid_valid_until", "quote_id", quote.ID, "valid_until", *quote.ValidUntil)
			continue
		}
		if !deadline.Before(today) {
			continue
		}

		res := s.expireQuote(ctx, quote)
		result.Processed++
		if res.StatusUpdated {
			result.Expired++
		}
		result.Results = append(result.Results, res)
	}

	return result, nil
}

// CheckAndUpdateExpiration runs the sweep logic for a single quote. A quote
// that does not need to expire is reported with a reason code, not an error.
func (s *Service) CheckAndUpdateExpiration(ctx context.Context, quoteID uuid.UUID, userID uuid.UUID) (*transport.ExpirationCheckResult, error) {
	quote, err := s.repo.GetByID(ctx, quoteID, userID)
	if err != nil {
		return nil, err
	}

	check := &transport.ExpirationCheckResult{QuoteID: quote.ID}

	if quote.ValidUntil == nil || strings.TrimSpace(*quote.ValidUntil) == "" {
		check.Reason = transport.ExpirationReasonNoDate
		return check, nil
	}
	if !isExpirable(quote.Status) {
		check.Reason = transport.ExpirationReasonFinalState
		return check, nil
	}

	deadline, err := parseValidUntil(*quote.ValidUntil, s.loc)
	if err != nil {
		s.log.WithContext(ctx).Warn("invalid_valid_until", "quote_id", quote.ID, "valid_until", *quote.ValidUntil)
		check.Reason = transport.ExpirationReasonNotYetExpired
		return check, nil
	}
	if !deadline.Before(s.today()) {
		check.Reason = transport.ExpirationReasonNotYetExpired
		return check, nil
	}

	res := s.expireQuote(ctx, quote)
	check.IsExpired = res.StatusUpdated
	check.Result = &res
	return check, nil
}

// expireQuote writes the expired status, then stops active follow-ups and
// logs a quote_expired event. The two later steps are attempted only when
// the status write changed the row, so a repeated run logs nothing new.
func (s *Service) expireQuote(ctx context.Context, quote *repository.Quote) transport.ExpirationResult {
	res := transport.ExpirationResult{
		QuoteID:        quote.ID,
		QuoteNumber:    quote.QuoteNumber,
		PreviousStatus: transport.QuoteStatus(quote.Status),
	}
	if quote.ValidUntil != nil {
		res.ValidUntil = *quote.ValidUntil
	}

	now := s.now()
	updated, err := s.repo.ExpireQuote(ctx, quote.ID, expirableStatuses, now)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("expire_quote", err)
		res.Errors = append(res.Errors, "status update: "+err.Error())
		return res
	}
	if !updated {
		res.Errors = append(res.Errors, "status update: quote is no longer in an expirable status")
		return res
	}
	res.StatusUpdated = true
	res.Success = true

	stopped, err := s.repo.StopActiveFollowUps(ctx, quote.ID, StopReasonExpired, now)
	if err != nil {
		s.log.WithContext(ctx).SideEffectFailed("followup_stop", quote.ID.String(), err)
		res.Errors = append(res.Errors, "stop follow-ups: "+err.Error())
	} else {
		res.FollowUpsStopped = true
		res.StoppedCount = stopped
	}

	if err := s.appendEvent(ctx, quote, EventQuoteExpired, map[string]any{
		"previous_status": quote.Status,
		"valid_until":     res.ValidUntil,
		"expired_at":      now.UTC().Format(time.RFC3339),
	}); err != nil {
		s.log.WithContext(ctx).SideEffectFailed("quote_event:"+EventQuoteExpired, quote.ID.String(), err)
		res.Errors = append(res.Errors, "log event: "+err.Error())
	} else {
		res.EventLogged = true
	}

	quote.Status = string(transport.QuoteStatusExpired)
	quote.UpdatedAt = now
	return res
}
