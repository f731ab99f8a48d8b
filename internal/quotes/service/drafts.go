package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	defaultRecentDrafts = 5
	maxRecentDrafts     = 50
)

// SaveDraft upserts editor state. An explicit draft id is tried first; when
// that row does not exist the natural key (user, profile, quote number) is
// used; without a quote number a new draft is always inserted.
func (s *Service) SaveDraft(ctx context.Context, userID uuid.UUID, req transport.SaveDraftRequest) (*transport.DraftResponse, error) {
	if userID == uuid.Nil {
		return nil, apperr.Validation("user_id is required")
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal draft payload: %w", err)
	}

	var quoteNumber *string
	if req.QuoteNumber != nil {
		if n := clampQuoteNumber(*req.QuoteNumber); n != "" {
			quoteNumber = &n
		}
	}

	now := s.now()

	if req.ID != nil {
		d, err := s.repo.UpdateDraftByID(ctx, *req.ID, userID, payload, now)
		if err == nil {
			return toDraftResponse(d)
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
	}

	if quoteNumber != nil {
		d, err := s.saveDraftByKey(ctx, userID, req.ProfileID, *quoteNumber, payload)
		if err != nil {
			return nil, err
		}
		return toDraftResponse(d)
	}

	d, err := s.repo.InsertDraft(ctx, repository.Draft{
		ID:        uuid.New(),
		UserID:    userID,
		ProfileID: req.ProfileID,
		Payload:   payload,
		LastSaved: now,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return toDraftResponse(d)
}

func (s *Service) saveDraftByKey(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string, payload []byte) (*repository.Draft, error) {
	existing, err := s.repo.FindDraftByKey(ctx, userID, profileID, quoteNumber)
	if err == nil {
		return s.repo.UpdateDraftPayload(ctx, existing.ID, payload, s.now())
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	now := s.now()
	d, err := s.repo.InsertDraft(ctx, repository.Draft{
		ID:          uuid.New(),
		UserID:      userID,
		ProfileID:   profileID,
		QuoteNumber: &quoteNumber,
		Payload:     payload,
		LastSaved:   now,
		CreatedAt:   now,
	})
	if err == nil {
		return d, nil
	}
	if !apperr.Is(err, apperr.KindConflict) {
		return nil, err
	}

	// Lost an insert race on the same key: overwrite the winner.
	existing, err = s.repo.FindDraftByKey(ctx, userID, profileID, quoteNumber)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateDraftPayload(ctx, existing.ID, payload, now)
}

// LoadDraft returns a draft by id
func (s *Service) LoadDraft(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*transport.DraftResponse, error) {
	d, err := s.repo.GetDraft(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return toDraftResponse(d)
}

// LoadDraftByQuoteNumber returns the draft saved under a quote number
func (s *Service) LoadDraftByQuoteNumber(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) (*transport.DraftResponse, error) {
	number := clampQuoteNumber(quoteNumber)
	if number == "" {
		return nil, apperr.Validation("quote_number is required")
	}
	d, err := s.repo.GetDraftByQuoteNumber(ctx, userID, profileID, number)
	if err != nil {
		return nil, err
	}
	return toDraftResponse(d)
}

// DeleteDraft removes a draft by id
func (s *Service) DeleteDraft(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	return s.repo.DeleteDraft(ctx, id, userID)
}

// DeleteDraftByQuoteNumber removes the draft saved under a quote number
func (s *Service) DeleteDraftByQuoteNumber(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) error {
	number := clampQuoteNumber(quoteNumber)
	if number == "" {
		return apperr.Validation("quote_number is required")
	}
	return s.repo.DeleteDraftByQuoteNumber(ctx, userID, profileID, number)
}

// ListDrafts returns all drafts of the user, optionally for one profile
func (s *Service) ListDrafts(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) ([]transport.DraftResponse, error) {
	drafts, err := s.repo.ListDrafts(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	return toDraftResponses(drafts)
}

// LoadRecentDrafts returns the most recently saved drafts
func (s *Service) LoadRecentDrafts(ctx context.Context, userID uuid.UUID, limit int) ([]transport.DraftResponse, error) {
	if limit <= 0 {
		limit = defaultRecentDrafts
	}
	if limit > maxRecentDrafts {
		limit = maxRecentDrafts
	}
	drafts, err := s.repo.ListRecentDrafts(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return toDraftResponses(drafts)
}

func toDraftResponse(d *repository.Draft) (*transport.DraftResponse, error) {
	resp := transport.DraftResponse{
		ID:          d.ID,
		ProfileID:   d.ProfileID,
		QuoteNumber: d.QuoteNumber,
		LastSaved:   d.LastSaved,
		CreatedAt:   d.CreatedAt,
	}
	if len(d.Payload) > 0 && strings.TrimSpace(string(d.Payload)) != "null" {
		if err := json.Unmarshal(d.Payload, &resp.Payload); err != nil {
			return nil, fmt.Errorf("decode draft payload: %w", err)
		}
	}
	return &resp, nil
}

func toDraftResponses(drafts []repository.Draft) ([]transport.DraftResponse, error) {
	out := make([]transport.DraftResponse, 0, len(drafts))
	for i := range drafts {
		resp, err := toDraftResponse(&drafts[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}
