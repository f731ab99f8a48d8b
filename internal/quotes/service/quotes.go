package service

import (
	"context"
	"fmt"
	"strings"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"
	"artisan_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const msgConvertedImmutable = "quote has been converted to an invoice and can no longer be changed"

// Create creates a quote with all of its children in one transaction. When
// created as sent, the sent side effects run after the insert.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req transport.CreateQuoteRequest) (*transport.QuoteResponse, error) {
	if userID == uuid.Nil {
		return nil, apperr.Validation("user_id is required")
	}
	if req.ClientID == uuid.Nil {
		return nil, apperr.Validation("client_id is required")
	}
	quoteNumber := clampQuoteNumber(req.QuoteNumber)
	if quoteNumber == "" {
		return nil, apperr.Validation("quote_number is required")
	}

	if _, err := s.repo.GetClient(ctx, req.ClientID, userID); err != nil {
		return nil, err
	}

	total, err := normalizeAmount("totalAmount", req.TotalAmount)
	if err != nil {
		return nil, err
	}
	tax, err := normalizeAmount("taxAmount", req.TaxAmount)
	if err != nil {
		return nil, err
	}
	discount, err := normalizeAmount("discountAmount", req.DiscountAmount)
	if err != nil {
		return nil, err
	}
	final, err := normalizeAmount("finalAmount", req.FinalAmount)
	if err != nil {
		return nil, err
	}
	net, err := normalizeAmountPtr("netAmount", req.NetAmount)
	if err != nil {
		return nil, err
	}

	token, err := newShareToken()
	if err != nil {
		return nil, err
	}

	status := transport.QuoteStatusDraft
	if req.Status != nil && *req.Status == transport.QuoteStatusSent {
		status = transport.QuoteStatusSent
	}

	now := s.now()
	quote := repository.Quote{
		ID:             uuid.New(),
		UserID:         userID,
		ClientID:       req.ClientID,
		LeadID:         req.LeadID,
		ProfileID:      req.ProfileID,
		QuoteNumber:    quoteNumber,
		Title:          sanitize.Truncate(sanitize.Text(req.Title), maxTitleLen),
		Description:    sanitize.TextPtr(nilIfEmpty(req.Description)),
		Status:         string(status),
		ShareToken:     token,
		TotalAmount:    total,
		TaxAmount:      tax,
		DiscountAmount: discount,
		FinalAmount:    final,
		NetAmount:      nullDecimal(net),
		ValidUntil:     nilIfEmpty(req.ValidUntil),
		Notes:          sanitize.TextPtr(nilIfEmpty(req.Notes)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == transport.QuoteStatusSent {
		quote.SentAt = &now
		quote.IsPublic = true
	}

	tasks, err := buildTasks(quote.ID, req.Tasks)
	if err != nil {
		return nil, err
	}
	files := buildFiles(quote.ID, req.Files, now)
	fc, err := encodeFinancialConfig(quote.ID, req.FinancialConfig)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateAggregate(ctx, &quote, repository.Children{
		Tasks:           &tasks,
		Files:           &files,
		FinancialConfig: fc,
	}); err != nil {
		return nil, err
	}

	s.logEvent(ctx, &quote, EventQuoteCreated, map[string]any{"status": quote.Status})

	if status == transport.QuoteStatusSent {
		s.runEffects(ctx, quote.ID, s.sentEffects(&quote, req.EmailOverride))
	}

	s.discardFinalizedDraft(ctx, userID, req.DraftID, req.ProfileID, quoteNumber)

	return s.loadAggregate(ctx, quote.ID, userID)
}

// Update applies a partial update. Provided child collections replace the
// stored ones; a provided status goes through the transition rules.
func (s *Service) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req transport.UpdateQuoteRequest) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if quote.Status == string(transport.QuoteStatusConvertedToInvoice) {
		return nil, apperr.Conflict(msgConvertedImmutable)
	}

	if req.ClientID != nil && *req.ClientID != quote.ClientID {
		if _, err := s.repo.GetClient(ctx, *req.ClientID, userID); err != nil {
			return nil, err
		}
		quote.ClientID = *req.ClientID
	}
	if req.ProfileID != nil {
		quote.ProfileID = req.ProfileID
	}
	if req.QuoteNumber != nil {
		number := clampQuoteNumber(*req.QuoteNumber)
		if number == "" {
			return nil, apperr.Validation("quote_number is required")
		}
		quote.QuoteNumber = number
	}
	if req.Title != nil {
		quote.Title = sanitize.Truncate(sanitize.Text(*req.Title), maxTitleLen)
	}
	if req.Description != nil {
		quote.Description = sanitize.TextPtr(nilIfEmpty(req.Description))
	}
	if err := applyAmounts(quote, req); err != nil {
		return nil, err
	}
	if req.ValidUntil != nil {
		quote.ValidUntil = nilIfEmpty(req.ValidUntil)
	}
	if req.Notes != nil {
		quote.Notes = sanitize.TextPtr(nilIfEmpty(req.Notes))
	}

	now := s.now()
	quote.UpdatedAt = now

	var children repository.Children
	if req.Tasks != nil {
		tasks, err := buildTasks(quote.ID, *req.Tasks)
		if err != nil {
			return nil, err
		}
		children.Tasks = &tasks
	}
	if req.Files != nil {
		files := buildFiles(quote.ID, *req.Files, now)
		children.Files = &files
	}
	if req.FinancialConfig != nil {
		fc, err := encodeFinancialConfig(quote.ID, req.FinancialConfig)
		if err != nil {
			return nil, err
		}
		children.FinancialConfig = fc
	}

	if err := s.repo.UpdateAggregate(ctx, quote, children); err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := s.applyTransition(ctx, quote, *req.Status, req.EmailOverride); err != nil {
			return nil, err
		}
	}

	return s.loadAggregate(ctx, id, userID)
}

func applyAmounts(quote *repository.Quote, req transport.UpdateQuoteRequest) error {
	if v, err := normalizeAmountPtr("totalAmount", req.TotalAmount); err != nil {
		return err
	} else if v != nil {
		quote.TotalAmount = *v
	}
	if v, err := normalizeAmountPtr("taxAmount", req.TaxAmount); err != nil {
		return err
	} else if v != nil {
		quote.TaxAmount = *v
	}
	if v, err := normalizeAmountPtr("discountAmount", req.DiscountAmount); err != nil {
		return err
	} else if v != nil {
		quote.DiscountAmount = *v
	}
	if v, err := normalizeAmountPtr("finalAmount", req.FinalAmount); err != nil {
		return err
	} else if v != nil {
		quote.FinalAmount = *v
	}
	if v, err := normalizeAmountPtr("netAmount", req.NetAmount); err != nil {
		return err
	} else if v != nil {
		quote.NetAmount = nullDecimal(v)
	}
	return nil
}

// Delete removes a quote and its children, then removes its stored files.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	quote, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	files, err := s.repo.ListFiles(ctx, id)
	if err != nil {
		s.log.WithContext(ctx).SideEffectFailed("list_quote_files", id.String(), err)
		files = nil
	}

	if err := s.repo.Delete(ctx, quote.ID, userID); err != nil {
		return err
	}

	if s.files == nil || len(files) == 0 {
		return nil
	}
	effects := make([]effect, 0, len(files))
	for _, f := range files {
		key := f.FileKey
		effects = append(effects, effect{
			name: "delete_file_object",
			run:  func(ctx context.Context) error { return s.files.DeleteObject(ctx, key) },
		})
	}
	s.runEffects(ctx, id, effects)
	return nil
}

// GetByID returns the full quote aggregate. The quote is checked for expiry
// first so an overdue quote is reported as expired when it is opened.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*transport.QuoteResponse, error) {
	if _, err := s.CheckAndUpdateExpiration(ctx, id, userID); err != nil && !apperr.Is(err, apperr.KindNotFound) {
		s.log.WithContext(ctx).SideEffectFailed("expiration_check", id.String(), err)
	}
	return s.loadAggregate(ctx, id, userID)
}

// List returns a page of quote headers
func (s *Service) List(ctx context.Context, userID uuid.UUID, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	params := repository.ListParams{
		UserID:   userID,
		Search:   strings.TrimSpace(req.Search),
		Page:     page,
		PageSize: clampPageSize(req.PageSize),
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, apperr.Validation("invalid clientId")
		}
		params.ClientID = &clientID
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuoteResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toQuoteResponse(&result.Items[i]))
	}

	return &transport.QuoteListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// NextQuoteNumber generates the next quote number for the user
func (s *Service) NextQuoteNumber(ctx context.Context, userID uuid.UUID) (*transport.NextQuoteNumberResponse, error) {
	number, err := s.repo.NextQuoteNumber(ctx, userID, s.now().In(s.loc).Year())
	if err != nil {
		return nil, err
	}
	return &transport.NextQuoteNumberResponse{QuoteNumber: number}, nil
}

// ListEvents returns the audit log of a quote
func (s *Service) ListEvents(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]transport.QuoteEventResponse, error) {
	if _, err := s.repo.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEventResponses(events), nil
}

// loadAggregate re-reads the quote with all of its children and relations.
func (s *Service) loadAggregate(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	var (
		tasks     []repository.Task
		files     []repository.File
		fc        *repository.FinancialConfig
		client    *repository.Client
		profile   *repository.CompanyProfile
		followUps []repository.FollowUp
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.repo.ListTasks(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		files, err = s.repo.ListFiles(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		fc, err = s.repo.GetFinancialConfig(gctx, id)
		return err
	})
	g.Go(func() error {
		c, err := s.repo.GetClient(gctx, quote.ClientID, userID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil
			}
			return err
		}
		client = c
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = s.repo.GetCompanyProfile(gctx, userID, quote.ProfileID)
		return err
	})
	g.Go(func() error {
		var err error
		followUps, err = s.repo.ListFollowUps(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load quote aggregate: %w", err)
	}

	resp := toQuoteResponse(quote)
	resp.Tasks = toTaskResponses(tasks)
	resp.Files = toFileResponses(files)
	resp.FinancialConfig = decodeFinancialConfig(fc)
	resp.Client = toClientSummary(client)
	resp.CompanyProfile = toProfileSummary(profile)
	resp.FollowUps = toFollowUpResponses(followUps)
	return &resp, nil
}

// discardFinalizedDraft removes the draft a committed quote was edited from.
func (s *Service) discardFinalizedDraft(ctx context.Context, userID uuid.UUID, draftID *uuid.UUID, profileID *uuid.UUID, quoteNumber string) {
	var err error
	switch {
	case draftID != nil:
		err = s.repo.DeleteDraft(ctx, *draftID, userID)
	case quoteNumber != "":
		err = s.repo.DeleteDraftByQuoteNumber(ctx, userID, profileID, quoteNumber)
	default:
		return
	}
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		s.log.WithContext(ctx).Warn("draft_cleanup_failed", "quote_number", quoteNumber, "error", err)
	}
}
