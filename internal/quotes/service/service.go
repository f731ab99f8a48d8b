package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/logger"

	"github.com/google/uuid"
)

// Event types written to the quote audit log.
const (
	EventQuoteCreated   = "quote_created"
	EventQuoteSent      = "quote_sent"
	EventEmailSent      = "email_sent"
	EventQuoteViewed    = "quote_viewed"
	EventStatusChanged  = "status_changed"
	EventQuoteExpired   = "quote_expired"
	EventQuoteConverted = "quote_converted"
)

// Reasons stamped on stopped follow-ups.
const (
	StopReasonReplaced  = "replaced_with_new_followup"
	StopReasonViewed    = "quote_viewed_status_change"
	StopReasonExpired   = "quote_expired"
	StopReasonConverted = "quote_converted_to_invoice"
)

const shareTokenBytes = 32

// Service provides business logic for quotes
type Service struct {
	repo      Repository
	followUps FollowUpScheduler // optional: nil skips scheduler calls
	notifier  Notifier          // optional: nil skips client emails
	invoices  InvoiceWriter     // required for conversion
	files     FileStore         // optional: nil disables attachments
	log       *logger.Logger
	loc       *time.Location
	now       func() time.Time
}

// New creates a new quotes service
func New(repo Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo: repo,
		log:  log,
		loc:  time.Local,
		now:  time.Now,
	}
}

// SetFollowUpScheduler injects the follow-up scheduler client.
func (s *Service) SetFollowUpScheduler(f FollowUpScheduler) {
	s.followUps = f
}

// SetNotifier injects the notification dispatcher.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetInvoiceWriter injects the invoice writer (set after construction to break circular deps).
func (s *Service) SetInvoiceWriter(w InvoiceWriter) {
	s.invoices = w
}

// SetFileStore injects the attachment storage.
func (s *Service) SetFileStore(f FileStore) {
	s.files = f
}

// SetLocation sets the timezone used to decide what "today" is.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// SetClock replaces the wall clock. Used by tests and the one-shot sweeper.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// today returns midnight of the current day in the configured location.
func (s *Service) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

// ── Best-effort effects ──────────────────────────────────────────────────────

// effect is a named side effect that runs after the authoritative write.
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// runEffects runs every effect in order. A failing effect is logged and the
// remaining ones still run. It returns the names of the effects that failed.
func (s *Service) runEffects(ctx context.Context, quoteID uuid.UUID, effects []effect) []string {
	var failed []string
	for _, e := range effects {
		if err := e.run(ctx); err != nil {
			s.log.WithContext(ctx).SideEffectFailed(e.name, quoteID.String(), err)
			failed = append(failed, e.name)
		}
	}
	return failed
}

// replaceFollowUpChain stops every active follow-up of the quote and only then
// asks the scheduler for a new one. When stopping fails the scheduler is not
// called, so two chains can never be active at once.
func (s *Service) replaceFollowUpChain(ctx context.Context, quoteID uuid.UUID, reason string, schedule func(ctx context.Context, f FollowUpScheduler) error) error {
	if _, err := s.repo.StopActiveFollowUps(ctx, quoteID, reason, s.now()); err != nil {
		return fmt.Errorf("stop active follow-ups: %w", err)
	}
	if s.followUps == nil {
		return nil
	}
	return schedule(ctx, s.followUps)
}

// logEvent appends an audit event. Failures are logged and reported as false.
func (s *Service) logEvent(ctx context.Context, quote *repository.Quote, eventType string, meta map[string]any) bool {
	if err := s.appendEvent(ctx, quote, eventType, meta); err != nil {
		s.log.WithContext(ctx).SideEffectFailed("quote_event:"+eventType, quote.ID.String(), err)
		return false
	}
	return true
}

func (s *Service) appendEvent(ctx context.Context, quote *repository.Quote, eventType string, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal event meta: %w", err)
	}
	return s.repo.AppendEvent(ctx, repository.QuoteEvent{
		ID:        uuid.New(),
		QuoteID:   quote.ID,
		UserID:    quote.UserID,
		Type:      eventType,
		Meta:      raw,
		CreatedAt: s.now(),
	})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func nilIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toPtr[T any](v T) *T {
	return &v
}

func clampPageSize(size int) int {
	if size <= 0 {
		return 50
	}
	if size > 100 {
		return 100
	}
	return size
}

func isExpirable(status string) bool {
	switch transport.QuoteStatus(status) {
	case transport.QuoteStatusSent, transport.QuoteStatusViewed, transport.QuoteStatusDraft:
		return true
	}
	return false
}
