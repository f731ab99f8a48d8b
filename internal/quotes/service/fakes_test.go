package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"
	"artisan_backend/platform/logger"

	"github.com/google/uuid"
)

// ── Clock ────────────────────────────────────────────────────────────────────

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ── Repository ───────────────────────────────────────────────────────────────

type fakeRepo struct {
	mu sync.Mutex

	quotes     map[uuid.UUID]*repository.Quote
	tasks      map[uuid.UUID][]repository.Task
	files      map[uuid.UUID][]repository.File
	financials map[uuid.UUID]*repository.FinancialConfig
	followUps  map[uuid.UUID][]repository.FollowUp
	events     []repository.QuoteEvent
	shares     map[string]*repository.QuoteShare
	accessLogs []repository.AccessLog
	clients    map[uuid.UUID]*repository.Client
	profiles   []repository.CompanyProfile
	drafts     map[uuid.UUID]*repository.Draft
	counters   map[uuid.UUID]int

	failStop         error
	failEvents       error
	failShare        error
	failUpdateStatus error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quotes:     make(map[uuid.UUID]*repository.Quote),
		tasks:      make(map[uuid.UUID][]repository.Task),
		files:      make(map[uuid.UUID][]repository.File),
		financials: make(map[uuid.UUID]*repository.FinancialConfig),
		followUps:  make(map[uuid.UUID][]repository.FollowUp),
		shares:     make(map[string]*repository.QuoteShare),
		clients:    make(map[uuid.UUID]*repository.Client),
		drafts:     make(map[uuid.UUID]*repository.Draft),
		counters:   make(map[uuid.UUID]int),
	}
}

func (r *fakeRepo) addClient(userID uuid.UUID, name, email string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.clients[id] = &repository.Client{ID: id, UserID: userID, Name: name, Email: &email}
	return id
}

func (r *fakeRepo) addQuote(q repository.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := q
	r.quotes[q.ID] = &cp
}

func (r *fakeRepo) addFollowUp(quoteID uuid.UUID, status string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.followUps[quoteID] = append(r.followUps[quoteID], repository.FollowUp{
		ID:        uuid.New(),
		QuoteID:   quoteID,
		Status:    status,
		Meta:      []byte("{}"),
		CreatedAt: at,
		UpdatedAt: at,
	})
}

func (r *fakeRepo) quote(id uuid.UUID) repository.Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.quotes[id]
}

func (r *fakeRepo) activeFollowUps(quoteID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.followUps[quoteID] {
		if f.Status == string(transport.FollowUpStatusPending) || f.Status == string(transport.FollowUpStatusScheduled) {
			n++
		}
	}
	return n
}

func (r *fakeRepo) eventsOfType(quoteID uuid.UUID, eventType string) []repository.QuoteEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.QuoteEvent
	for _, e := range r.events {
		if e.QuoteID == quoteID && e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeRepo) draftCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

func notFound(msg string) error { return apperr.NotFound(msg) }

func (r *fakeRepo) NextQuoteNumber(_ context.Context, userID uuid.UUID, year int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[userID]++
	return fmt.Sprintf("DEV-%d-%04d", year, r.counters[userID]), nil
}

func (r *fakeRepo) writeChildren(quoteID uuid.UUID, children repository.Children) {
	if children.Tasks != nil {
		r.tasks[quoteID] = append([]repository.Task(nil), *children.Tasks...)
	}
	if children.Files != nil {
		r.files[quoteID] = append([]repository.File(nil), *children.Files...)
	}
	if children.FinancialConfig != nil {
		cp := *children.FinancialConfig
		r.financials[quoteID] = &cp
	}
}

func (r *fakeRepo) CreateAggregate(_ context.Context, quote *repository.Quote, children repository.Children) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.UserID == quote.UserID && q.QuoteNumber == quote.QuoteNumber {
			return apperr.Conflict("quote number already exists")
		}
	}
	cp := *quote
	r.quotes[quote.ID] = &cp
	r.writeChildren(quote.ID, children)
	return nil
}

func (r *fakeRepo) UpdateAggregate(_ context.Context, quote *repository.Quote, children repository.Children) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.quotes[quote.ID]
	if !ok || existing.UserID != quote.UserID {
		return notFound("quote not found")
	}
	status, sentAt, isPublic := existing.Status, existing.SentAt, existing.IsPublic
	cp := *quote
	cp.Status, cp.SentAt, cp.IsPublic = status, sentAt, isPublic
	r.quotes[quote.ID] = &cp
	r.writeChildren(quote.ID, children)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID, userID uuid.UUID) (*repository.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok || q.UserID != userID {
		return nil, notFound("quote not found")
	}
	cp := *q
	return &cp, nil
}

func (r *fakeRepo) GetByShareToken(_ context.Context, token string) (*repository.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.ShareToken == token {
			cp := *q
			return &cp, nil
		}
	}
	return nil, notFound("quote not found")
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) (*repository.ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]repository.Quote, 0)
	for _, q := range r.quotes {
		if q.UserID != params.UserID {
			continue
		}
		if params.Status != nil && q.Status != *params.Status {
			continue
		}
		items = append(items, *q)
	}
	return &repository.ListResult{Items: items, Total: len(items), Page: params.Page, PageSize: params.PageSize, TotalPages: 1}, nil
}

func (r *fakeRepo) ListTasks(_ context.Context, quoteID uuid.UUID) ([]repository.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repository.Task(nil), r.tasks[quoteID]...), nil
}

func (r *fakeRepo) ListFiles(_ context.Context, quoteID uuid.UUID) ([]repository.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repository.File(nil), r.files[quoteID]...), nil
}

func (r *fakeRepo) GetFile(_ context.Context, quoteID, fileID uuid.UUID) (*repository.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files[quoteID] {
		if f.ID == fileID {
			cp := f
			return &cp, nil
		}
	}
	return nil, notFound("file not found")
}

func (r *fakeRepo) GetFinancialConfig(_ context.Context, quoteID uuid.UUID) (*repository.FinancialConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fc, ok := r.financials[quoteID]
	if !ok {
		return nil, nil
	}
	cp := *fc
	return &cp, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, userID uuid.UUID, status string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdateStatus != nil {
		return r.failUpdateStatus
	}
	q, ok := r.quotes[id]
	if !ok || q.UserID != userID {
		return notFound("quote not found")
	}
	q.Status = status
	q.UpdatedAt = now
	return nil
}

func (r *fakeRepo) MarkSent(_ context.Context, id uuid.UUID, userID uuid.UUID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok || q.UserID != userID {
		return notFound("quote not found")
	}
	q.Status = string(transport.QuoteStatusSent)
	q.IsPublic = true
	if q.SentAt == nil {
		t := now
		q.SentAt = &t
	}
	q.UpdatedAt = now
	return nil
}

func (r *fakeRepo) ExpireQuote(_ context.Context, id uuid.UUID, fromStatuses []string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return false, nil
	}
	for _, s := range fromStatuses {
		if q.Status == s {
			q.Status = string(transport.QuoteStatusExpired)
			q.UpdatedAt = now
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ListExpirationCandidates(_ context.Context, userID *uuid.UUID, statuses []string) ([]repository.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Quote
	for _, q := range r.quotes {
		if userID != nil && q.UserID != *userID {
			continue
		}
		if q.ValidUntil == nil || *q.ValidUntil == "" {
			continue
		}
		for _, s := range statuses {
			if q.Status == s {
				out = append(out, *q)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok || q.UserID != userID {
		return notFound("quote not found")
	}
	delete(r.quotes, id)
	delete(r.tasks, id)
	delete(r.files, id)
	delete(r.financials, id)
	delete(r.followUps, id)
	return nil
}

func (r *fakeRepo) StopActiveFollowUps(_ context.Context, quoteID uuid.UUID, reason string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStop != nil {
		return 0, r.failStop
	}
	var n int64
	items := r.followUps[quoteID]
	for i := range items {
		if items[i].Status != string(transport.FollowUpStatusPending) && items[i].Status != string(transport.FollowUpStatusScheduled) {
			continue
		}
		meta := map[string]any{}
		_ = json.Unmarshal(items[i].Meta, &meta)
		meta["reason"] = reason
		meta["stopped_at"] = now.Format(time.RFC3339)
		raw, _ := json.Marshal(meta)
		items[i].Status = string(transport.FollowUpStatusStopped)
		items[i].Meta = raw
		items[i].UpdatedAt = now
		n++
	}
	return n, nil
}

func (r *fakeRepo) ListFollowUps(_ context.Context, quoteID uuid.UUID) ([]repository.FollowUp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repository.FollowUp(nil), r.followUps[quoteID]...), nil
}

func (r *fakeRepo) AppendEvent(_ context.Context, event repository.QuoteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failEvents != nil {
		return r.failEvents
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeRepo) ListEvents(_ context.Context, quoteID uuid.UUID) ([]repository.QuoteEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.QuoteEvent
	for _, e := range r.events {
		if e.QuoteID == quoteID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateShare(_ context.Context, share repository.QuoteShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failShare != nil {
		return r.failShare
	}
	if _, exists := r.shares[share.ShareToken]; exists {
		return nil
	}
	cp := share
	r.shares[share.ShareToken] = &cp
	return nil
}

func (r *fakeRepo) GetShareByToken(_ context.Context, token string) (*repository.QuoteShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[token]
	if !ok {
		return nil, notFound("share not found")
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) RecordShareAccess(_ context.Context, entry repository.AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.shares[entry.ShareToken]; ok {
		s.AccessCount++
		t := entry.AccessedAt
		s.LastAccessedAt = &t
	}
	r.accessLogs = append(r.accessLogs, entry)
	return nil
}

func (r *fakeRepo) GetClient(_ context.Context, id uuid.UUID, userID uuid.UUID) (*repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || c.UserID != userID {
		return nil, notFound("client not found")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) GetCompanyProfile(_ context.Context, userID uuid.UUID, profileID *uuid.UUID) (*repository.CompanyProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.UserID != userID {
			continue
		}
		if profileID != nil && p.ID != *profileID {
			continue
		}
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func sameProfile(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeRepo) findDraftLocked(userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) *repository.Draft {
	for _, d := range r.drafts {
		if d.UserID == userID && sameProfile(d.ProfileID, profileID) && d.QuoteNumber != nil && *d.QuoteNumber == quoteNumber {
			return d
		}
	}
	return nil
}

func (r *fakeRepo) UpdateDraftByID(_ context.Context, id uuid.UUID, userID uuid.UUID, payload []byte, now time.Time) (*repository.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok || d.UserID != userID {
		return nil, notFound("draft not found")
	}
	d.Payload = payload
	d.LastSaved = now
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) FindDraftByKey(_ context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) (*repository.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.findDraftLocked(userID, profileID, quoteNumber)
	if d == nil {
		return nil, notFound("draft not found")
	}
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) UpdateDraftPayload(_ context.Context, id uuid.UUID, payload []byte, now time.Time) (*repository.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return nil, notFound("draft not found")
	}
	d.Payload = payload
	d.LastSaved = now
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) InsertDraft(_ context.Context, d repository.Draft) (*repository.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.QuoteNumber != nil && r.findDraftLocked(d.UserID, d.ProfileID, *d.QuoteNumber) != nil {
		return nil, apperr.Conflict("draft already exists for this quote number")
	}
	cp := d
	r.drafts[d.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) GetDraft(_ context.Context, id uuid.UUID, userID uuid.UUID) (*repository.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok || d.UserID != userID {
		return nil, notFound("draft not found")
	}
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) GetDraftByQuoteNumber(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) (*repository.Draft, error) {
	return r.FindDraftByKey(ctx, userID, profileID, quoteNumber)
}

func (r *fakeRepo) DeleteDraft(_ context.Context, id uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok || d.UserID != userID {
		return notFound("draft not found")
	}
	delete(r.drafts, id)
	return nil
}

func (r *fakeRepo) DeleteDraftByQuoteNumber(_ context.Context, userID uuid.UUID, profileID *uuid.UUID, quoteNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.findDraftLocked(userID, profileID, quoteNumber)
	if d == nil {
		return notFound("draft not found")
	}
	delete(r.drafts, d.ID)
	return nil
}

func (r *fakeRepo) ListDrafts(_ context.Context, userID uuid.UUID, profileID *uuid.UUID) ([]repository.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.Draft, 0)
	for _, d := range r.drafts {
		if d.UserID != userID {
			continue
		}
		if profileID != nil && !sameProfile(d.ProfileID, profileID) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeRepo) ListRecentDrafts(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Draft, error) {
	out, _ := r.ListDrafts(ctx, userID, nil)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Collaborators ────────────────────────────────────────────────────────────

type scheduleCall struct {
	Action          string
	QuoteID         uuid.UUID
	Status          string
	ReplaceExisting bool
}

// fakeScheduler behaves like the external scheduler: every request creates a
// new scheduled follow-up for the quote.
type fakeScheduler struct {
	mu       sync.Mutex
	repo     *fakeRepo
	clock    *testClock
	calls    []scheduleCall
	invoices []uuid.UUID
	fail     error
}

func (f *fakeScheduler) record(call scheduleCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	fail := f.fail
	f.mu.Unlock()
	if fail != nil {
		return fail
	}
	f.repo.addFollowUp(call.QuoteID, string(transport.FollowUpStatusScheduled), f.clock.Now())
	return nil
}

func (f *fakeScheduler) CreateForQuote(_ context.Context, quoteID uuid.UUID, status string, replaceExisting bool) error {
	return f.record(scheduleCall{Action: "create_followup_for_quote", QuoteID: quoteID, Status: status, ReplaceExisting: replaceExisting})
}

func (f *fakeScheduler) MarkQuoteViewed(_ context.Context, quoteID uuid.UUID) error {
	return f.record(scheduleCall{Action: "mark_quote_viewed", QuoteID: quoteID})
}

func (f *fakeScheduler) CreateForInvoice(_ context.Context, invoiceID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices = append(f.invoices, invoiceID)
	return f.fail
}

func (f *fakeScheduler) callsFor(action string) []scheduleCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []scheduleCall
	for _, c := range f.calls {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

type fakeNotifier struct {
	mu      sync.Mutex
	ready   []transport.QuoteNotification
	updated []transport.QuoteNotification
	fail    error
}

func (n *fakeNotifier) QuoteReady(_ context.Context, msg transport.QuoteNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.ready = append(n.ready, msg)
	return nil
}

func (n *fakeNotifier) QuoteUpdated(_ context.Context, msg transport.QuoteNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.updated = append(n.updated, msg)
	return nil
}

type fakeInvoices struct {
	mu        sync.Mutex
	created   []InvoiceParams
	numbers   int
	failWrite error
}

func (f *fakeInvoices) NextInvoiceNumber(_ context.Context, _ uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.numbers++
	return fmt.Sprintf("FAC-2024-%04d", f.numbers), nil
}

func (f *fakeInvoices) CreateInvoice(_ context.Context, p InvoiceParams) (*transport.InvoiceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	for _, c := range f.created {
		if c.QuoteID == p.QuoteID {
			return nil, apperr.Conflict("quote has already been converted to an invoice")
		}
	}
	f.created = append(f.created, p)
	quoteID := p.QuoteID
	quoteNumber := p.QuoteNumber
	notes := p.Notes
	return &transport.InvoiceResponse{
		ID:             uuid.New(),
		UserID:         p.UserID,
		ClientID:       p.ClientID,
		QuoteID:        &quoteID,
		QuoteNumber:    &quoteNumber,
		InvoiceNumber:  p.InvoiceNumber,
		Status:         "unpaid",
		IssueDate:      p.IssueDate.Format("2006-01-02"),
		DueDate:        p.DueDate.Format("2006-01-02"),
		TotalAmount:    p.TotalAmount,
		TaxAmount:      p.TaxAmount,
		DiscountAmount: p.DiscountAmount,
		NetAmount:      p.NetAmount,
		FinalAmount:    p.FinalAmount,
		Notes:          &notes,
	}, nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	scheduler *fakeScheduler
	notifier  *fakeNotifier
	invoices  *fakeInvoices
	clock     *testClock
	userID    uuid.UUID
	clientID  uuid.UUID
}

var errBoom = errors.New("boom")

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{now: time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)}
	repo := newFakeRepo()
	sched := &fakeScheduler{repo: repo, clock: clock}
	notif := &fakeNotifier{}
	inv := &fakeInvoices{}

	svc := New(repo, logger.Discard())
	svc.SetClock(clock.Now)
	svc.SetLocation(time.UTC)
	svc.SetFollowUpScheduler(sched)
	svc.SetNotifier(notif)
	svc.SetInvoiceWriter(inv)

	userID := uuid.New()
	clientID := repo.addClient(userID, "Jean Dupont", "jean@example.com")

	return &fixture{
		svc:       svc,
		repo:      repo,
		scheduler: sched,
		notifier:  notif,
		invoices:  inv,
		clock:     clock,
		userID:    userID,
		clientID:  clientID,
	}
}

func strPtr(s string) *string { return &s }

func (f *fixture) seedQuote(status transport.QuoteStatus, number string, validUntil *string) repository.Quote {
	now := f.clock.Now()
	q := repository.Quote{
		ID:          uuid.New(),
		UserID:      f.userID,
		ClientID:    f.clientID,
		QuoteNumber: number,
		Status:      string(status),
		ShareToken:  uuid.NewString(),
		IsPublic:    status != transport.QuoteStatusDraft,
		ValidUntil:  validUntil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.repo.addQuote(q)
	return q
}
