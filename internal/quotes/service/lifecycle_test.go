package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s transport.QuoteStatus) *transport.QuoteStatus { return &s }

func (f *fixture) createQuote(t *testing.T, status transport.QuoteStatus, number string) *transport.QuoteResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.userID, transport.CreateQuoteRequest{
		ClientID:    f.clientID,
		QuoteNumber: number,
		Title:       "Kitchen renovation",
		Status:      statusPtr(status),
		TotalAmount: decimal.RequireFromString("1000"),
		TaxAmount:   decimal.RequireFromString("200"),
		FinalAmount: decimal.RequireFromString("1200"),
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) setStatus(t *testing.T, q *transport.QuoteResponse, status transport.QuoteStatus) *transport.QuoteResponse {
	t.Helper()
	resp, err := f.svc.UpdateStatus(context.Background(), q.ID, f.userID, transport.UpdateQuoteStatusRequest{Status: status})
	require.NoError(t, err)
	return resp
}

func TestCreateAsSentRunsSentEffects(t *testing.T) {
	f := newFixture(t)

	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")

	assert.Equal(t, transport.QuoteStatusSent, q.Status)
	assert.True(t, q.IsPublic)
	require.NotNil(t, q.SentAt)

	calls := f.scheduler.callsFor("create_followup_for_quote")
	require.Len(t, calls, 1)
	assert.Equal(t, "sent", calls[0].Status)
	assert.True(t, calls[0].ReplaceExisting)

	assert.Len(t, f.notifier.ready, 1)
	assert.Empty(t, f.notifier.updated)
	assert.Len(t, f.repo.eventsOfType(q.ID, EventEmailSent), 1)
	assert.Equal(t, 1, f.repo.activeFollowUps(q.ID))

	_, err := f.repo.GetShareByToken(context.Background(), q.ShareToken)
	assert.NoError(t, err)
}

func TestCreateAsDraftHasNoSideEffects(t *testing.T) {
	f := newFixture(t)

	q := f.createQuote(t, transport.QuoteStatusDraft, "DEV-2024-0001")

	assert.Equal(t, transport.QuoteStatusDraft, q.Status)
	assert.Nil(t, q.SentAt)
	assert.Empty(t, f.scheduler.calls)
	assert.Empty(t, f.notifier.ready)
	assert.Len(t, f.repo.eventsOfType(q.ID, EventQuoteCreated), 1)
}

func TestSendingTwiceSendsUpdateInsteadOfReady(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusDraft, "DEV-2024-0001")

	first := f.setStatus(t, q, transport.QuoteStatusSent)
	require.NotNil(t, first.SentAt)
	sentAt := *first.SentAt

	f.clock.Advance(2 * time.Hour)
	second := f.setStatus(t, q, transport.QuoteStatusSent)

	require.NotNil(t, second.SentAt)
	assert.True(t, sentAt.Equal(*second.SentAt), "sent_at must keep the first send time")
	assert.Len(t, f.notifier.ready, 1)
	assert.Len(t, f.notifier.updated, 1)
	assert.Len(t, f.scheduler.callsFor("create_followup_for_quote"), 1)
	assert.Len(t, f.repo.eventsOfType(q.ID, EventQuoteSent), 1)
	assert.Equal(t, 1, f.repo.activeFollowUps(q.ID))
}

func TestAtMostOneActiveFollowUpAcrossTransitions(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusDraft, "DEV-2024-0001")

	steps := []transport.QuoteStatus{
		transport.QuoteStatusSent,
		transport.QuoteStatusViewed,
		transport.QuoteStatusViewed,
		transport.QuoteStatusSent,
		transport.QuoteStatusViewed,
	}
	for _, step := range steps {
		f.setStatus(t, q, step)
		assert.LessOrEqual(t, f.repo.activeFollowUps(q.ID), 1, "after transition to %s", step)
	}

	assert.Len(t, f.scheduler.callsFor("mark_quote_viewed"), 3)
	assert.Len(t, f.scheduler.callsFor("create_followup_for_quote"), 2)
}

func TestViewedStopsPreviousChainWithReason(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")

	resp := f.setStatus(t, q, transport.QuoteStatusViewed)
	assert.Equal(t, transport.QuoteStatusViewed, resp.Status)

	var stopped []transport.FollowUpResponse
	for _, fu := range resp.FollowUps {
		if fu.Status == transport.FollowUpStatusStopped {
			stopped = append(stopped, fu)
		}
	}
	require.Len(t, stopped, 1)
	assert.Equal(t, StopReasonViewed, stopped[0].Meta["reason"])
	assert.Equal(t, 1, f.repo.activeFollowUps(q.ID))
	assert.Len(t, f.repo.eventsOfType(q.ID, EventQuoteViewed), 1)
}

func TestAcceptAndRejectLeaveSchedulerAlone(t *testing.T) {
	for _, target := range []transport.QuoteStatus{transport.QuoteStatusAccepted, transport.QuoteStatusRejected} {
		t.Run(string(target), func(t *testing.T) {
			f := newFixture(t)
			q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")
			callsBefore := len(f.scheduler.calls)

			resp := f.setStatus(t, q, target)

			assert.Equal(t, target, resp.Status)
			assert.Len(t, f.scheduler.calls, callsBefore)

			events := f.repo.eventsOfType(q.ID, EventStatusChanged)
			require.Len(t, events, 1)
			var meta map[string]string
			require.NoError(t, json.Unmarshal(events[0].Meta, &meta))
			assert.Equal(t, "sent", meta["from"])
			assert.Equal(t, string(target), meta["to"])
		})
	}
}

func TestStatusEndpointRejectsSweepAndConversionStates(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")

	for _, target := range []transport.QuoteStatus{transport.QuoteStatusExpired, transport.QuoteStatusConvertedToInvoice, "archived"} {
		_, err := f.svc.UpdateStatus(context.Background(), q.ID, f.userID, transport.UpdateQuoteStatusRequest{Status: target})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "target %s", target)
	}
	assert.Equal(t, "sent", f.repo.quote(q.ID).Status)
}

func TestConvertedQuoteIsImmutable(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuote(transport.QuoteStatusConvertedToInvoice, "DEV-2024-0001", nil)

	_, err := f.svc.UpdateStatus(context.Background(), q.ID, f.userID, transport.UpdateQuoteStatusRequest{Status: transport.QuoteStatusSent})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	title := "New title"
	_, err = f.svc.Update(context.Background(), q.ID, f.userID, transport.UpdateQuoteRequest{Title: &title})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestNotificationFailureDoesNotFailSend(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = errBoom
	q := f.createQuote(t, transport.QuoteStatusDraft, "DEV-2024-0001")

	resp := f.setStatus(t, q, transport.QuoteStatusSent)

	assert.Equal(t, transport.QuoteStatusSent, resp.Status)
	assert.Empty(t, f.repo.eventsOfType(q.ID, EventEmailSent))
	assert.Len(t, f.scheduler.callsFor("create_followup_for_quote"), 1)
}

func TestStopFailureSkipsScheduler(t *testing.T) {
	f := newFixture(t)
	f.repo.failStop = errBoom
	q := f.createQuote(t, transport.QuoteStatusDraft, "DEV-2024-0001")

	resp := f.setStatus(t, q, transport.QuoteStatusSent)

	assert.Equal(t, transport.QuoteStatusSent, resp.Status)
	assert.Empty(t, f.scheduler.callsFor("create_followup_for_quote"))
	assert.Len(t, f.notifier.ready, 1)
}

func TestEmailOverrideIsPassedToNotifier(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusDraft, "DEV-2024-0001")

	override := "billing@example.com"
	_, err := f.svc.UpdateStatus(context.Background(), q.ID, f.userID, transport.UpdateQuoteStatusRequest{
		Status:        transport.QuoteStatusSent,
		EmailOverride: &override,
	})
	require.NoError(t, err)

	require.Len(t, f.notifier.ready, 1)
	require.NotNil(t, f.notifier.ready[0].EmailOverride)
	assert.Equal(t, override, *f.notifier.ready[0].EmailOverride)
	assert.Equal(t, "Jean Dupont", f.notifier.ready[0].ClientName)

	events := f.repo.eventsOfType(q.ID, EventEmailSent)
	require.Len(t, events, 1)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(events[0].Meta, &meta))
	assert.Equal(t, override, meta["recipient"])
}

func TestViewSharedMovesSentQuoteToViewed(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")

	resp, err := f.svc.ViewShared(context.Background(), q.ShareToken, AccessInfo{IPAddress: "203.0.113.7", UserAgent: "test"})
	require.NoError(t, err)

	assert.Equal(t, transport.QuoteStatusViewed, resp.Status)
	assert.Equal(t, "Jean Dupont", resp.ClientName)
	assert.Equal(t, "viewed", f.repo.quote(q.ID).Status)
	assert.Len(t, f.repo.accessLogs, 1)
	assert.Len(t, f.scheduler.callsFor("mark_quote_viewed"), 1)
	assert.Equal(t, 1, f.repo.activeFollowUps(q.ID))
}

func TestViewSharedLeavesAcceptedQuoteAlone(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")
	f.setStatus(t, q, transport.QuoteStatusAccepted)

	resp, err := f.svc.ViewShared(context.Background(), q.ShareToken, AccessInfo{})
	require.NoError(t, err)

	assert.Equal(t, transport.QuoteStatusAccepted, resp.Status)
	assert.Empty(t, f.scheduler.callsFor("mark_quote_viewed"))
}

func TestViewSharedRejectsPrivateAndInactiveLinks(t *testing.T) {
	f := newFixture(t)

	draft := f.seedQuote(transport.QuoteStatusDraft, "DEV-2024-0001", nil)
	_, err := f.svc.ViewShared(context.Background(), draft.ShareToken, AccessInfo{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0002")
	f.repo.mu.Lock()
	f.repo.shares[q.ShareToken].IsActive = false
	f.repo.mu.Unlock()

	_, err = f.svc.ViewShared(context.Background(), q.ShareToken, AccessInfo{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindGone))
}

func TestViewSharedHidesQuoteRevertedToDraft(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")
	f.setStatus(t, q, transport.QuoteStatusDraft)

	stored := f.repo.quote(q.ID)
	require.Equal(t, "draft", stored.Status)
	require.True(t, stored.IsPublic)

	_, err := f.svc.ViewShared(context.Background(), q.ShareToken, AccessInfo{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, f.repo.accessLogs)
	assert.Empty(t, f.scheduler.callsFor("mark_quote_viewed"))
}

func TestCreateFromLeadNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	leadID := uuid.New()

	resp, err := f.svc.Create(context.Background(), f.userID, transport.CreateQuoteRequest{
		ClientID:    f.clientID,
		LeadID:      &leadID,
		QuoteNumber: "DEV-2024-0001",
		Title:       "Kitchen renovation",
		Status:      statusPtr(transport.QuoteStatusSent),
	})
	require.NoError(t, err)
	assert.Equal(t, transport.QuoteStatusSent, resp.Status)

	require.Len(t, f.notifier.ready, 1)
	assert.Empty(t, f.notifier.updated)
	require.NotNil(t, f.notifier.ready[0].LeadID)
	assert.Equal(t, leadID, *f.notifier.ready[0].LeadID)
	assert.Len(t, f.repo.eventsOfType(resp.ID, EventEmailSent), 1)
	assert.Len(t, f.scheduler.callsFor("create_followup_for_quote"), 1)
}

func TestViewSharedClampsAccessLogAddress(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, transport.QuoteStatusSent, "DEV-2024-0001")

	_, err := f.svc.ViewShared(context.Background(), q.ShareToken, AccessInfo{IPAddress: strings.Repeat("1", 100)})
	require.NoError(t, err)

	require.Len(t, f.repo.accessLogs, 1)
	require.NotNil(t, f.repo.accessLogs[0].IPAddress)
	assert.Equal(t, maxIPAddressLen, len(*f.repo.accessLogs[0].IPAddress))
	assert.Nil(t, f.repo.accessLogs[0].UserAgent)
}
