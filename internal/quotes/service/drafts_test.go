package service

import (
	"context"
	"testing"
	"time"

	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDraftUpsertsByNaturalKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profileID := uuid.New()
	number := "DEV-2024-0003"

	first, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{
		ProfileID:   &profileID,
		QuoteNumber: &number,
		Payload:     transport.DraftPayload{Title: "First"},
	})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	second, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{
		ProfileID:   &profileID,
		QuoteNumber: &number,
		Payload:     transport.DraftPayload{Title: "Second"},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.repo.draftCount())

	loaded, err := f.svc.LoadDraftByQuoteNumber(ctx, f.userID, &profileID, number)
	require.NoError(t, err)
	assert.Equal(t, "Second", loaded.Payload.Title)
	assert.True(t, loaded.LastSaved.After(first.LastSaved))
}

func TestSaveDraftKeysIncludeProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	number := "DEV-2024-0003"
	profileID := uuid.New()

	_, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{QuoteNumber: &number, Payload: transport.DraftPayload{Title: "No profile"}})
	require.NoError(t, err)
	_, err = f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{ProfileID: &profileID, QuoteNumber: &number, Payload: transport.DraftPayload{Title: "Profile"}})
	require.NoError(t, err)
	_, err = f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{QuoteNumber: &number, Payload: transport.DraftPayload{Title: "No profile again"}})
	require.NoError(t, err)

	assert.Equal(t, 2, f.repo.draftCount())

	loaded, err := f.svc.LoadDraftByQuoteNumber(ctx, f.userID, nil, number)
	require.NoError(t, err)
	assert.Equal(t, "No profile again", loaded.Payload.Title)
}

func TestSaveDraftByIDFallsBackToKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	number := "DEV-2024-0004"

	saved, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{QuoteNumber: &number, Payload: transport.DraftPayload{Title: "v1"}})
	require.NoError(t, err)

	byID, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{ID: &saved.ID, Payload: transport.DraftPayload{Title: "v2"}})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byID.ID)
	assert.Equal(t, "v2", byID.Payload.Title)

	unknown := uuid.New()
	fallback, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{ID: &unknown, QuoteNumber: &number, Payload: transport.DraftPayload{Title: "v3"}})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, fallback.ID)
	assert.Equal(t, "v3", fallback.Payload.Title)
	assert.Equal(t, 1, f.repo.draftCount())
}

func TestSaveDraftWithoutQuoteNumberAlwaysInserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{Payload: transport.DraftPayload{Title: "scratch"}})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.repo.draftCount())

	recent, err := f.svc.LoadRecentDrafts(ctx, f.userID, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSaveDraftRequiresUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SaveDraft(context.Background(), uuid.Nil, transport.SaveDraftRequest{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteDraftByQuoteNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	number := "DEV-2024-0005"

	_, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{QuoteNumber: &number})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteDraftByQuoteNumber(ctx, f.userID, nil, number))
	assert.Equal(t, 0, f.repo.draftCount())

	err = f.svc.DeleteDraftByQuoteNumber(ctx, f.userID, nil, number)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDraftsAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.SaveDraft(ctx, f.userID, transport.SaveDraftRequest{Payload: transport.DraftPayload{Title: "mine"}})
	require.NoError(t, err)

	_, err = f.svc.LoadDraft(ctx, saved.ID, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	other, err := f.svc.ListDrafts(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, other)
}
