package adapters

import (
	"context"
	"testing"
	"time"

	"artisan_backend/internal/adapters/storage"

	"github.com/google/uuid"
)

type recordingStore struct {
	folder  string
	deleted []string
}

func (s *recordingStore) GenerateUploadURL(_ context.Context, folder, fileName, _ string, _ int64) (*storage.PresignedURL, error) {
	s.folder = folder
	return &storage.PresignedURL{URL: "https://minio.local/put", FileKey: folder + "/" + fileName, ExpiresAt: time.Unix(0, 0)}, nil
}

func (s *recordingStore) GenerateDownloadURL(_ context.Context, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://minio.local/get", FileKey: fileKey}, nil
}

func (s *recordingStore) DeleteObject(_ context.Context, fileKey string) error {
	s.deleted = append(s.deleted, fileKey)
	return nil
}

func TestQuotesFileStoreUsesQuoteFolder(t *testing.T) {
	store := &recordingStore{}
	adapter := NewQuotesFileStore(store)
	userID, quoteID := uuid.New(), uuid.New()

	url, err := adapter.GenerateUploadURL(context.Background(), userID, quoteID, "plan.pdf", "application/pdf", 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFolder := "quotes/" + userID.String() + "/" + quoteID.String()
	if store.folder != wantFolder {
		t.Fatalf("expected folder %q, got %q", wantFolder, store.folder)
	}
	if url.FileKey != wantFolder+"/plan.pdf" {
		t.Fatalf("unexpected file key %q", url.FileKey)
	}
}

func TestQuotesFileStoreDeletesByKey(t *testing.T) {
	store := &recordingStore{}
	adapter := NewQuotesFileStore(store)

	if err := adapter.DeleteObject(context.Background(), "quotes/a/b/plan.pdf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "quotes/a/b/plan.pdf" {
		t.Fatalf("unexpected deletes: %#v", store.deleted)
	}
}
