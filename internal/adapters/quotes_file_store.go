package adapters

import (
	"context"
	"fmt"

	"artisan_backend/internal/adapters/storage"
	quotesvc "artisan_backend/internal/quotes/service"
	"artisan_backend/internal/quotes/transport"

	"github.com/google/uuid"
)

// QuotesFileStore adapts object storage for quote attachments.
// It implements quotesvc.FileStore.
type QuotesFileStore struct {
	store storage.ObjectStore
}

// NewQuotesFileStore creates a new quote attachment store.
func NewQuotesFileStore(store storage.ObjectStore) *QuotesFileStore {
	return &QuotesFileStore{store: store}
}

// quoteFolder is the key prefix of every attachment of a quote.
func quoteFolder(userID, quoteID uuid.UUID) string {
	return fmt.Sprintf("quotes/%s/%s", userID, quoteID)
}

// GenerateUploadURL issues a presigned upload URL under the quote's folder.
func (a *QuotesFileStore) GenerateUploadURL(ctx context.Context, userID, quoteID uuid.UUID, fileName, contentType string, sizeBytes int64) (*transport.PresignedURL, error) {
	presigned, err := a.store.GenerateUploadURL(ctx, quoteFolder(userID, quoteID), fileName, contentType, sizeBytes)
	if err != nil {
		return nil, err
	}
	return toPresigned(presigned), nil
}

// GenerateDownloadURL issues a presigned download URL for a stored attachment.
func (a *QuotesFileStore) GenerateDownloadURL(ctx context.Context, fileKey string) (*transport.PresignedURL, error) {
	presigned, err := a.store.GenerateDownloadURL(ctx, fileKey)
	if err != nil {
		return nil, err
	}
	return toPresigned(presigned), nil
}

// DeleteObject removes a stored attachment.
func (a *QuotesFileStore) DeleteObject(ctx context.Context, fileKey string) error {
	return a.store.DeleteObject(ctx, fileKey)
}

func toPresigned(p *storage.PresignedURL) *transport.PresignedURL {
	return &transport.PresignedURL{URL: p.URL, FileKey: p.FileKey, ExpiresAt: p.ExpiresAt}
}

// Compile-time check that QuotesFileStore implements quotesvc.FileStore.
var _ quotesvc.FileStore = (*QuotesFileStore)(nil)
