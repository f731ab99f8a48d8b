package service

import (
	"context"

	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
)

const msgStorageDisabled = "file storage is not configured"

// PresignFileUpload returns an upload URL for a new attachment of the quote.
// The attachment is linked to the quote when the quote is next saved.
func (s *Service) PresignFileUpload(ctx context.Context, id uuid.UUID, userID uuid.UUID, req transport.PresignFileRequest) (*transport.PresignedURL, error) {
	if s.files == nil {
		return nil, apperr.Internal(msgStorageDisabled)
	}
	if _, err := s.repo.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.files.GenerateUploadURL(ctx, userID, id, req.FileName, req.ContentType, req.SizeBytes)
}

// FileDownloadURL returns a download URL for an attachment of the quote
func (s *Service) FileDownloadURL(ctx context.Context, id uuid.UUID, fileID uuid.UUID, userID uuid.UUID) (*transport.PresignedURL, error) {
	if s.files == nil {
		return nil, apperr.Internal(msgStorageDisabled)
	}
	if _, err := s.repo.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	file, err := s.repo.GetFile(ctx, id, fileID)
	if err != nil {
		return nil, err
	}
	return s.files.GenerateDownloadURL(ctx, file.FileKey)
}
