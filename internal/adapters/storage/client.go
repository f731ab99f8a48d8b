package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL is the lifetime of every presigned URL.
const PresignedURLTTL = 15 * time.Minute

// MinIOService implements ObjectStore on a single MinIO bucket.
type MinIOService struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
	now         func() time.Time
}

// NewMinIOService creates a new MinIO storage service bound to the quote files bucket.
func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOService{
		client:      client,
		bucket:      cfg.GetMinioBucketQuoteFiles(),
		maxFileSize: cfg.GetMinIOMaxFileSize(),
		now:         time.Now,
	}, nil
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (s *MinIOService) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// GenerateUploadURL creates a presigned URL for uploading a file.
func (s *MinIOService) GenerateUploadURL(ctx context.Context, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error) {
	if err := ValidateContentType(contentType); err != nil {
		return nil, err
	}
	if err := ValidateFileSize(sizeBytes, s.maxFileSize); err != nil {
		return nil, err
	}

	fileKey := objectKey(folder, fileName, uuid.New())
	expiresAt := s.now().Add(PresignedURLTTL)
	presigned, err := s.client.PresignedPutObject(ctx, s.bucket, fileKey, PresignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}

	return &PresignedURL{URL: presigned.String(), FileKey: fileKey, ExpiresAt: expiresAt}, nil
}

// GenerateDownloadURL creates a presigned URL for downloading a file.
func (s *MinIOService) GenerateDownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error) {
	expiresAt := s.now().Add(PresignedURLTTL)

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(fileKey)))

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, fileKey, PresignedURLTTL, reqParams)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURL{URL: presigned.String(), FileKey: fileKey, ExpiresAt: expiresAt}, nil
}

// DeleteObject removes an object from storage.
func (s *MinIOService) DeleteObject(ctx context.Context, fileKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, fileKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", fileKey, err)
	}
	return nil
}

// objectKey builds "<folder>/<base>_<8 hex chars><ext>" from a user supplied name.
func objectKey(folder, fileName string, id uuid.UUID) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = "file"
	}
	return path.Join(folder, fmt.Sprintf("%s_%s%s", base, id.String()[:8], ext))
}

var _ ObjectStore = (*MinIOService)(nil)
