// Package storage provides presigned access to the S3-compatible bucket that
// holds quote attachments.
package storage

import (
	"context"
	"time"

	"artisan_backend/platform/config"
)

// PresignedURL contains the URL and metadata for a presigned upload/download operation.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore is the set of bucket operations the quote attachments need.
type ObjectStore interface {
	// GenerateUploadURL creates a presigned PUT URL below folder. The returned
	// key is unique so concurrent uploads of the same file name never collide.
	GenerateUploadURL(ctx context.Context, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)

	// GenerateDownloadURL creates a presigned GET URL for an existing key.
	GenerateDownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error)

	// DeleteObject removes an object. Removing a missing key is not an error.
	DeleteObject(ctx context.Context, fileKey string) error
}

// Config defines the configuration the storage adapter reads.
type Config = config.MinIOConfig
