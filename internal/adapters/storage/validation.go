package storage

import (
	"strings"

	"artisan_backend/platform/apperr"
)

// allowedContentTypes are the MIME types accepted for quote attachments.
var allowedContentTypes = map[string]bool{
	"image/jpeg":                                                              true,
	"image/png":                                                               true,
	"image/gif":                                                               true,
	"image/webp":                                                              true,
	"image/heic":                                                              true,
	"application/pdf":                                                         true,
	"application/msword":                                                      true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel":                                                true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"application/dxf":                                                         true,
	"image/vnd.dwg":                                                           true,
	"text/plain":                                                              true,
	"text/csv":                                                                true,
}

// ValidateContentType checks if the content type is allowed.
func ValidateContentType(contentType string) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !allowedContentTypes[normalized] {
		return apperr.Validationf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize checks if the file size is within limits.
func ValidateFileSize(sizeBytes, maxFileSize int64) error {
	if sizeBytes <= 0 {
		return apperr.Validation("file size must be greater than 0")
	}
	if maxFileSize > 0 && sizeBytes > maxFileSize {
		return apperr.Validationf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxFileSize)
	}
	return nil
}
