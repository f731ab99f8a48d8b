package storage

import (
	"strings"
	"testing"

	"artisan_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestObjectKeyIsUniqueAndKeepsExtension(t *testing.T) {
	id := uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")

	key := objectKey("quotes/u/q", "Kitchen plan.pdf", id)
	if key != "quotes/u/q/Kitchen plan_1b4e28ba.pdf" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestObjectKeyStripsDirectories(t *testing.T) {
	id := uuid.New()

	key := objectKey("quotes/u/q", `..\..\etc/passwd`, id)
	if !strings.HasPrefix(key, "quotes/u/q/passwd_") {
		t.Fatalf("expected key to stay inside the folder, got %q", key)
	}

	key = objectKey("quotes/u/q", "", id)
	if !strings.HasPrefix(key, "quotes/u/q/file_") {
		t.Fatalf("expected fallback name, got %q", key)
	}
}

func TestValidateContentType(t *testing.T) {
	if err := ValidateContentType("application/pdf; charset=binary"); err != nil {
		t.Fatalf("expected pdf to be accepted: %v", err)
	}
	if err := ValidateContentType("IMAGE/JPEG"); err != nil {
		t.Fatalf("expected case-insensitive match: %v", err)
	}
	err := ValidateContentType("application/x-msdownload")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 100); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected empty file to be rejected, got %v", err)
	}
	if err := ValidateFileSize(101, 100); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected oversized file to be rejected, got %v", err)
	}
	if err := ValidateFileSize(100, 100); err != nil {
		t.Fatalf("expected file at the limit to be accepted: %v", err)
	}
}
