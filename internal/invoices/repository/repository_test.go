package repository

import (
	"errors"
	"fmt"
	"testing"

	"artisan_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapInsertErrorQuoteAlreadyConverted(t *testing.T) {
	err := mapInsertError(fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: quoteUniqueConstraint}))

	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "quote has already been converted to an invoice" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestMapInsertErrorDuplicateNumber(t *testing.T) {
	err := mapInsertError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "invoices_user_id_invoice_number_key"})

	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "invoice number already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestMapInsertErrorWrapsOtherFailures(t *testing.T) {
	cause := errors.New("connection reset")
	err := mapInsertError(cause)

	if apperr.Is(err, apperr.KindConflict) {
		t.Fatal("unexpected conflict")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}
