package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPgError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected unique violation match")
	}
	if !IsUniqueViolation(err, "users_email_key") {
		t.Fatal("expected constraint-scoped match")
	}
	if IsUniqueViolation(err, "products_slug_key") {
		t.Fatal("expected mismatch for other constraint")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation should not match")
	}
}

func TestIsUniqueViolationPlainText(t *testing.T) {
	t.Parallel()

	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: products.slug"), "") {
		t.Fatal("expected sqlite text match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should never match")
	}
}
