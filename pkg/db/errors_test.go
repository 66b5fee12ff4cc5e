package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_products_sku"}
	wrapped := fmt.Errorf("insert product: %w", pgErr)

	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected unique violation to be detected")
	}
	if !IsUniqueViolation(wrapped, "sku") {
		t.Fatal("expected constraint name match")
	}
	if IsUniqueViolation(wrapped, "username") {
		t.Fatal("unexpected match for unrelated constraint")
	}

	other := &pgconn.PgError{Code: "23503"}
	if IsUniqueViolation(other, "") {
		t.Fatal("foreign key violation must not read as unique violation")
	}
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: products.sku")
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected sqlite unique violation to be detected")
	}
	if !IsUniqueViolation(err, "sku") {
		t.Fatal("expected sqlite constraint match")
	}
	if IsUniqueViolation(errors.New("database is locked"), "") {
		t.Fatal("unrelated sqlite error must not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
}
