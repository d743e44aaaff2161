// Package testutil provides a hermetic in-memory database for tests.
package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"blocktek-radio/internal/repository"
)

// NewTestDB opens a fresh in-memory SQLite database with the full schema
// applied. The pool is limited to one connection so every statement sees the
// same memory database.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := repository.MigrateDB(db, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
