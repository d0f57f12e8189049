// Package testutil provides shared helpers for integration tests.
// Helpers skip the calling test when TEST_DATABASE_URL is not set, so unit
// tests run without a database.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/appointment-booking/internal/db"
)

// NewPool opens a migrated pool against TEST_DATABASE_URL. The pool is
// closed when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	if err := db.MigrateDSN(context.Background(), dsn); err != nil {
		t.Fatalf("testutil.NewPool: migrate: %v", err)
	}

	pool, err := db.ConnectPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
