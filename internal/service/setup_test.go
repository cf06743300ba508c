package service

import (
	"path/filepath"
	"testing"

	"clubroster/internal/config"
	"clubroster/internal/db"
	"clubroster/internal/provider"
	"clubroster/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		SessionCookieName: "session_token",
		SessionTTLDays:    90,
		PasswordMinLength: 8,
		ExpiryWindowDays:  60,
		BulkErrorPreview:  10,
	}
}

func newTestService(t *testing.T, exch provider.Exchanger) (*Service, *store.Store) {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "roster.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.ApplyMigrationFile(conn, filepath.Join("..", "..", "migrations", "001_init.sql")); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(conn, "sqlite")
	return New(testConfig(), st, exch), st
}
