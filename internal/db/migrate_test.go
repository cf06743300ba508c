package db

import (
	"path/filepath"
	"testing"
)

func TestApplyMigrationFileIdempotent(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "roster.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	migration := filepath.Join("..", "..", "migrations", "001_init.sql")
	if err := ApplyMigrationFile(conn, migration); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplyMigrationFile(conn, migration); err != nil {
		t.Fatalf("second apply should be a no-op: %v", err)
	}

	for _, table := range []string{"users", "sessions", "members", "vehicles", "vehicle_options"} {
		var n int
		if err := conn.QueryRow("SELECT COUNT(1) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("table %s missing after migration: %v", table, err)
		}
	}
}

func TestSplitStatementsDropsComments(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (x INTEGER);\n\n-- trailing\nCREATE INDEX i ON a(x);")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
	}
}
