package database

import (
	"datatrans/config"
	"net/url"
	"strings"
	"testing"
)

func TestBuildSQLiteDSN_PragmaParams(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  2500,
		SQLiteJournalMode:    "wal",
		SQLiteSynchronous:    "full",
		SQLiteForeignKeys:    false,
	}

	query, err := url.ParseQuery(strings.TrimPrefix(buildSQLiteDSN("datatrans.db", cfg), "datatrans.db?"))
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	got := strings.Join(query["_pragma"], " ")
	if want := "busy_timeout(2500) journal_mode(WAL) synchronous(FULL) foreign_keys(0)"; got != want {
		t.Fatalf("pragmas = %q, want %q", got, want)
	}
}

func TestBuildSQLiteDSN_PreservesExistingQuery(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteForeignKeys:    true,
	}
	dsn := buildSQLiteDSN("datatrans.db?cache=shared", cfg)
	if !strings.Contains(dsn, "cache=shared") {
		t.Fatalf("expected existing query to be preserved, got %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=") {
		t.Fatalf("expected pragma params, got %q", dsn)
	}
}

func TestBuildSQLiteDSN_Disabled(t *testing.T) {
	cfg := &config.Config{SQLitePragmasEnabled: false}
	if dsn := buildSQLiteDSN("datatrans.db", cfg); dsn != "datatrans.db" {
		t.Fatalf("expected bare path without pragmas, got %q", dsn)
	}
}

func TestSanitizeSQLitePoolConfig(t *testing.T) {
	got := sanitizeSQLitePoolConfig(sqlitePoolConfig{maxOpenConns: 0, maxIdleConns: 5, maxIdleSec: -1, maxLifeSec: -10})
	want := sqlitePoolConfig{maxOpenConns: 1, maxIdleConns: 1, maxIdleSec: 0, maxLifeSec: 0}
	if got != want {
		t.Fatalf("sanitizeSQLitePoolConfig = %+v, want %+v", got, want)
	}
}

func TestNormalizeSQLiteJournalMode(t *testing.T) {
	if got := normalizeSQLiteJournalMode(" wal "); got != "WAL" {
		t.Fatalf("expected WAL, got %q", got)
	}
	if got := normalizeSQLiteJournalMode("fast"); got != "" {
		t.Fatalf("expected rejection of unknown mode, got %q", got)
	}
}
