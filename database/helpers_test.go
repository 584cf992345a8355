package database

import (
	"datatrans/config"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	settings := &config.Config{
		DatabaseDriver:       config.DriverSQLite,
		DatabaseURL:          "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared",
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  1000,
		SQLiteJournalMode:    "MEMORY",
		SQLiteForeignKeys:    true,
		SQLiteMaxOpenConns:   1,
		SQLiteMaxIdleConns:   1,
	}
	db, err := Open(settings, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}
