package database

import (
	"context"
	"datatrans/config"
	"datatrans/models"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_MigratesTranslationTables(t *testing.T) {
	db := openTestDB(t)

	for _, model := range []any{&models.KeyValue{}, &models.FieldWordCount{}, &models.ModelWordCount{}, &models.AppSetting{}} {
		if !db.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
	if !db.Migrator().HasIndex(&models.KeyValue{}, "idx_key_value_natural") {
		t.Fatalf("expected natural key unique index on key_values")
	}
	if !Ping(context.Background(), db) {
		t.Fatalf("expected database to answer ping")
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DatabaseDriver: "oracle", DatabaseURL: "x"}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := GetSetting(db, "missing"); err != nil || ok {
		t.Fatalf("expected missing setting, got ok=%v err=%v", ok, err)
	}
	if err := SetSetting(db, "obsoletes.last_purge", "first"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := SetSetting(db, "obsoletes.last_purge", " second "); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	value, ok, err := GetSetting(db, "obsoletes.last_purge")
	if err != nil || !ok || value != "second" {
		t.Fatalf("unexpected setting: value=%q ok=%v err=%v", value, ok, err)
	}
	if err := DeleteSetting(db, "obsoletes.last_purge"); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if _, ok, _ := GetSetting(db, "obsoletes.last_purge"); ok {
		t.Fatalf("expected setting to be deleted")
	}
	if err := SetSetting(db, "  ", "x"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
