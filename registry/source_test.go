package registry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type article struct {
	ID    int64
	Title string
	Body  *string
}

func openHostDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&article{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	body := "Hello world"
	rows := []article{{ID: 2, Title: "Second", Body: nil}, {ID: 1, Title: "First", Body: &body}}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func TestTableSource_ReadsHostTable(t *testing.T) {
	db := openHostDB(t)
	ctx := context.Background()

	src, err := NewTableSource(db, "articles", "", "title")
	if err != nil {
		t.Fatalf("NewTableSource: %v", err)
	}

	objects, err := src.Objects(ctx)
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	if len(objects) != 2 || objects[0] != (Object{ID: 1, Label: "First"}) || objects[1].ID != 2 {
		t.Fatalf("unexpected objects: %+v", objects)
	}

	values, err := src.Values(ctx, "body")
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(values) != 2 || values[0].Text != "Hello world" || values[1].Text != "" {
		t.Fatalf("expected NULL body to read as empty, got %+v", values)
	}

	title, err := src.Value(ctx, 2, "title")
	if err != nil || title != "Second" {
		t.Fatalf("unexpected value: %q err=%v", title, err)
	}
	if _, err := src.Value(ctx, 99, "title"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestTableSource_LabelFallsBackToID(t *testing.T) {
	db := openHostDB(t)

	src, err := NewTableSource(db, "articles", "id", "")
	if err != nil {
		t.Fatalf("NewTableSource: %v", err)
	}
	objects, err := src.Objects(context.Background())
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	if objects[0].Label != "#1" {
		t.Fatalf("expected id label, got %q", objects[0].Label)
	}
}

func TestTableSource_RejectsUnsafeNames(t *testing.T) {
	db := openHostDB(t)

	if _, err := NewTableSource(db, "articles; DROP TABLE x", "", ""); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn for table, got %v", err)
	}
	src, err := NewTableSource(db, "articles", "", "")
	if err != nil {
		t.Fatalf("NewTableSource: %v", err)
	}
	if _, err := src.Values(context.Background(), "title, body"); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn for field, got %v", err)
	}
}

func TestTableSources_UnknownTable(t *testing.T) {
	db := openHostDB(t)
	resolve := TableSources(db)

	if _, err := resolve(TableDeclaration{Table: "pages"}); err == nil {
		t.Fatalf("expected error for missing table")
	}
	if _, err := resolve(TableDeclaration{Table: "articles"}); err != nil {
		t.Fatalf("expected articles to resolve, got %v", err)
	}
}
