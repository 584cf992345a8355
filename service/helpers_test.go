package service

import (
	"context"
	"datatrans/config"
	"datatrans/database"
	"datatrans/registry"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type article struct {
	ID    int64
	Title string
	Body  string
}

type testEnv struct {
	db    *gorm.DB
	cfg   *config.Config
	reg   *registry.Registry
	svc   *Services
	model registry.Model
}

func newTestEnv(t *testing.T, articles ...article) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DatabaseDriver:     config.DriverSQLite,
		DatabaseURL:        "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared",
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
		Languages: []config.Language{
			{Code: "en", Name: "English"},
			{Code: "fr", Name: "French"},
			{Code: "nl", Name: "Dutch"},
		},
		DefaultLanguage: "en",
	}
	db, err := database.Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := db.AutoMigrate(&article{}); err != nil {
		t.Fatalf("migrate articles: %v", err)
	}
	if len(articles) > 0 {
		if err := db.Create(&articles).Error; err != nil {
			t.Fatalf("seed articles: %v", err)
		}
	}

	src, err := registry.NewTableSource(db, "articles", "id", "title")
	if err != nil {
		t.Fatalf("NewTableSource: %v", err)
	}
	reg := registry.New()
	err = reg.Register(registry.Model{
		ContentType: "blog.article",
		VerboseName: "article",
		Fields:      []registry.Field{{Name: "title", VerboseName: "Title"}, {Name: "body", VerboseName: "Body"}},
		Source:      src,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	model, _ := reg.Lookup("blog.article")

	return &testEnv{
		db:    db,
		cfg:   cfg,
		reg:   reg,
		svc:   New(db, reg, cfg, zerolog.Nop()),
		model: model,
	}
}

func (e *testEnv) setSource(t *testing.T, id int64, field, text string) {
	t.Helper()
	if err := e.db.Model(&article{}).Where("id = ?", id).Update(field, text).Error; err != nil {
		t.Fatalf("update article %d: %v", id, err)
	}
}

func owner(id int64) Owner {
	return Owner{ContentType: "blog.article", ObjectID: id}
}

var ctx = context.Background()
