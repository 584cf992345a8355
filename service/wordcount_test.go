package service

import (
	"datatrans/models"
	"errors"
	"testing"
)

func TestCountFieldWords_FollowsSource(t *testing.T) {
	env := newTestEnv(t, article{ID: 1, Title: "Hello world", Body: "One two three"})
	words := env.svc.WordCounts

	n, err := words.CountFieldWords(ctx, env.model, "title")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 words, got %d err=%v", n, err)
	}

	env.setSource(t, 1, "title", "Hello")
	if n, _ = words.CountFieldWords(ctx, env.model, "title"); n != 1 {
		t.Fatalf("expected recount after source change, got %d", n)
	}

	if _, err := words.CountFieldWords(ctx, env.model, "summary"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown field, got %v", err)
	}
}

func TestCountFieldWords_UsesCache(t *testing.T) {
	env := newTestEnv(t, article{ID: 1, Title: "Hello world"})
	words := env.svc.WordCounts

	if _, err := words.CountFieldWords(ctx, env.model, "title"); err != nil {
		t.Fatalf("CountFieldWords: %v", err)
	}
	env.db.Model(&models.FieldWordCount{}).Where("content_type = ? AND field = ?", "blog.article", "title").Update("total_words", 42)

	if n, _ := words.CountFieldWords(ctx, env.model, "title"); n != 42 {
		t.Fatalf("expected cached count, got %d", n)
	}

	if err := words.Invalidate(ctx, "blog.article"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n, _ := words.CountFieldWords(ctx, env.model, "title"); n != 2 {
		t.Fatalf("expected recount after invalidation, got %d", n)
	}
}

func TestCountModelWords(t *testing.T) {
	env := newTestEnv(t,
		article{ID: 1, Title: "Hello world", Body: "One two three"},
		article{ID: 2, Title: "Bye", Body: "  "},
	)
	words := env.svc.WordCounts

	n, err := words.CountModelWords(ctx, env.model)
	if err != nil || n != 6 {
		t.Fatalf("expected 6 words, got %d err=%v", n, err)
	}

	var cached models.ModelWordCount
	if err := env.db.Where("content_type = ?", "blog.article").First(&cached).Error; err != nil {
		t.Fatalf("expected cached model count: %v", err)
	}
	if !cached.Valid || cached.TotalWords != 6 || len(cached.Digest) != 40 {
		t.Fatalf("unexpected cached row: %+v", cached)
	}

	env.setSource(t, 2, "body", "now four words here")
	if n, _ = words.CountModelWords(ctx, env.model); n != 10 {
		t.Fatalf("expected 10 words after edit, got %d", n)
	}
}
