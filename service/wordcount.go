package service

import (
	"context"
	"datatrans/digest"
	"datatrans/models"
	"datatrans/registry"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WordCountService caches source word counts per field and per model. A
// cached count is reused while its digest matches the live source text.
type WordCountService struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewWordCountService constructs a word count service
func NewWordCountService(db *gorm.DB, logger zerolog.Logger) *WordCountService {
	return &WordCountService{db: db, log: logger}
}

// CountFieldWords returns the number of words in field across all objects of m.
func (s *WordCountService) CountFieldWords(ctx context.Context, m registry.Model, field string) (int, error) {
	if _, ok := m.Field(field); !ok {
		return 0, wrapSentinel(fmt.Sprintf("unknown field: %s.%s", m.ContentType, field), ErrNotFound)
	}
	words, _, err := s.fieldWords(ctx, m, field)
	return words, err
}

// CountModelWords returns the number of words across all translatable fields of m.
func (s *WordCountService) CountModelWords(ctx context.Context, m registry.Model) (int, error) {
	total := 0
	parts := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		words, fingerprint, err := s.fieldWords(ctx, m, f.Name)
		if err != nil {
			return 0, err
		}
		total += words
		parts = append(parts, f.Name+":"+fingerprint)
	}
	fingerprint := digest.Combine(parts...)

	db := s.db.WithContext(ctx)
	var cached models.ModelWordCount
	err := db.Where("content_type = ?", m.ContentType).First(&cached).Error
	switch {
	case err == nil && cached.Valid && cached.Digest == fingerprint:
		return cached.TotalWords, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, fmt.Errorf("failed to read model word count: %w", err)
	}

	row := models.ModelWordCount{ContentType: m.ContentType, TotalWords: total, Valid: true, Digest: fingerprint}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_words", "valid", "digest", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to store model word count: %w", err)
	}

	s.log.Debug().Str("content_type", m.ContentType).Int("words", total).Msg("model words counted")
	return total, nil
}

// fieldWords returns the word count of field and the fingerprint of its live values.
func (s *WordCountService) fieldWords(ctx context.Context, m registry.Model, field string) (int, string, error) {
	values, err := m.Source.Values(ctx, field)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read %s.%s: %w", m.ContentType, field, err)
	}
	fingerprint := valuesFingerprint(values)

	db := s.db.WithContext(ctx)
	var cached models.FieldWordCount
	err = db.Where("content_type = ? AND field = ?", m.ContentType, field).First(&cached).Error
	switch {
	case err == nil && cached.Valid && cached.Digest == fingerprint:
		return cached.TotalWords, fingerprint, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, "", fmt.Errorf("failed to read field word count: %w", err)
	}

	total := 0
	for _, v := range values {
		total += countWords(v.Text)
	}

	row := models.FieldWordCount{ContentType: m.ContentType, Field: field, TotalWords: total, Valid: true, Digest: fingerprint}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_type"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_words", "valid", "digest", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return 0, "", fmt.Errorf("failed to store field word count: %w", err)
	}

	s.log.Debug().Str("content_type", m.ContentType).Str("field", field).Int("words", total).Msg("field words counted")
	return total, fingerprint, nil
}

// Invalidate forces the next count of contentType to be recomputed.
func (s *WordCountService) Invalidate(ctx context.Context, contentType string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FieldWordCount{}).Where("content_type = ?", contentType).Update("valid", false).Error; err != nil {
			return fmt.Errorf("failed to invalidate field word counts: %w", err)
		}
		if err := tx.Model(&models.ModelWordCount{}).Where("content_type = ?", contentType).Update("valid", false).Error; err != nil {
			return fmt.Errorf("failed to invalidate model word count: %w", err)
		}
		return nil
	})
}

func valuesFingerprint(values []registry.FieldValue) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v.ObjectID, 10) + ":" + digest.Of(v.Text)
	}
	return digest.Combine(parts...)
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
