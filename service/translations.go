package service

import (
	"context"
	"datatrans/config"
	"datatrans/digest"
	"datatrans/models"
	"datatrans/registry"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Owner identifies the object a translated field belongs to.
type Owner struct {
	ContentType string
	ObjectID    int64
}

// TranslationService stores translations keyed by the digest of their source text.
type TranslationService struct {
	db  *gorm.DB
	reg *registry.Registry
	cfg *config.Config
	log zerolog.Logger
}

// NewTranslationService constructs a translation service
func NewTranslationService(db *gorm.DB, reg *registry.Registry, cfg *config.Config, logger zerolog.Logger) *TranslationService {
	return &TranslationService{db: db, reg: reg, cfg: cfg, log: logger}
}

// GetOrCreate returns the translation of source into language for the given
// field, creating it on first use. New rows in the default language hold the
// source text itself; other languages start empty unless fuzzy carry-over is
// enabled and an older translation of the field exists.
func (s *TranslationService) GetOrCreate(ctx context.Context, source, language string, owner Owner, field string) (*models.KeyValue, error) {
	kv, _, err := s.getOrCreate(ctx, source, language, owner, field)
	return kv, err
}

func (s *TranslationService) getOrCreate(ctx context.Context, source, language string, owner Owner, field string) (*models.KeyValue, bool, error) {
	language, err := checkLanguage(s.cfg, language)
	if err != nil {
		return nil, false, err
	}

	d := digest.Of(source)
	db := s.db.WithContext(ctx)

	kv, err := findByNaturalKey(db, language, owner, field, d)
	if err == nil {
		return kv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to get translation: %w", err)
	}

	objectID := owner.ObjectID
	row := models.KeyValue{
		ContentType: owner.ContentType,
		ObjectID:    &objectID,
		Field:       field,
		Language:    language,
		Digest:      d,
	}
	if language == s.cfg.DefaultLanguage {
		row.Value = source
	} else if s.cfg.FuzzyCarryOver {
		if prev, ok := s.previousValue(db, language, owner, field, d); ok {
			row.Value = prev
			row.Fuzzy = true
		}
	}

	kv, created, err := insertIfAbsent(db, &row)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Debug().
			Str("content_type", owner.ContentType).
			Int64("object_id", owner.ObjectID).
			Str("field", field).
			Str("language", language).
			Bool("fuzzy", row.Fuzzy).
			Msg("translation created")
	}
	return kv, created, nil
}

// insertIfAbsent inserts row unless its natural key already exists and
// returns the stored row either way. A concurrent caller may insert the same
// key first; the re-read returns its row.
func insertIfAbsent(db *gorm.DB, row *models.KeyValue) (*models.KeyValue, bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create translation: %w", res.Error)
	}

	owner := Owner{ContentType: row.ContentType, ObjectID: *row.ObjectID}
	kv, err := findByNaturalKey(db, row.Language, owner, row.Field, row.Digest)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get translation: %w", err)
	}
	return kv, res.RowsAffected > 0, nil
}

func findByNaturalKey(db *gorm.DB, language string, owner Owner, field, d string) (*models.KeyValue, error) {
	var kv models.KeyValue
	err := db.
		Where("language = ? AND content_type = ? AND field = ? AND object_id = ? AND digest = ?",
			language, owner.ContentType, field, owner.ObjectID, d).
		First(&kv).Error
	if err != nil {
		return nil, err
	}
	return &kv, nil
}

func (s *TranslationService) previousValue(db *gorm.DB, language string, owner Owner, field, d string) (string, bool) {
	var prev models.KeyValue
	err := db.
		Where("language = ? AND content_type = ? AND field = ? AND object_id = ? AND digest <> ? AND value <> ''",
			language, owner.ContentType, field, owner.ObjectID, d).
		Order("updated_at DESC").
		Order("id DESC").
		First(&prev).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Str("field", field).Msg("fuzzy carry-over lookup failed")
		}
		return "", false
	}
	return prev.Value, true
}

// ForModel returns a query over the translations of m restricted to fields.
// A nil fields slice selects every registered field of m.
func (s *TranslationService) ForModel(ctx context.Context, m registry.Model, fields []string) *gorm.DB {
	if fields == nil {
		if fields = s.reg.Fields(m.Slug()); fields == nil {
			fields = m.FieldNames()
		}
	}
	return s.db.WithContext(ctx).
		Model(&models.KeyValue{}).
		Where("content_type = ? AND field IN ?", m.ContentType, fields)
}

// Get fetches a translation by ID
func (s *TranslationService) Get(ctx context.Context, id uint) (*models.KeyValue, error) {
	return getKeyValue(s.db.WithContext(ctx), id)
}

func getKeyValue(db *gorm.DB, id uint) (*models.KeyValue, error) {
	var kv models.KeyValue
	if err := db.First(&kv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapSentinel(fmt.Sprintf("translation not found: %d", id), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get translation: %w", err)
	}
	return &kv, nil
}

// Commit applies a translator's submission to one translation.
//
// An empty value is only stored when empty is set. ignore accepts the
// current value as is. Either way the fuzzy flag is cleared and the
// translation is marked edited. It reports whether the row was saved.
func (s *TranslationService) Commit(ctx context.Context, id uint, value string, empty, ignore bool) (bool, error) {
	return commitOne(s.db.WithContext(ctx), id, value, empty, ignore)
}

func commitOne(db *gorm.DB, id uint, value string, empty, ignore bool) (bool, error) {
	kv, err := getKeyValue(db, id)
	if err != nil {
		return false, err
	}
	if !applyCommit(kv, value, empty, ignore) {
		return false, nil
	}
	if err := db.Model(kv).Select("value", "fuzzy", "edited", "updated_at").Updates(kv).Error; err != nil {
		return false, fmt.Errorf("failed to commit translation %d: %w", id, err)
	}
	return true, nil
}

func applyCommit(kv *models.KeyValue, value string, empty, ignore bool) bool {
	if value == "" && !empty && !ignore {
		return false
	}
	if kv.Value != value {
		if !ignore {
			kv.Value = value
		}
		kv.Fuzzy = false
	}
	if ignore {
		kv.Fuzzy = false
	}
	kv.Edited = true
	return true
}

const (
	translationPrefix = "translation_"
	emptyPrefix       = "empty_"
	ignorePrefix      = "ignore_"
)

// CommitForm commits every translation named by a translation_<id>,
// empty_<id> or ignore_<id> key of form in one transaction. A missing
// translation_<id> counts as an empty value. It returns the number of
// translations saved.
func (s *TranslationService) CommitForm(ctx context.Context, form url.Values) (int, error) {
	seen := make(map[uint]bool, len(form))
	ids := make([]uint, 0, len(form))
	for key := range form {
		prefix, ok := formPrefix(key)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(key, prefix), 10, 0)
		if err != nil || id == 0 {
			return 0, wrapSentinel(fmt.Sprintf("invalid form key: %s", key), ErrInvalidRequest)
		}
		if !seen[uint(id)] {
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	saved := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			suffix := strconv.FormatUint(uint64(id), 10)
			_, empty := form[emptyPrefix+suffix]
			_, ignore := form[ignorePrefix+suffix]

			ok, err := commitOne(tx, id, form.Get(translationPrefix+suffix), empty, ignore)
			if err != nil {
				return err
			}
			if ok {
				saved++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

func formPrefix(key string) (string, bool) {
	for _, prefix := range []string{translationPrefix, emptyPrefix, ignorePrefix} {
		if strings.HasPrefix(key, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// MakeMessages makes sure a translation exists for every registered field
// of every object in every configured language. It returns the number of
// translations created.
func (s *TranslationService) MakeMessages(ctx context.Context) (int, error) {
	created := 0
	for _, m := range s.reg.Models() {
		for _, f := range m.Fields {
			values, err := m.Source.Values(ctx, f.Name)
			if err != nil {
				return created, fmt.Errorf("failed to read %s.%s: %w", m.ContentType, f.Name, err)
			}
			for _, v := range values {
				owner := Owner{ContentType: m.ContentType, ObjectID: v.ObjectID}
				for _, lang := range s.cfg.Languages {
					_, ok, err := s.getOrCreate(ctx, v.Text, lang.Code, owner, f.Name)
					if err != nil {
						return created, err
					}
					if ok {
						created++
					}
				}
			}
		}
	}

	s.log.Info().Int("created", created).Int("models", s.reg.Len()).Msg("messages made")
	return created, nil
}
