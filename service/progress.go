package service

import (
	"context"
	"datatrans/config"
	"datatrans/models"
	"datatrans/registry"
	"fmt"
	"math"

	"gorm.io/gorm"
)

const statsBatchSize = 500

// Stats is the translation progress of a model.
type Stats struct {
	Percent float64 `json:"percent"`
	Done    int     `json:"done"`
	Total   int     `json:"total"`
}

func newStats(done, total int) Stats {
	if total == 0 {
		return Stats{}
	}
	percent := math.Round(float64(done)*100/float64(total)*100) / 100
	return Stats{Percent: percent, Done: done, Total: total}
}

// LanguageStats is the progress of a model in one target language.
type LanguageStats struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
}

// ModelOverview summarises one registered model.
type ModelOverview struct {
	Slug       string          `json:"slug"`
	Name       string          `json:"model_name"`
	FieldNames []string        `json:"field_names"`
	Stats      Stats           `json:"stats"`
	Words      int             `json:"words"`
	Languages  []LanguageStats `json:"languages"`
}

// Overview lists every registered model with its progress.
type Overview struct {
	Models []ModelOverview `json:"models"`
	Words  int             `json:"words"`
}

// ProgressService computes translation progress.
type ProgressService struct {
	reg          *registry.Registry
	cfg          *config.Config
	translations *TranslationService
	words        *WordCountService
}

// NewProgressService constructs a progress service
func NewProgressService(reg *registry.Registry, cfg *config.Config, translations *TranslationService, words *WordCountService) *ProgressService {
	return &ProgressService{reg: reg, cfg: cfg, translations: translations, words: words}
}

// ModelStats returns the progress of m. Only non-empty translations into a
// language other than the default one are counted, and only while they
// still match the live source text. A translation is done when it is edited
// and not fuzzy. An empty language counts every target language.
func (s *ProgressService) ModelStats(ctx context.Context, m registry.Model, language string) (Stats, error) {
	if language != "" {
		var err error
		if language, err = checkLanguage(s.cfg, language); err != nil {
			return Stats{}, err
		}
	}

	live, err := readLive(ctx, m)
	if err != nil {
		return Stats{}, err
	}
	return s.countStats(ctx, m, language, live)
}

func (s *ProgressService) countStats(ctx context.Context, m registry.Model, language string, live liveSet) (Stats, error) {
	query := s.translations.ForModel(ctx, m, nil).
		Select("id", "object_id", "field", "digest", "edited", "fuzzy").
		Where("language <> ? AND value <> ''", s.cfg.DefaultLanguage)
	if language != "" {
		query = query.Where("language = ?", language)
	}

	done, total := 0, 0
	var batch []models.KeyValue
	res := query.FindInBatches(&batch, statsBatchSize, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			if !live.current(&batch[i]) {
				continue
			}
			total++
			if batch[i].Done() {
				done++
			}
		}
		return nil
	})
	if res.Error != nil {
		return Stats{}, fmt.Errorf("failed to count translations of %s: %w", m.ContentType, res.Error)
	}
	return newStats(done, total), nil
}

// Overview returns the progress and word count of every registered model,
// overall and per target language.
func (s *ProgressService) Overview(ctx context.Context) (*Overview, error) {
	targets := s.cfg.TargetLanguages()
	out := &Overview{Models: []ModelOverview{}}

	for _, m := range s.reg.Models() {
		live, err := readLive(ctx, m)
		if err != nil {
			return nil, err
		}

		entry := ModelOverview{
			Slug:      m.Slug(),
			Name:      m.VerboseName,
			Languages: make([]LanguageStats, 0, len(targets)),
		}
		for _, f := range m.Fields {
			entry.FieldNames = append(entry.FieldNames, f.VerboseName)
		}

		if entry.Stats, err = s.countStats(ctx, m, "", live); err != nil {
			return nil, err
		}
		for _, lang := range targets {
			stats, err := s.countStats(ctx, m, lang.Code, live)
			if err != nil {
				return nil, err
			}
			entry.Languages = append(entry.Languages, LanguageStats{Code: lang.Code, Name: lang.Name, Stats: stats})
		}
		if entry.Words, err = s.words.CountModelWords(ctx, m); err != nil {
			return nil, err
		}

		out.Words += entry.Words
		out.Models = append(out.Models, entry)
	}
	return out, nil
}
