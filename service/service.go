package service

import (
	"datatrans/config"
	"datatrans/logging"
	"datatrans/registry"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Services is the service container shared by the HTTP handlers and the CLI.
type Services struct {
	Translations *TranslationService
	WordCounts   *WordCountService
	Progress     *ProgressService
	Obsoletes    *ObsoleteService
	Editor       *EditorService
}

// New wires all services on top of db for the models in reg.
func New(db *gorm.DB, reg *registry.Registry, cfg *config.Config, logger zerolog.Logger) *Services {
	translations := NewTranslationService(db, reg, cfg, logging.Component(logger, "translations"))
	words := NewWordCountService(db, logging.Component(logger, "wordcount"))
	progress := NewProgressService(reg, cfg, translations, words)

	return &Services{
		Translations: translations,
		WordCounts:   words,
		Progress:     progress,
		Obsoletes:    NewObsoleteService(db, reg, cfg, logging.Component(logger, "obsoletes")),
		Editor:       NewEditorService(reg, cfg, translations, progress),
	}
}

func lookupModel(reg *registry.Registry, slug string) (registry.Model, error) {
	m, ok := reg.Lookup(slug)
	if !ok {
		return registry.Model{}, wrapSentinel(fmt.Sprintf("unknown model: %s", slug), ErrUnknownModel)
	}
	return m, nil
}

func checkLanguage(cfg *config.Config, language string) (string, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if !cfg.HasLanguage(language) {
		return "", wrapSentinel(fmt.Sprintf("unknown language: %s", language), ErrUnknownLanguage)
	}
	return language, nil
}
