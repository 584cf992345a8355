package service

import (
	"context"
	"datatrans/config"
	"datatrans/models"
	"datatrans/registry"
	"errors"
	"fmt"
)

// EditorField pairs the recorded original of a field with its translation.
type EditorField struct {
	Name        string           `json:"name"`
	VerboseName string           `json:"verbose_name"`
	Original    *models.KeyValue `json:"original"`
	Translation *models.KeyValue `json:"translation"`
}

// EditorObject is one object of the editor page.
type EditorObject struct {
	ID     int64         `json:"id"`
	Name   string        `json:"name"`
	Fields []EditorField `json:"fields"`
}

// Editor is everything a translator needs to translate a set of objects.
type Editor struct {
	Model            string           `json:"model"`
	Slug             string           `json:"slug"`
	OriginalLanguage string           `json:"original_language"`
	Language         string           `json:"other_language"`
	Objects          []EditorObject   `json:"objects"`
	Progress         Stats            `json:"progress"`
	FirstUnedited    *models.KeyValue `json:"first_unedited"`
}

// SelectorObject flags objects with at least one unedited translation.
type SelectorObject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Todo bool   `json:"todo"`
}

// Selector lists the objects of a model edited one object at a time.
type Selector struct {
	Model    string           `json:"model"`
	Slug     string           `json:"slug"`
	Language string           `json:"language"`
	Objects  []SelectorObject `json:"objects"`
}

// EditorService builds the translator views.
type EditorService struct {
	reg          *registry.Registry
	cfg          *config.Config
	translations *TranslationService
	progress     *ProgressService
}

// NewEditorService constructs an editor service
func NewEditorService(reg *registry.Registry, cfg *config.Config, translations *TranslationService, progress *ProgressService) *EditorService {
	return &EditorService{reg: reg, cfg: cfg, translations: translations, progress: progress}
}

// Editor returns the original and translation of every registered field of
// the selected objects, creating missing translations. No objectIDs selects
// every object of the model.
func (s *EditorService) Editor(ctx context.Context, slug, language string, objectIDs []int64) (*Editor, error) {
	m, language, err := s.resolve(slug, language)
	if err != nil {
		return nil, err
	}

	objects, err := s.objects(ctx, m, objectIDs)
	if err != nil {
		return nil, err
	}
	values, err := s.values(ctx, m, objectIDs)
	if err != nil {
		return nil, err
	}

	out := &Editor{
		Model:            m.VerboseName,
		Slug:             m.Slug(),
		OriginalLanguage: s.cfg.DefaultLanguage,
		Language:         language,
		Objects:          make([]EditorObject, 0, len(objects)),
	}
	for _, obj := range objects {
		owner := Owner{ContentType: m.ContentType, ObjectID: obj.ID}
		item := EditorObject{ID: obj.ID, Name: obj.Label, Fields: make([]EditorField, 0, len(m.Fields))}

		for _, f := range m.Fields {
			text := values[f.Name][obj.ID]
			original, err := s.translations.GetOrCreate(ctx, text, s.cfg.DefaultLanguage, owner, f.Name)
			if err != nil {
				return nil, err
			}
			translation, err := s.translations.GetOrCreate(ctx, text, language, owner, f.Name)
			if err != nil {
				return nil, err
			}
			if out.FirstUnedited == nil && !translation.Edited {
				out.FirstUnedited = translation
			}
			item.Fields = append(item.Fields, EditorField{
				Name:        f.Name,
				VerboseName: f.VerboseName,
				Original:    original,
				Translation: translation,
			})
		}
		out.Objects = append(out.Objects, item)
	}

	if out.Progress, err = s.progress.ModelStats(ctx, m, language); err != nil {
		return nil, err
	}
	return out, nil
}

// Selector lists the objects of a model, flagging those with a field whose
// translation into language is not edited yet.
func (s *EditorService) Selector(ctx context.Context, slug, language string) (*Selector, error) {
	m, language, err := s.resolve(slug, language)
	if err != nil {
		return nil, err
	}

	objects, err := s.objects(ctx, m, nil)
	if err != nil {
		return nil, err
	}
	values, err := s.values(ctx, m, nil)
	if err != nil {
		return nil, err
	}

	out := &Selector{
		Model:    m.VerboseName,
		Slug:     m.Slug(),
		Language: language,
		Objects:  make([]SelectorObject, 0, len(objects)),
	}
	for _, obj := range objects {
		owner := Owner{ContentType: m.ContentType, ObjectID: obj.ID}
		item := SelectorObject{ID: obj.ID, Name: obj.Label}
		for _, f := range m.Fields {
			kv, err := s.translations.GetOrCreate(ctx, values[f.Name][obj.ID], language, owner, f.Name)
			if err != nil {
				return nil, err
			}
			if !kv.Edited {
				item.Todo = true
				break
			}
		}
		out.Objects = append(out.Objects, item)
	}
	return out, nil
}

// Model returns the registered model for slug.
func (s *EditorService) Model(slug string) (registry.Model, bool) {
	return s.reg.Lookup(slug)
}

func (s *EditorService) resolve(slug, language string) (registry.Model, string, error) {
	m, err := lookupModel(s.reg, slug)
	if err != nil {
		return registry.Model{}, "", err
	}
	language, err = checkLanguage(s.cfg, language)
	if err != nil {
		return registry.Model{}, "", err
	}
	if language == s.cfg.DefaultLanguage {
		return registry.Model{}, "", wrapSentinel(fmt.Sprintf("%s is the source language", language), ErrInvalidRequest)
	}
	return m, language, nil
}

func (s *EditorService) objects(ctx context.Context, m registry.Model, ids []int64) ([]registry.Object, error) {
	all, err := m.Source.Objects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", m.ContentType, err)
	}
	if len(ids) == 0 {
		return all, nil
	}

	byID := make(map[int64]registry.Object, len(all))
	for _, obj := range all {
		byID[obj.ID] = obj
	}
	out := make([]registry.Object, 0, len(ids))
	for _, id := range ids {
		obj, ok := byID[id]
		if !ok {
			return nil, wrapSentinel(fmt.Sprintf("object not found: %s #%d", m.ContentType, id), ErrNotFound)
		}
		out = append(out, obj)
	}
	return out, nil
}

// values maps field name to object id to the current source text. Selected
// objects are read one by one; no ids reads whole columns.
func (s *EditorService) values(ctx context.Context, m registry.Model, ids []int64) (map[string]map[int64]string, error) {
	out := make(map[string]map[int64]string, len(m.Fields))
	for _, f := range m.Fields {
		byID := make(map[int64]string)
		if len(ids) > 0 {
			for _, id := range ids {
				text, err := m.Source.Value(ctx, id, f.Name)
				if errors.Is(err, registry.ErrObjectNotFound) {
					return nil, wrapSentinel(fmt.Sprintf("object not found: %s #%d", m.ContentType, id), ErrNotFound)
				}
				if err != nil {
					return nil, fmt.Errorf("failed to read %s.%s: %w", m.ContentType, f.Name, err)
				}
				byID[id] = text
			}
			out[f.Name] = byID
			continue
		}

		values, err := m.Source.Values(ctx, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s.%s: %w", m.ContentType, f.Name, err)
		}
		for _, v := range values {
			byID[v.ObjectID] = v.Text
		}
		out[f.Name] = byID
	}
	return out, nil
}
