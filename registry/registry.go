// Package registry holds the set of models and fields that are translatable.
//
// A Registry is built once at startup, either by explicit Register calls or
// by Discover scanning namespaces for declaration files, and is passed to the
// services that need it. It is not modified after startup.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrInvalidContentType = errors.New("invalid content type")
	ErrMissingSource      = errors.New("model has no source")
)

// Field is a translatable field of a model.
type Field struct {
	Name        string
	VerboseName string
}

// Model is a translatable model of the host application.
type Model struct {
	// ContentType is the stable "app_label.model" tag stored with every translation.
	ContentType string
	VerboseName string
	Fields      []Field
	// OneFormPerObject makes the editor list objects and edit them one at a time.
	OneFormPerObject bool
	Source           Source
}

// Slug returns the identifier used in URLs and commands.
func (m Model) Slug() string {
	return m.ContentType
}

// FieldNames returns the names of the translatable fields in declaration order.
func (m Model) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a translatable field by name.
func (m Model) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Registry maps content types to their translatable fields.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	models map[string]*Model
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds m. Registering a content type again overwrites its metadata
// and merges its fields: known fields are updated in place, new ones appended.
func (r *Registry) Register(m Model) error {
	ct, err := normalizeContentType(m.ContentType)
	if err != nil {
		return err
	}
	m.ContentType = ct

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.models[ct]
	if !ok {
		if m.Source == nil {
			return fmt.Errorf("%w: %s", ErrMissingSource, ct)
		}
		if m.VerboseName == "" {
			m.VerboseName = ct[strings.IndexByte(ct, '.')+1:]
		}
		m.Fields = mergeFields(nil, m.Fields)
		r.models[ct] = &m
		r.order = append(r.order, ct)
		return nil
	}

	if m.VerboseName != "" {
		existing.VerboseName = m.VerboseName
	}
	if m.Source != nil {
		existing.Source = m.Source
	}
	existing.OneFormPerObject = m.OneFormPerObject
	existing.Fields = mergeFields(existing.Fields, m.Fields)
	return nil
}

// Lookup returns the model registered under slug.
func (r *Registry) Lookup(slug string) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return Model{}, false
	}
	return *m, true
}

// Fields returns the translatable field names of slug, or nil when it is not registered.
func (r *Registry) Fields(slug string) []string {
	m, ok := r.Lookup(slug)
	if !ok {
		return nil
	}
	return m.FieldNames()
}

// Models returns all registered models in registration order.
func (r *Registry) Models() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Model, 0, len(r.order))
	for _, ct := range r.order {
		out = append(out, *r.models[ct])
	}
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Declarer registers models in code; it is the explicit counterpart of a declaration file.
type Declarer func(r *Registry) error

// Apply runs declarers in order and stops at the first error.
func (r *Registry) Apply(declarers ...Declarer) error {
	for _, declare := range declarers {
		if err := declare(r); err != nil {
			return err
		}
	}
	return nil
}

func mergeFields(current, incoming []Field) []Field {
	out := append([]Field(nil), current...)
	for _, f := range incoming {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			continue
		}
		if f.VerboseName == "" {
			f.VerboseName = f.Name
		}

		replaced := false
		for i := range out {
			if out[i].Name == f.Name {
				out[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}

func normalizeContentType(ct string) (string, error) {
	ct = strings.ToLower(strings.TrimSpace(ct))
	app, model, ok := strings.Cut(ct, ".")
	if !ok || app == "" || model == "" || strings.Contains(model, ".") {
		return "", fmt.Errorf("%w: %q (want app_label.model)", ErrInvalidContentType, ct)
	}
	return ct, nil
}
