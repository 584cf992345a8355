package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// DeclarationName is the base name of the file a namespace declares its translatable models in.
const DeclarationName = "datatranslation"

// TableDeclaration describes where the source records of a declared model live.
type TableDeclaration struct {
	Table       string `toml:"table" yaml:"table"`
	PrimaryKey  string `toml:"primary_key" yaml:"primary_key"`
	LabelColumn string `toml:"label_column" yaml:"label_column"`
}

// SourceResolver turns a table declaration into a Source.
type SourceResolver func(decl TableDeclaration) (Source, error)

type declarationFile struct {
	Models []modelDeclaration `toml:"models" yaml:"models"`
}

type modelDeclaration struct {
	TableDeclaration `yaml:",inline"`

	Name             string             `toml:"name" yaml:"name"`
	VerboseName      string             `toml:"verbose_name" yaml:"verbose_name"`
	OneFormPerObject bool               `toml:"one_form_per_object" yaml:"one_form_per_object"`
	Fields           []fieldDeclaration `toml:"fields" yaml:"fields"`
}

type fieldDeclaration struct {
	Name        string `toml:"name" yaml:"name"`
	VerboseName string `toml:"verbose_name" yaml:"verbose_name"`
}

// Discover reads <namespace>/datatranslation.toml, or .yaml when no TOML file
// exists, for each namespace and registers the declared models under the
// content type "<namespace>.<name>". Namespaces without a declaration are
// skipped; any other failure is returned wrapped with the namespace.
func Discover(r *Registry, fsys fs.FS, namespaces []string, resolve SourceResolver) error {
	for _, ns := range namespaces {
		ns = strings.Trim(strings.TrimSpace(ns), "/")
		if ns == "" {
			continue
		}

		decl, found, err := readDeclaration(fsys, ns)
		if err != nil {
			return fmt.Errorf("registry: namespace %s: %w", ns, err)
		}
		if !found {
			continue
		}

		app := path.Base(ns)
		for _, md := range decl.Models {
			if err := registerDeclared(r, app, md, resolve); err != nil {
				return fmt.Errorf("registry: namespace %s: %w", ns, err)
			}
		}
	}
	return nil
}

func readDeclaration(fsys fs.FS, ns string) (declarationFile, bool, error) {
	var decl declarationFile

	base := path.Join(ns, DeclarationName)
	data, err := fs.ReadFile(fsys, base+".toml")
	if err == nil {
		md, err := toml.Decode(string(data), &decl)
		if err != nil {
			return decl, true, fmt.Errorf("decode %s.toml: %w", base, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return decl, true, fmt.Errorf("decode %s.toml: unknown key %q", base, undecoded[0].String())
		}
		return decl, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return decl, false, err
	}

	data, err = fs.ReadFile(fsys, base+".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return decl, false, nil
	}
	if err != nil {
		return decl, false, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&decl); err != nil {
		return decl, true, fmt.Errorf("decode %s.yaml: %w", base, err)
	}
	return decl, true, nil
}

func registerDeclared(r *Registry, app string, md modelDeclaration, resolve SourceResolver) error {
	name := strings.TrimSpace(md.Name)
	if name == "" {
		name = md.Table
	}
	if md.Table == "" {
		md.Table = name
	}
	if len(md.Fields) == 0 {
		return fmt.Errorf("model %q declares no fields", name)
	}

	src, err := resolve(md.TableDeclaration)
	if err != nil {
		return fmt.Errorf("model %q: %w", name, err)
	}

	fields := make([]Field, len(md.Fields))
	for i, f := range md.Fields {
		fields[i] = Field{Name: f.Name, VerboseName: f.VerboseName}
	}

	return r.Register(Model{
		ContentType:      app + "." + name,
		VerboseName:      md.VerboseName,
		Fields:           fields,
		OneFormPerObject: md.OneFormPerObject,
		Source:           src,
	})
}

// TableSources resolves declarations to TableSources on db. A declared
// table that does not exist is an error.
func TableSources(db *gorm.DB) SourceResolver {
	return func(decl TableDeclaration) (Source, error) {
		if !db.Migrator().HasTable(decl.Table) {
			return nil, fmt.Errorf("table %q does not exist", decl.Table)
		}
		return NewTableSource(db, decl.Table, decl.PrimaryKey, decl.LabelColumn)
	}
}
