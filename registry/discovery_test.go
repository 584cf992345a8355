package registry

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

func staticResolver(seen *[]TableDeclaration) SourceResolver {
	return func(decl TableDeclaration) (Source, error) {
		*seen = append(*seen, decl)
		return staticSource{}, nil
	}
}

func TestDiscover_TOMLAndYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"blog/datatranslation.toml": {Data: []byte(`
[[models]]
name = "article"
verbose_name = "Article"
table = "blog_articles"
label_column = "title"

[[models.fields]]
name = "title"
verbose_name = "Title"

[[models.fields]]
name = "body"
`)},
		"apps/shop/datatranslation.yaml": {Data: []byte(`
models:
  - name: product
    one_form_per_object: true
    primary_key: product_id
    fields:
      - name: name
      - name: description
`)},
	}

	var seen []TableDeclaration
	r := New()
	if err := Discover(r, fsys, []string{"blog", "apps/shop", "nothing-here"}, staticResolver(&seen)); err != nil {
		t.Fatalf("Discover: %v", err)
	}

	all := r.Models()
	if len(all) != 2 {
		t.Fatalf("expected 2 models, got %+v", all)
	}
	if all[0].ContentType != "blog.article" || all[0].VerboseName != "Article" {
		t.Fatalf("unexpected first model: %+v", all[0])
	}
	if got := strings.Join(all[0].FieldNames(), ","); got != "title,body" {
		t.Fatalf("unexpected article fields: %s", got)
	}
	if all[1].ContentType != "shop.product" || !all[1].OneFormPerObject {
		t.Fatalf("unexpected second model: %+v", all[1])
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 resolved tables, got %+v", seen)
	}
	if seen[0] != (TableDeclaration{Table: "blog_articles", LabelColumn: "title"}) {
		t.Fatalf("unexpected article table: %+v", seen[0])
	}
	if seen[1] != (TableDeclaration{Table: "product", PrimaryKey: "product_id"}) {
		t.Fatalf("expected table to default to the model name, got %+v", seen[1])
	}
}

func TestDiscover_PropagatesErrors(t *testing.T) {
	var seen []TableDeclaration

	cases := map[string]fstest.MapFS{
		"bad toml":      {"blog/datatranslation.toml": {Data: []byte("[[models]\nname=")}},
		"unknown key":   {"blog/datatranslation.toml": {Data: []byte("[[models]]\nname = \"article\"\ncolour = \"red\"\n")}},
		"bad yaml":      {"blog/datatranslation.yaml": {Data: []byte("models: [name: {")}},
		"unknown field": {"blog/datatranslation.yaml": {Data: []byte("models:\n  - name: article\n    colour: red\n")}},
		"no fields":     {"blog/datatranslation.toml": {Data: []byte("[[models]]\nname = \"article\"\n")}},
	}
	for name, fsys := range cases {
		err := Discover(New(), fsys, []string{"blog"}, staticResolver(&seen))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.Contains(err.Error(), "namespace blog") {
			t.Fatalf("%s: expected namespace in error, got %v", name, err)
		}
	}
}

func TestDiscover_ResolverErrorPropagates(t *testing.T) {
	fsys := fstest.MapFS{
		"blog/datatranslation.toml": {Data: []byte("[[models]]\nname = \"article\"\n[[models.fields]]\nname = \"title\"\n")},
	}
	missing := errors.New("table missing")

	err := Discover(New(), fsys, []string{"blog"}, func(TableDeclaration) (Source, error) { return nil, missing })
	if !errors.Is(err, missing) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}

func TestDiscover_MissingDeclarationIsSkipped(t *testing.T) {
	var seen []TableDeclaration
	r := New()
	if err := Discover(r, fstest.MapFS{}, []string{"blog", " ", "shop"}, staticResolver(&seen)); err != nil {
		t.Fatalf("expected missing declarations to be skipped, got %v", err)
	}
	if r.Len() != 0 || len(seen) != 0 {
		t.Fatalf("expected nothing registered")
	}
}

type failingFS struct{}

func (failingFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}

func TestDiscover_ReadErrorPropagates(t *testing.T) {
	var seen []TableDeclaration
	err := Discover(New(), failingFS{}, []string{"blog"}, staticResolver(&seen))
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
}
