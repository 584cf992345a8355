package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func validConfig() *Config {
	return &Config{
		DatabaseDriver:  DriverSQLite,
		DatabaseURL:     "test.db",
		Languages:       []Language{{Code: "en", Name: "English"}, {Code: "fr", Name: "French"}},
		DefaultLanguage: "en",
	}
}

func TestParseLanguages(t *testing.T) {
	langs, err := ParseLanguages(" en:English, FR:French ,nl")
	if err != nil {
		t.Fatalf("ParseLanguages: %v", err)
	}
	if len(langs) != 3 {
		t.Fatalf("expected 3 languages, got %d", len(langs))
	}
	if langs[1].Code != "fr" || langs[1].Name != "French" {
		t.Fatalf("unexpected second language: %+v", langs[1])
	}
	if langs[2].Code != "nl" || langs[2].Name != "nl" {
		t.Fatalf("expected name to default to code, got %+v", langs[2])
	}
}

func TestValidate_OK(t *testing.T) {
	c := validConfig()
	c.DefaultLanguage = " EN "
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.DefaultLanguage != "en" {
		t.Fatalf("expected normalized default language, got %q", c.DefaultLanguage)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"driver":          func(c *Config) { c.DatabaseDriver = "oracle" },
		"empty url":       func(c *Config) { c.DatabaseURL = " " },
		"no languages":    func(c *Config) { c.Languages = nil },
		"bad code":        func(c *Config) { c.Languages = append(c.Languages, Language{Code: "not a tag"}) },
		"duplicate":       func(c *Config) { c.Languages = append(c.Languages, Language{Code: "FR"}) },
		"default missing": func(c *Config) { c.DefaultLanguage = "de" },
		"negative port":   func(c *Config) { c.Port = -1 },
	}
	for name, mutate := range cases {
		c := validConfig()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestTargetLanguages(t *testing.T) {
	c := validConfig()
	targets := c.TargetLanguages()
	if len(targets) != 1 || targets[0].Code != "fr" {
		t.Fatalf("unexpected targets: %+v", targets)
	}
	if !c.HasLanguage("FR") || c.HasLanguage("de") {
		t.Fatalf("HasLanguage mismatch")
	}
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datatrans.toml")
	content := `
port = 9000
database_url = "from-file.db"
default_language = "lt"
namespaces = ["shop", "blog"]

[[languages]]
code = "lt"
name = "Lithuanian"

[[languages]]
code = "en"
name = "English"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c := validConfig()
	c.DatabaseURL = "from-env.db"
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, c)
	if err := fs.Parse([]string{"--port", "8080", "--namespaces", "cli"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if err := Load(path, c, fs); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != 8080 {
		t.Fatalf("expected flag to win for port, got %d", c.Port)
	}
	if c.DatabaseURL != "from-file.db" {
		t.Fatalf("expected file to override env for database url, got %q", c.DatabaseURL)
	}
	if len(c.Namespaces) != 1 || c.Namespaces[0] != "cli" {
		t.Fatalf("expected flag namespaces, got %v", c.Namespaces)
	}
	if c.DefaultLanguage != "lt" || len(c.Languages) != 2 {
		t.Fatalf("expected languages from file, got %q %+v", c.DefaultLanguage, c.Languages)
	}
}

func TestLanguagesFlag(t *testing.T) {
	c := validConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, c)
	if err := fs.Parse([]string{"--languages", "en:English,ru:Russian", "--default-language", "ru"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(c.Languages) != 2 || c.Languages[1].Code != "ru" {
		t.Fatalf("unexpected languages: %+v", c.Languages)
	}
}
