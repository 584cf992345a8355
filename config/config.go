package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Language is one entry of the closed set of languages translations may be stored in.
type Language struct {
	Code string `toml:"code" json:"code"`
	Name string `toml:"name" json:"name"`
}

// Config holds datatrans runtime configuration.
type Config struct {
	LogLevel    string `toml:"log_level"`
	LogFilePath string `toml:"log_file"`
	Port        int    `toml:"port"`

	DatabaseDriver       string `toml:"database_driver"`
	DatabaseURL          string `toml:"database_url"`
	SQLitePragmasEnabled bool   `toml:"sqlite_pragmas"`
	SQLiteBusyTimeoutMS  int    `toml:"sqlite_busy_timeout_ms"`
	SQLiteJournalMode    string `toml:"sqlite_journal_mode"`
	SQLiteSynchronous    string `toml:"sqlite_synchronous"`
	SQLiteForeignKeys    bool   `toml:"sqlite_foreign_keys"`
	SQLiteMaxOpenConns   int    `toml:"sqlite_max_open_conns"`
	SQLiteMaxIdleConns   int    `toml:"sqlite_max_idle_conns"`
	SQLiteConnMaxIdleSec int    `toml:"sqlite_conn_max_idle_seconds"`
	SQLiteConnMaxLifeSec int    `toml:"sqlite_conn_max_lifetime_seconds"`

	// Languages is the closed set translations may be stored in, default language included.
	Languages       []Language `toml:"languages"`
	DefaultLanguage string     `toml:"default_language"`

	// Namespaces are scanned in order for translation declaration files below DeclarationRoot.
	Namespaces      []string `toml:"namespaces"`
	DeclarationRoot string   `toml:"declaration_root"`

	// TranslatorTokenHash is a bcrypt hash; when set, API requests must carry the matching bearer token.
	TranslatorTokenHash string `toml:"translator_token_hash"`

	// FuzzyCarryOver seeds new translations with the previous value of the field, marked fuzzy.
	FuzzyCarryOver bool `toml:"fuzzy_carry_over"`
}

// Settings is the global configuration instance populated from environment variables, the config file and flags.
var Settings *Config

func init() {
	Settings = FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to defaults.
// Malformed LANGUAGES values are left for Validate to report.
func FromEnv() *Config {
	langs, err := ParseLanguages(getEnv("LANGUAGES", "en:English"))
	if err != nil {
		langs = nil
	}

	return &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFilePath: getEnv("LOG_FILE", "./datatrans.log"),
		Port:        getEnvInt("PORT", 7790),

		DatabaseDriver:       getEnv("DATABASE_DRIVER", DriverSQLite),
		DatabaseURL:          getEnv("DATABASE_URL", "datatrans.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		Languages:       langs,
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		Namespaces:      getEnvList("NAMESPACES"),
		DeclarationRoot: getEnv("DECLARATION_ROOT", "."),

		TranslatorTokenHash: getEnv("TRANSLATOR_TOKEN_HASH", ""),
		FuzzyCarryOver:      getEnvBool("FUZZY_CARRY_OVER", false),
	}
}

// BindFlags registers command-line overrides for c on fs.
func BindFlags(fs *pflag.FlagSet, c *Config) {
	fs.IntVar(&c.Port, "port", c.Port, "HTTP server port (overrides PORT)")
	fs.StringVar(&c.DatabaseDriver, "db-driver", c.DatabaseDriver, "Database driver: sqlite or mysql (overrides DATABASE_DRIVER)")
	fs.StringVar(&c.DatabaseURL, "db", c.DatabaseURL, "Database path or DSN (overrides DATABASE_URL)")
	fs.BoolVar(&c.SQLitePragmasEnabled, "sqlite-pragmas", c.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	fs.IntVar(&c.SQLiteBusyTimeoutMS, "sqlite-busy-timeout-ms", c.SQLiteBusyTimeoutMS, "SQLite busy_timeout in milliseconds (overrides SQLITE_BUSY_TIMEOUT_MS)")
	fs.StringVar(&c.SQLiteJournalMode, "sqlite-journal-mode", c.SQLiteJournalMode, "SQLite journal_mode (overrides SQLITE_JOURNAL_MODE)")
	fs.IntVar(&c.SQLiteMaxOpenConns, "sqlite-max-open-conns", c.SQLiteMaxOpenConns, "SQLite MaxOpenConns (overrides SQLITE_MAX_OPEN_CONNS)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	fs.StringVar(&c.LogFilePath, "log-file", c.LogFilePath, "Log file path, empty logs to stderr (overrides LOG_FILE)")
	fs.Var((*languageList)(&c.Languages), "languages", "Comma separated code:Name pairs (overrides LANGUAGES)")
	fs.StringVar(&c.DefaultLanguage, "default-language", c.DefaultLanguage, "Language of the source text (overrides DEFAULT_LANGUAGE)")
	fs.StringSliceVar(&c.Namespaces, "namespaces", c.Namespaces, "Namespaces scanned for datatranslation declarations (overrides NAMESPACES)")
	fs.StringVar(&c.DeclarationRoot, "declaration-root", c.DeclarationRoot, "Directory holding the namespaces (overrides DECLARATION_ROOT)")
	fs.BoolVar(&c.FuzzyCarryOver, "fuzzy-carry-over", c.FuzzyCarryOver, "Seed new translations with the previous value marked fuzzy (overrides FUZZY_CARRY_OVER)")
}

// Load overlays the TOML file at path onto c and then re-applies any flag
// explicitly set on fs, so precedence is env < file < flags.
// An empty path only validates.
func Load(path string, c *Config, fs *pflag.FlagSet) error {
	if path != "" {
		saved := make(map[string][]string)
		if fs != nil {
			fs.Visit(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					saved[f.Name] = sv.GetSlice()
					return
				}
				saved[f.Name] = []string{f.Value.String()}
			})
		}

		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("config: failed to read %s: %w", path, err)
		}

		for name, vals := range saved {
			f := fs.Lookup(name)
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				if err := sv.Replace(vals); err != nil {
					return fmt.Errorf("config: flag --%s: %w", name, err)
				}
				continue
			}
			if err := f.Value.Set(vals[0]); err != nil {
				return fmt.Errorf("config: flag --%s: %w", name, err)
			}
		}
	}

	return c.Validate()
}

// Validate checks c is usable: a known driver, a non-empty language set of
// well-formed, distinct BCP 47 codes, and a default language inside that set.
func (c *Config) Validate() error {
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverMySQL {
		return fmt.Errorf("config: invalid database driver %q (must be one of: %s, %s)", c.DatabaseDriver, DriverSQLite, DriverMySQL)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("config: missing database url")
	}
	if c.Port < 0 {
		return errors.New("config: port is invalid")
	}
	if len(c.Languages) == 0 {
		return errors.New("config: no languages configured")
	}

	seen := make(map[string]bool, len(c.Languages))
	for i, l := range c.Languages {
		code := normalizeCode(l.Code)
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("config: invalid language code %q: %w", l.Code, err)
		}
		if seen[code] {
			return fmt.Errorf("config: duplicate language code %q", l.Code)
		}
		seen[code] = true
		c.Languages[i].Code = code
		if c.Languages[i].Name == "" {
			c.Languages[i].Name = code
		}
	}

	c.DefaultLanguage = normalizeCode(c.DefaultLanguage)
	if !seen[c.DefaultLanguage] {
		return fmt.Errorf("config: default language %q is not one of the configured languages", c.DefaultLanguage)
	}
	return nil
}

// HasLanguage reports whether code is in the configured set.
func (c *Config) HasLanguage(code string) bool {
	code = normalizeCode(code)
	for _, l := range c.Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// TargetLanguages returns the configured languages other than the default one.
func (c *Config) TargetLanguages() []Language {
	out := make([]Language, 0, len(c.Languages))
	for _, l := range c.Languages {
		if l.Code != c.DefaultLanguage {
			out = append(out, l)
		}
	}
	return out
}

// ParseLanguages parses "en:English,fr:French". A missing name defaults to the code.
func ParseLanguages(value string) ([]Language, error) {
	var out []Language
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, name, _ := strings.Cut(part, ":")
		code = normalizeCode(code)
		if code == "" {
			return nil, fmt.Errorf("config: empty language code in %q", value)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = code
		}
		out = append(out, Language{Code: code, Name: name})
	}
	return out, nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// languageList adapts []Language to pflag.Value.
type languageList []Language

func (l *languageList) String() string {
	parts := make([]string, 0, len(*l))
	for _, lang := range *l {
		parts = append(parts, lang.Code+":"+lang.Name)
	}
	return strings.Join(parts, ",")
}

func (l *languageList) Set(value string) error {
	langs, err := ParseLanguages(value)
	if err != nil {
		return err
	}
	*l = langs
	return nil
}

func (l *languageList) Type() string {
	return "languages"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
