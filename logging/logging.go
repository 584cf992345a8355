// Package logging sets up the process-wide zerolog logger. The standard
// library logger is redirected to the same sink so GORM and gin output ends
// up next to structured records.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup opens path for logging with a single rotated history file and
// returns a logger at the given level. An empty path logs to stderr. The
// returned closer is nil when there is nothing to close.
func Setup(path, level string) (zerolog.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)

	if path != "" {
		f, err := rotate(path)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		out, closer = f, f
	}

	logger := New(out, level)
	log.SetFlags(0)
	log.SetOutput(logger)
	return logger, closer, nil
}

// New builds a logger writing JSON records to out.
func New(out io.Writer, level string) zerolog.Logger {
	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to zerolog levels,
// defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// rotate keeps only one backup: path is moved to path.1 and a fresh file opened.
func rotate(path string) (*os.File, error) {
	_ = os.Remove(path + ".1")

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, fmt.Errorf("failed to rotate existing log: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
