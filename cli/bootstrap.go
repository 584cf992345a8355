package cli

import (
	"datatrans/database"
	"datatrans/logging"
	"datatrans/registry"
	"datatrans/service"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// env is what every command runs against.
type env struct {
	log    zerolog.Logger
	db     *gorm.DB
	reg    *registry.Registry
	svc    *service.Services
	closer io.Closer
}

func (a *app) open() (*env, error) {
	logger, closer, err := logging.Setup(a.cfg.LogFilePath, a.cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	e := &env{log: logger, closer: closer}

	e.db, err = database.Open(a.cfg, logging.Component(logger, "gorm"))
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	e.reg = registry.New()
	if err := registry.Discover(e.reg, os.DirFS(a.cfg.DeclarationRoot), a.cfg.Namespaces, registry.TableSources(e.db)); err != nil {
		e.close()
		return nil, err
	}
	if err := e.reg.Apply(a.declarers...); err != nil {
		e.close()
		return nil, fmt.Errorf("failed to register models: %w", err)
	}

	logger.Info().
		Str("driver", a.cfg.DatabaseDriver).
		Int("models", e.reg.Len()).
		Strs("namespaces", a.cfg.Namespaces).
		Msg("registry loaded")

	e.svc = service.New(e.db, e.reg, a.cfg, logger)
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		if err := database.Close(e.db); err != nil {
			e.log.Error().Err(err).Msg("error closing database")
		}
	}
	if e.closer != nil {
		_ = e.closer.Close()
	}
}
