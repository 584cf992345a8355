package database

import (
	"datatrans/config"
	"datatrans/models"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the database selected by settings.DatabaseDriver, applies the
// SQLite pool and PRAGMA settings when relevant, and migrates the translation tables.
// GORM statements are logged to log, one record per statement at DEBUG.
func Open(settings *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if settings.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	var dialector gorm.Dialector
	switch settings.DatabaseDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(buildSQLiteDSN(settings.DatabaseURL, settings))
	case config.DriverMySQL:
		dialector = mysql.Open(settings.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", settings.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, logLevel),
	})
	if err != nil {
		return nil, err
	}

	if settings.DatabaseDriver == config.DriverSQLite {
		if err := configureSQLite(db, settings); err != nil {
			return nil, err
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the translation tables. Host application tables are never touched.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.KeyValue{},
		&models.FieldWordCount{},
		&models.ModelWordCount{},
		&models.AppSetting{},
	)
}

func configureSQLite(db *gorm.DB, settings *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	pool := currentSQLitePoolConfig(settings)
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	// Applied again for existing DB files; the DSN covers new connections.
	if settings.SQLitePragmasEnabled {
		if settings.SQLiteBusyTimeoutMS > 0 {
			db.Exec("PRAGMA busy_timeout = ?", settings.SQLiteBusyTimeoutMS)
		}
		if journalMode := normalizeSQLiteJournalMode(settings.SQLiteJournalMode); journalMode != "" {
			db.Exec("PRAGMA journal_mode = " + journalMode)
		}
		if synchronous := normalizeSQLiteSynchronous(settings.SQLiteSynchronous); synchronous != "" {
			db.Exec("PRAGMA synchronous = " + synchronous)
		}
		if settings.SQLiteForeignKeys {
			db.Exec("PRAGMA foreign_keys = ON")
		} else {
			db.Exec("PRAGMA foreign_keys = OFF")
		}
	}
	return nil
}

// Close closes the database connection and releases resources
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
