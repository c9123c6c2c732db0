// Package database opens the backing store and manages session scopes.
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookcatalog/pkg/config"
	"bookcatalog/pkg/models"
)

// Open connects to the store selected by cfg, tunes the connection pool
// and migrates the catalog schema.
func Open(cfg config.DatabaseConfig, logCfg config.LogConfig, log zerolog.Logger) (*gorm.DB, error) {
	db, err := Connect(cfg, logCfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Connect opens the store without touching the schema.
func Connect(cfg config.DatabaseConfig, logCfg config.LogConfig, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dsn := cfg.DSN
		// Concurrent writers on sqlite need a busy timeout instead of
		// an immediate SQLITE_BUSY.
		if !strings.Contains(dsn, "?") && !strings.Contains(dsn, ":memory:") {
			dsn = "file:" + dsn + "?_busy_timeout=5000"
		}
		dialector = sqlite.Open(dsn)
	}

	log.Info().Str("driver", cfg.Driver).Str("dsn", cfg.DSN).Msg("connecting to database")

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log, logCfg.TraceSQL),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	return db, nil
}

// Migrate creates or alters the catalog tables from the model metadata.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Book{}, "Genres", &models.BookGenre{}); err != nil {
		return fmt.Errorf("join table setup: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	return nil
}

// Scope runs fn inside a transaction: commit on nil, rollback on error.
// The session handed to fn must not escape it.
func Scope(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}
