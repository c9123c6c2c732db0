// Command migrate applies the catalog schema to the configured store.
// With -dry-run the DDL is executed inside a transaction that is rolled
// back, so the statements are logged but nothing is changed.
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"bookcatalog/pkg/config"
	"bookcatalog/pkg/database"
)

var errDryRun = errors.New("dry run")

func main() {
	dryRun := flag.Bool("dry-run", false, "log the schema statements without applying them")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *dryRun {
		// Force statement logging so the emitted DDL is visible.
		cfg.Log.TraceSQL = true
		log = log.Level(zerolog.DebugLevel)
	}

	db, err := database.Connect(cfg.Database, cfg.Log, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}

	if *dryRun {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := database.Migrate(tx); err != nil {
				return err
			}
			return errDryRun
		})
		if err != nil && !errors.Is(err, errDryRun) {
			log.Fatal().Err(err).Msg("dry run failed")
		}
		log.Info().Msg("dry run finished, no changes applied")
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("schema is up to date")
}
