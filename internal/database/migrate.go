package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

// RunMigrations applies every pending migration found under dir in migrations.
// A dirty state left by an interrupted run is forced back one version and retried once.
func RunMigrations(migrations fs.FS, dir, dbName string, driver database.Driver, logger zerolog.Logger) error {
	src, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug().Str("database", dbName).Msg("database is up to date, no migrations to run")
			return nil
		}
		var dirty migrate.ErrDirty
		if !errors.As(err, &dirty) || dirty.Version <= 0 {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Warn().Int("version", dirty.Version).Msg("dirty migration state, forcing previous version to retry")
		if err := m.Force(dirty.Version - 1); err != nil {
			return fmt.Errorf("forcing migration version: %w", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("running migrations after dirty fix: %w", err)
		}
	}

	version, isDirty, _ := m.Version()
	logger.Info().Str("database", dbName).Uint("version", version).Bool("dirty", isDirty).Msg("migrations completed")
	return nil
}
