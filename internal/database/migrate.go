package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the ledger, course and extraction tables up to date.
// A schema left dirty by an interrupted migration stops startup.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return errors.New("no migrations found in " + migrationsPath)
	case err != nil:
		return fmt.Errorf("reading migration version: %w", err)
	case dirty:
		return fmt.Errorf("schema is dirty at version %d, fix it with migrate force", version)
	}

	slog.Info("database migrations applied", "version", version)
	return nil
}
