package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var subscriptionSchema embed.FS

// RunMigrations brings the subscriptions schema to the latest embedded
// version and reports that version and whether the last step left it dirty.
// The migrate instance is not closed since that would close db.
func RunMigrations(db *DB) (uint, bool, error) {
	target, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return 0, false, fmt.Errorf("failed to prepare sqlite schema table: %w", err)
	}

	steps, err := iofs.New(subscriptionSchema, "migrations")
	if err != nil {
		return 0, false, fmt.Errorf("failed to read embedded schema: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", steps, "sqlite", target)
	if err != nil {
		return 0, false, fmt.Errorf("failed to set up schema migration: %w", err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Debug("Subscription schema already current")
	case err != nil:
		return 0, false, fmt.Errorf("failed to migrate subscription schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}
