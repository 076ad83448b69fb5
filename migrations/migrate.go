// Package migrations embeds the PostgreSQL schema of Spark and applies it
// with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/quocanhngo/spark/internal/logger"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Status is the schema version recorded in the database
type Status struct {
	Version uint
	Dirty   bool
	// Empty is true when no migration was ever applied
	Empty   bool
}

func newMigrator(dbURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("read migration files: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Run executes all pending up migrations
func Run(dbURL string) error {
	return with(dbURL, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info("migrations: schema is up to date")
				return nil
			}
			return fmt.Errorf("migrate up: %w", err)
		}
		version, dirty, _ := m.Version()
		logger.Info("migrations applied", "version", version, "dirty", dirty)
		return nil
	})
}

// Rollback reverts the last steps migrations
func Rollback(dbURL string, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return with(dbURL, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil {
			return fmt.Errorf("migrate down %d: %w", steps, err)
		}
		logger.Info("migrations rolled back", "steps", steps)
		return nil
	})
}

// Current reports the applied schema version
func Current(dbURL string) (Status, error) {
	var st Status
	err := with(dbURL, func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			st.Empty = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		st.Version, st.Dirty = version, dirty
		return nil
	})
	return st, err
}

func with(dbURL string, fn func(m *migrate.Migrate) error) error {
	m, err := newMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
