package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/minidebet/backend/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for one driver.
type Migrator struct {
	m      *migrate.Migrate
	source source.Driver
	driver string
	conn   interface{ Close() error }
}

// NewMigrator prepares a migrator on an open connection pool. The pool stays
// owned by the caller.
func NewMigrator(ctx context.Context, db *sqlx.DB, driver string) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	var (
		instance database.Driver
		closer   interface{ Close() error }
	)
	switch driver {
	case config.DriverPostgres:
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire migration connection: %w", err)
		}
		instance, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("initialize postgres migrations: %w", err)
		}
		closer = conn
	case config.DriverSQLite:
		instance, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite migrations: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("initialize migrator: %w", err)
	}
	return &Migrator{m: m, source: src, driver: driver, conn: closer}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back every migration.
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version returns the applied version, 0 when nothing has run yet.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the migration connection. Closing the migrate instance
// itself would close the caller's sqlite pool, so only the dedicated
// postgres connection is released here.
func (m *Migrator) Close() error {
	if sourceErr := m.source.Close(); sourceErr != nil {
		return sourceErr
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

// Migrate runs all pending migrations on db.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	m, err := NewMigrator(ctx, db, driver)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
