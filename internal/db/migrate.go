package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded migrations. It owns its own connection, so
// Close releases everything it opened.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator prepares a migrator for databaseURL.
func NewMigrator(databaseURL string) (*Migrator, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is empty")
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	conn, err := sql.Open(DriverName, databaseURL)
	if err != nil {
		return nil, err
	}

	driver, err := pgxmigrate.WithInstance(conn, &pgxmigrate.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init migrations: %w", err)
	}

	return &Migrator{m: m}, nil
}

// Up applies every pending migration. Being already current is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down() error {
	return m.m.Steps(-1)
}

// Version returns the applied schema version; 0 means nothing applied yet.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and the database connection.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Migrate brings the schema at databaseURL up to date.
func Migrate(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}
