package dataset

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrator owns a migrate instance over a shared *sql.DB. The sqlite driver
// closes the handle it wraps, so only the source and the postgres
// connection are released on close.
type migrator struct {
	m      *migrate.Migrate
	src    source.Driver
	dbDrv  database.Driver
	driver string
}

func newMigrator(db *sql.DB, driver string) (*migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	var dbDrv database.Driver
	switch driver {
	case DriverPostgres:
		dbDrv, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		dbDrv, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q (must be %s or %s)", driver, DriverPostgres, DriverSQLite)
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDrv)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &migrator{m: m, src: src, dbDrv: dbDrv, driver: driver}, nil
}

func (mg *migrator) close() {
	mg.src.Close()
	if mg.driver == DriverPostgres {
		mg.dbDrv.Close()
	}
}

// Migrate applies every pending up migration. No pending migrations is not an error.
func Migrate(db *sql.DB, driver string) error {
	mg, err := newMigrator(db, driver)
	if err != nil {
		return err
	}
	defer mg.close()

	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back every applied migration.
func MigrateDown(db *sql.DB, driver string) error {
	mg, err := newMigrator(db, driver)
	if err != nil {
		return err
	}
	defer mg.close()

	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// Version reports the applied schema version. A fresh database reports 0, false.
func Version(db *sql.DB, driver string) (uint, bool, error) {
	mg, err := newMigrator(db, driver)
	if err != nil {
		return 0, false, err
	}
	defer mg.close()

	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the schema version without running migrations, clearing the dirty flag.
func Force(db *sql.DB, driver string, version int) error {
	mg, err := newMigrator(db, driver)
	if err != nil {
		return err
	}
	defer mg.close()

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force failed: %w", err)
	}
	return nil
}
